package hibp

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// PrefixLen is the number of hex characters of a digest that may be sent
// to the range endpoint. Everything past it stays on this machine.
const PrefixLen = 5

// DigestLen is the length of a hex encoded SHA-1 digest.
const DigestLen = 40

var digestPattern = regexp.MustCompile("^[a-fA-F\\d]{40}$")

// Digest is an uppercase hex encoded SHA-1 hash of a password.
type Digest string

// Sum hashes a password into a Digest. The password is hashed as its
// UTF-8 bytes, so the same string always produces the same digest.
func Sum(password string) Digest {
	h := sha1.New()
	h.Write([]byte(password))
	return Digest(strings.ToUpper(hex.EncodeToString(h.Sum(nil))))
}

// ParseDigest validates a caller supplied SHA-1 hex hash and normalizes
// it to uppercase.
func ParseDigest(hash string) (Digest, error) {
	if !digestPattern.MatchString(hash) {
		return "", fmt.Errorf("input is not a valid SHA1 Hexadecimal hash")
	}
	return Digest(strings.ToUpper(hash)), nil
}

// Prefix returns the first 5 hex characters, the only part of the digest
// that ever goes over the wire.
func (d Digest) Prefix() string {
	return string(d[:PrefixLen])
}

// Suffix returns the remaining 35 hex characters, compared only locally.
func (d Digest) Suffix() string {
	return string(d[PrefixLen:])
}
