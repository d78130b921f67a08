// Package strength scores passwords offline. The whole analysis is a
// pure function of the password string; nothing here touches the
// network.
package strength

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Warning is a tag for a weakening pattern found in a password.
type Warning string

const (
	// WarnSequential fires on ascending or descending runs of 3+
	// characters from a known sequence (alphabet, digits, keyboard rows).
	WarnSequential Warning = "sequential"
	// WarnRepeated fires on 3+ identical consecutive characters.
	WarnRepeated Warning = "repeated"
	// WarnPeriodic fires when the whole password is a repetition of a
	// shorter pattern, like "abab" or "123123".
	WarnPeriodic Warning = "periodic"
	// WarnTooShort fires under 8 characters.
	WarnTooShort Warning = "too-short"
	// WarnShort fires under 12 characters. Advisory only, it does not
	// lower the score.
	WarnShort Warning = "short"
)

// Message returns the human readable text for a warning, for CLI and API
// consumers.
func (w Warning) Message() string {
	switch w {
	case WarnSequential:
		return "Sequential pattern detected (e.g. 'abc', '123', 'qwe')"
	case WarnRepeated:
		return "Repeated characters detected (e.g. 'aaa')"
	case WarnPeriodic:
		return "Password is a short pattern repeated (e.g. 'abab')"
	case WarnTooShort:
		return "Too short. Use at least 8 characters"
	case WarnShort:
		return "Consider using 12+ characters"
	}
	return string(w)
}

// Classes records which character classes a password draws from.
type Classes struct {
	Lower  bool `json:"lowercase"`
	Upper  bool `json:"uppercase"`
	Digit  bool `json:"digits"`
	Symbol bool `json:"symbols"`
}

// PoolSize is the alphabet size of the classes actually used: 26 lower,
// 26 upper, 10 digits and a nominal 32 symbols.
func (c Classes) PoolSize() int {
	pool := 0
	if c.Lower {
		pool += 26
	}
	if c.Upper {
		pool += 26
	}
	if c.Digit {
		pool += 10
	}
	if c.Symbol {
		pool += 32
	}
	return pool
}

// Count returns how many classes are used.
func (c Classes) Count() int {
	n := 0
	for _, used := range []bool{c.Lower, c.Upper, c.Digit, c.Symbol} {
		if used {
			n++
		}
	}
	return n
}

// Report is the result of analyzing one password.
type Report struct {
	Length   int       `json:"length"`
	Entropy  float64   `json:"entropy"`
	Classes  Classes   `json:"charClasses"`
	Warnings []Warning `json:"warnings"`
	Score    int       `json:"score"`
	Label    string    `json:"label"`
}

var labels = [5]string{"Very Weak", "Weak", "Fair", "Strong", "Very Strong"}

// Known sequences scanned in both directions, lowercased input.
var sequences = []string{
	"abcdefghijklmnopqrstuvwxyz",
	"0123456789",
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

// Analyze scores a password. An empty password is valid input and yields
// the lowest score.
func Analyze(password string) Report {
	classes := detectClasses(password)
	length := utf8.RuneCountInString(password)

	var entropy float64
	if length > 0 {
		pool := classes.PoolSize()
		if pool == 0 {
			pool = 1
		}
		entropy = float64(length) * math.Log2(float64(pool))
	}

	warnings := detectWarnings(password)
	score := scoreFrom(entropy, warnings)

	return Report{
		Length:   length,
		Entropy:  math.Round(entropy*10) / 10,
		Classes:  classes,
		Warnings: warnings,
		Score:    score,
		Label:    labels[score],
	}
}

func detectClasses(password string) Classes {
	var c Classes
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			c.Lower = true
		case unicode.IsUpper(r):
			c.Upper = true
		case unicode.IsDigit(r):
			c.Digit = true
		default:
			c.Symbol = true
		}
	}
	return c
}

func detectWarnings(password string) []Warning {
	var warnings []Warning

	if hasSequentialRun(password) {
		warnings = append(warnings, WarnSequential)
	}
	if hasRepeatedRun(password) {
		warnings = append(warnings, WarnRepeated)
	}
	if isPeriodic(password) {
		warnings = append(warnings, WarnPeriodic)
	}
	if n := utf8.RuneCountInString(password); n < 8 {
		warnings = append(warnings, WarnTooShort)
	} else if n < 12 {
		warnings = append(warnings, WarnShort)
	}

	return warnings
}

// hasSequentialRun reports whether the password contains any 3 character
// chunk of a known sequence, forwards or backwards, case insensitively.
func hasSequentialRun(password string) bool {
	lower := strings.ToLower(password)
	for _, seq := range sequences {
		for i := 0; i+3 <= len(seq); i++ {
			chunk := seq[i : i+3]
			if strings.Contains(lower, chunk) || strings.Contains(lower, reverse(chunk)) {
				return true
			}
		}
	}
	return false
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func hasRepeatedRun(password string) bool {
	runes := []rune(password)
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// isPeriodic reports whether the whole password is a repetition of a sub
// pattern with period at most half its length, like "abab" or "123123".
func isPeriodic(password string) bool {
	n := len(password)
	for period := 1; period <= n/2; period++ {
		if n%period != 0 {
			continue
		}

		repeated := true
		for i := period; i < n; i++ {
			if password[i] != password[i-period] {
				repeated = false
				break
			}
		}
		if repeated {
			return true
		}
	}
	return false
}

// scoreFrom derives the 0-4 composite. Entropy sets the base level, then
// each penalizing warning category subtracts one, floored at 0. Higher
// entropy with the same warnings never scores lower, and an extra
// warning never scores higher.
func scoreFrom(entropy float64, warnings []Warning) int {
	var base int
	switch {
	case entropy < 28:
		base = 0
	case entropy < 36:
		base = 1
	case entropy < 50:
		base = 2
	case entropy < 65:
		base = 3
	default:
		base = 4
	}

	for _, w := range warnings {
		switch w {
		case WarnSequential, WarnRepeated, WarnPeriodic, WarnTooShort:
			base--
		}
	}

	if base < 0 {
		base = 0
	}
	return base
}
