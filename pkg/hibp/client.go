package hibp

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"io"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the Pwned Passwords range endpoint.
const DefaultBaseURL = "https://api.pwnedpasswords.com"

var (
	// ErrNetwork wraps transport failures and non-success statuses from
	// the range endpoint.
	ErrNetwork = errors.New("range endpoint unreachable")
	// ErrProtocol wraps responses that cannot be parsed as SUFFIX:COUNT
	// lines.
	ErrProtocol = errors.New("malformed range response")
)

// Entry is one line of a range response: a 35 character hash suffix and
// the number of times that password was seen in breaches.
type Entry struct {
	Suffix string
	Count  int
}

// Result is the outcome of a breach presence check. Found false always
// carries Count 0.
type Result struct {
	Found bool
	Count int
}

// Client queries the Pwned Passwords range API using k-anonymity: only
// the first 5 hex characters of a password's SHA-1 hash are ever sent.
// The base URL and HTTP client are settable so callers can point it at a
// mirror or a test server.
type Client struct {
	BaseURL   string
	UserAgent string
	http      *retryablehttp.Client
}

// NewClient returns a Client against the public endpoint. The check path
// does not retry; retry policy belongs to the caller.
func NewClient() *Client {
	c := initHttpClient()
	c.RetryMax = 0

	return &Client{
		BaseURL:   DefaultBaseURL,
		UserAgent: "golang-passguard/1.0",
		http:      c,
	}
}

func initHttpClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// Too much garbage in the logs.
	client.Logger = nil

	client.HTTPClient = &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			DisableCompression: false,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS13,
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       10 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			// HTTP/2 only establishes one connection. Disabling it is
			// much faster for the bulk download, and the check path does
			// not care either way.
			ForceAttemptHTTP2:   false,
			MaxIdleConnsPerHost: runtime.GOMAXPROCS(0) + 1,
		},
	}

	return client
}

// CheckPassword hashes the password and reports whether it appears in the
// breach corpus. The plaintext and the hash suffix never leave the
// process.
func (c *Client) CheckPassword(ctx context.Context, password string) (Result, error) {
	return c.CheckDigest(ctx, Sum(password))
}

// CheckDigest is CheckPassword for a pre-hashed input.
func (c *Client) CheckDigest(ctx context.Context, digest Digest) (Result, error) {
	entries, err := c.Range(ctx, digest.Prefix())
	if err != nil {
		return Result{}, err
	}

	return Match(entries, digest), nil
}

// Match scans a parsed range for the digest's suffix. Comparison is case
// insensitive; the API serves uppercase but mirrors may not.
func Match(entries []Entry, digest Digest) Result {
	suffix := digest.Suffix()
	for _, e := range entries {
		if strings.EqualFold(e.Suffix, suffix) {
			return Result{Found: true, Count: e.Count}
		}
	}
	return Result{}
}

// Range fetches and parses the response for a single 5 character hash
// prefix. Exposed so callers can cache ranges; a range holds no secret,
// only public breach data shared by every password with that prefix.
func (c *Client) Range(ctx context.Context, prefix string) ([]Entry, error) {
	body, err := c.rangeBody(ctx, prefix)
	if err != nil {
		return nil, err
	}

	return parseRange(body)
}

func (c *Client) rangeBody(ctx context.Context, prefix string) ([]byte, error) {
	req, err := c.rangeRequest(ctx, prefix)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("range request for %s: %v: %w", prefix, err, ErrNetwork)
	}

	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing body for range %s", prefix)
		}
	}(res.Body)

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("range request for %s failed with status [%d] %s: %w", prefix, res.StatusCode, res.Status, ErrNetwork)
	}

	return io.ReadAll(res.Body)
}

func (c *Client) rangeRequest(ctx context.Context, prefix string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/range/%s", c.BaseURL, prefix),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	return req, nil
}

func parseRange(body []byte) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		suffix, count, ok := strings.Cut(line, ":")
		if !ok || len(suffix) != DigestLen-PrefixLen {
			return nil, fmt.Errorf("line %q: %w", line, ErrProtocol)
		}

		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("line %q: bad count: %w", line, ErrProtocol)
		}

		entries = append(entries, Entry{Suffix: suffix, Count: n})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrProtocol)
	}

	return entries, nil
}
