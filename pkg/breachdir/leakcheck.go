package breachdir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// LeakCheckBaseURL is the public LeakCheck API.
const LeakCheckBaseURL = "https://leakcheck.io"

// LeakCheck queries the leakcheck.io public endpoint. Like XposedOrNot
// the base URL and HTTP client are injectable.
type LeakCheck struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewLeakCheck returns a source against the public API.
func NewLeakCheck() *LeakCheck {
	return &LeakCheck{
		BaseURL:    LeakCheckBaseURL,
		HTTPClient: newSourceHTTPClient(),
	}
}

func (l *LeakCheck) Name() string {
	return "LeakCheck"
}

// lcResponse is the public endpoint schema. The exposed field list is
// global to the response and applies to every source entry. Dates are
// year-month.
type lcResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Found   int      `json:"found"`
	Fields  []string `json:"fields"`
	Sources []struct {
		Name string `json:"name"`
		Date string `json:"date"`
	} `json:"sources"`
}

func (l *LeakCheck) Lookup(ctx context.Context, email string) ([]Breach, error) {
	endpoint := fmt.Sprintf("%s/api/public?check=%s", l.BaseURL, url.QueryEscape(email))

	body, status, err := getJSON(ctx, l.HTTPClient, endpoint)
	if err != nil {
		return nil, err
	}
	// The public endpoint reports "not found" as a successful response
	// with found 0, and real errors with success false.
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("leakcheck returned status %d", status)
	}

	var resp lcResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("leakcheck: unexpected response shape: %w", err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("leakcheck rejected the query: %s", resp.Error)
	}

	fields := make([]string, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			fields = append(fields, f)
		}
	}

	var records []Breach
	for _, s := range resp.Sources {
		if s.Name == "" {
			continue
		}
		records = append(records, Breach{
			Name:    s.Name,
			Key:     NormalizeName(s.Name),
			Date:    parseBreachDate(s.Date),
			Fields:  append([]string(nil), fields...),
			Sources: []string{l.Name()},
		})
	}

	return records, nil
}
