package breachdir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// XposedOrNotBaseURL is the public XposedOrNot API.
const XposedOrNotBaseURL = "https://api.xposedornot.com"

// XposedOrNot queries the xposedornot.com breach analytics endpoint.
// BaseURL and HTTPClient are settable so a browser caller can route
// through a CORS relay without touching the lookup logic.
type XposedOrNot struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewXposedOrNot returns a source against the public API.
func NewXposedOrNot() *XposedOrNot {
	return &XposedOrNot{
		BaseURL:    XposedOrNotBaseURL,
		HTTPClient: newSourceHTTPClient(),
	}
}

func (x *XposedOrNot) Name() string {
	return "XposedOrNot"
}

// xonResponse is the breach-analytics schema. Dates are bare years and
// exposed data is a semicolon joined list.
type xonResponse struct {
	ExposedBreaches struct {
		BreachesDetails []struct {
			Breach     string `json:"breach"`
			XposedDate string `json:"xposed_date"`
			XposedData string `json:"xposed_data"`
		} `json:"breaches_details"`
	} `json:"ExposedBreaches"`
}

func (x *XposedOrNot) Lookup(ctx context.Context, email string) ([]Breach, error) {
	endpoint := fmt.Sprintf("%s/v1/breach-analytics?email=%s", x.BaseURL, url.QueryEscape(email))

	body, status, err := getJSON(ctx, x.HTTPClient, endpoint)
	if err != nil {
		return nil, err
	}

	// Not found means the address is clean, not a failure.
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("xposedornot returned status %d", status)
	}

	var resp xonResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("xposedornot: unexpected response shape: %w", err)
	}

	var records []Breach
	for _, d := range resp.ExposedBreaches.BreachesDetails {
		if d.Breach == "" {
			continue
		}
		records = append(records, Breach{
			Name:    d.Breach,
			Key:     NormalizeName(d.Breach),
			Date:    parseBreachDate(d.XposedDate),
			Fields:  splitExposedData(d.XposedData),
			Sources: []string{x.Name()},
		})
	}

	return records, nil
}

// splitExposedData turns "Usernames;Passwords;Email addresses" into
// normalized field names.
func splitExposedData(data string) []string {
	if data == "" {
		return nil
	}

	var fields []string
	for _, f := range strings.Split(data, ";") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
