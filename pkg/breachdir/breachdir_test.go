package breachdir

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const xonFound = `{
	"ExposedBreaches": {
		"breaches_details": [
			{"breach": "Adobe", "xposed_date": "2013", "xposed_data": "Email addresses;Passwords"},
			{"breach": "LinkedIn", "xposed_date": "2012", "xposed_data": "Email addresses"}
		]
	}
}`

const lcFound = `{
	"success": true,
	"found": 2,
	"fields": ["password", "username"],
	"sources": [
		{"name": "Adobe", "date": "2013-10"},
		{"name": "Dropbox", "date": "2012-07"}
	]
}`

const lcEmpty = `{"success": true, "found": 0, "fields": [], "sources": []}`

func fixtureServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func testSources(t *testing.T, xonBody string, xonStatus int, lcBody string, lcStatus int) (*XposedOrNot, *LeakCheck) {
	t.Helper()

	xon := NewXposedOrNot()
	xon.BaseURL = fixtureServer(t, xonBody, xonStatus).URL

	lc := NewLeakCheck()
	lc.BaseURL = fixtureServer(t, lcBody, lcStatus).URL

	return xon, lc
}

func findBreach(report *Report, key string) *Breach {
	for i := range report.Breaches {
		if report.Breaches[i].Key == key {
			return &report.Breaches[i]
		}
	}
	return nil
}

func TestCheckEmail_MergesBothSources(t *testing.T) {
	xon, lc := testSources(t, xonFound, http.StatusOK, lcFound, http.StatusOK)

	report, err := NewAggregator(time.Second, xon, lc).CheckEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("Should not fail checking email: %s", err)
	}

	if report.Total != 3 {
		t.Errorf("Adobe, LinkedIn and Dropbox should merge to 3 breaches, got %d", report.Total)
	}

	for _, key := range []string{"adobe", "linkedin", "dropbox"} {
		if findBreach(report, key) == nil {
			t.Errorf("Report should contain breach %s", key)
		}
	}

	for _, src := range report.Sources {
		if src.Status != StatusOK {
			t.Errorf("Source %s should be ok, got %s", src.Name, src.Status)
		}
	}
}

func TestCheckEmail_UnionsFieldsAcrossSources(t *testing.T) {
	xon, lc := testSources(t,
		`{"ExposedBreaches": {"breaches_details": [{"breach": "Foo Inc", "xposed_data": "email"}]}}`,
		http.StatusOK,
		`{"success": true, "found": 1, "fields": ["password"], "sources": [{"name": "foo inc"}]}`,
		http.StatusOK)

	report, err := NewAggregator(time.Second, xon, lc).CheckEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("Should not fail checking email: %s", err)
	}

	if report.Total != 1 {
		t.Fatalf("Names differing in case should dedup to one record, got %d", report.Total)
	}

	breach := report.Breaches[0]
	if breach.Key != "foo inc" {
		t.Errorf("Dedup key should be normalized, got %q", breach.Key)
	}
	if len(breach.Fields) != 2 {
		t.Errorf("Fields should union to {email, password}, got %v", breach.Fields)
	}
	if len(breach.Sources) != 2 {
		t.Errorf("The merged record should be tagged with both sources, got %v", breach.Sources)
	}
}

func TestCheckEmail_KeepsEarliestDate(t *testing.T) {
	xon, lc := testSources(t, xonFound, http.StatusOK, lcFound, http.StatusOK)

	report, err := NewAggregator(time.Second, xon, lc).CheckEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("Should not fail checking email: %s", err)
	}

	adobe := findBreach(report, "adobe")
	if adobe == nil {
		t.Fatalf("Report should contain Adobe")
	}

	// XON reports bare 2013, LeakCheck 2013-10. Earliest wins.
	want := time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	if !adobe.Date.Equal(want) {
		t.Errorf("Adobe date should be the earliest (%v), got %v", want, adobe.Date)
	}
}

func TestCheckEmail_OneSourceDown(t *testing.T) {
	xon, lc := testSources(t, "down", http.StatusServiceUnavailable, lcFound, http.StatusOK)

	report, err := NewAggregator(time.Second, xon, lc).CheckEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("One failing source should not fail the check: %s", err)
	}

	if report.Total != 2 {
		t.Errorf("LeakCheck alone should contribute 2 breaches, got %d", report.Total)
	}

	statuses := map[string]Status{}
	for _, src := range report.Sources {
		statuses[src.Name] = src.Status
	}
	if statuses["XposedOrNot"] != StatusError {
		t.Errorf("XposedOrNot should report error, got %s", statuses["XposedOrNot"])
	}
	if statuses["LeakCheck"] != StatusOK {
		t.Errorf("LeakCheck should report ok, got %s", statuses["LeakCheck"])
	}
}

func TestCheckEmail_AllSourcesDown(t *testing.T) {
	xon, lc := testSources(t, "down", http.StatusServiceUnavailable, "down", http.StatusInternalServerError)

	_, err := NewAggregator(time.Second, xon, lc).CheckEmail(context.Background(), "user@example.com")
	if !errors.Is(err, ErrAllSourcesUnavailable) {
		t.Errorf("Both sources failing should report ErrAllSourcesUnavailable, got: %v", err)
	}
}

func TestCheckEmail_SourceTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	xon := NewXposedOrNot()
	xon.BaseURL = slow.URL

	lc := NewLeakCheck()
	lc.BaseURL = fixtureServer(t, lcFound, http.StatusOK).URL

	report, err := NewAggregator(50*time.Millisecond, xon, lc).CheckEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("A timed out source should not fail the check: %s", err)
	}

	for _, src := range report.Sources {
		if src.Name == "XposedOrNot" && src.Status != StatusTimeout {
			t.Errorf("Slow source should report timeout, got %s", src.Status)
		}
	}
}

func TestCheckEmail_NotFoundAnywhere(t *testing.T) {
	// XON answers 404 for clean addresses; that is not a failure.
	xon, lc := testSources(t, `{"Error": "Not found"}`, http.StatusNotFound, lcEmpty, http.StatusOK)

	report, err := NewAggregator(time.Second, xon, lc).CheckEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("A clean address should not fail: %s", err)
	}

	if report.Total != 0 {
		t.Errorf("Clean address should have 0 breaches, got %d", report.Total)
	}
	for _, src := range report.Sources {
		if src.Status != StatusOK {
			t.Errorf("Source %s should be ok for a clean address, got %s", src.Name, src.Status)
		}
	}
}

func TestCheckEmail_InvalidEmail(t *testing.T) {
	aggregator := NewAggregator(time.Second, NewXposedOrNot(), NewLeakCheck())

	for _, email := range []string{"not-an-email", "", "two@@signs", "spaces in@here.com", "@nolocal.com"} {
		_, err := aggregator.CheckEmail(context.Background(), email)
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("CheckEmail(%q) should report ErrInvalidEmail, got: %v", email, err)
		}
	}
}

func TestMerge_Empty(t *testing.T) {
	if merged := merge(nil); len(merged) != 0 {
		t.Errorf("Merging nothing should yield nothing")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Adobe", "adobe"},
		{"  Foo Inc  ", "foo inc"},
		{"ADOBE", "adobe"},
	}

	for _, tc := range cases {
		if got := NormalizeName(tc.input); got != tc.want {
			t.Errorf("NormalizeName(%q): %q, want %q", tc.input, got, tc.want)
		}
	}
}
