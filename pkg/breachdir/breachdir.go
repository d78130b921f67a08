// Package breachdir aggregates email breach reports from multiple
// breach directory services. Each service is a Source with its own
// response schema; a per-source parser normalizes it into Breach records
// which are merged by normalized breach name. A failing source degrades
// the report instead of failing the whole check.
package breachdir

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidEmail is returned for inputs without a local@domain shape.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrAllSourcesUnavailable is returned when every source failed, so
	// callers can tell "no breaches found" from "could not check".
	ErrAllSourcesUnavailable = errors.New("all breach sources unavailable")
)

// Minimal syntactic check only. Existence is a different problem.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// Breach is one known data exposure event. Key is the lowercased and
// trimmed name used for dedup across sources.
type Breach struct {
	Name    string    `json:"name"`
	Key     string    `json:"-"`
	Date    time.Time `json:"date,omitempty"`
	Fields  []string  `json:"fields,omitempty"`
	Sources []string  `json:"sources"`
}

// Status of one queried source.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// SourceStatus reports how one source's query went.
type SourceStatus struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Report is the merged result of querying every source for one email.
type Report struct {
	Sources  []SourceStatus `json:"sources"`
	Breaches []Breach       `json:"breaches"`
	Total    int            `json:"total"`
}

// Source is one breach directory service. Lookup returns single-source
// records; adding a directory means adding a Source, the merge does not
// change.
type Source interface {
	Name() string
	Lookup(ctx context.Context, email string) ([]Breach, error)
}

// Aggregator fans an email out to every source and merges the results.
type Aggregator struct {
	sources []Source
	timeout time.Duration
}

// NewAggregator queries the given sources, each with its own timeout.
// With no sources given it uses the two public directories.
func NewAggregator(timeout time.Duration, sources ...Source) *Aggregator {
	if len(sources) == 0 {
		sources = []Source{NewXposedOrNot(), NewLeakCheck()}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Aggregator{sources: sources, timeout: timeout}
}

// CheckEmail queries every source concurrently and merges their records.
// Per-source failures are captured in the report; only when every source
// fails does the call return ErrAllSourcesUnavailable.
func (a *Aggregator) CheckEmail(ctx context.Context, email string) (*Report, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%q: %w", email, ErrInvalidEmail)
	}

	type outcome struct {
		status  Status
		records []Breach
	}
	outcomes := make([]outcome, len(a.sources))

	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			srcCtx, cancel := context.WithTimeout(gCtx, a.timeout)
			defer cancel()

			records, err := src.Lookup(srcCtx, email)
			if err != nil {
				outcomes[i] = outcome{status: classify(err)}
				log.Debug().Err(err).Msgf("source %s failed", src.Name())
				return nil
			}

			outcomes[i] = outcome{status: StatusOK, records: records}
			return nil
		})
	}
	// Workers never return errors, failure is per-source state.
	_ = g.Wait()

	report := &Report{}
	failures := 0
	var collected []Breach
	for i, src := range a.sources {
		report.Sources = append(report.Sources, SourceStatus{Name: src.Name(), Status: outcomes[i].status})
		if outcomes[i].status != StatusOK {
			failures++
			continue
		}
		collected = append(collected, outcomes[i].records...)
	}

	if failures == len(a.sources) {
		return nil, fmt.Errorf("checking %s: %w", email, ErrAllSourcesUnavailable)
	}

	report.Breaches = merge(collected)
	report.Total = len(report.Breaches)
	return report, nil
}

// classify maps a lookup failure to a per-source status. Timeouts are
// reported separately, everything else is a plain error.
func classify(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}
	return StatusError
}

// merge groups records by normalized name, unions exposed fields, keeps
// the earliest known date and tags each group with every contributing
// source. Output is sorted by key for stable reports.
func merge(records []Breach) []Breach {
	byKey := make(map[string]*Breach)
	var order []string

	for _, r := range records {
		key := r.Key
		if key == "" {
			key = NormalizeName(r.Name)
		}

		existing, ok := byKey[key]
		if !ok {
			merged := r
			merged.Key = key
			merged.Fields = append([]string(nil), r.Fields...)
			merged.Sources = append([]string(nil), r.Sources...)
			byKey[key] = &merged
			order = append(order, key)
			continue
		}

		if !r.Date.IsZero() && (existing.Date.IsZero() || r.Date.Before(existing.Date)) {
			existing.Date = r.Date
		}
		existing.Fields = unionFields(existing.Fields, r.Fields)
		for _, s := range r.Sources {
			if !contains(existing.Sources, s) {
				existing.Sources = append(existing.Sources, s)
			}
		}
	}

	sort.Strings(order)
	merged := make([]Breach, 0, len(order))
	for _, key := range order {
		b := byKey[key]
		sort.Strings(b.Fields)
		merged = append(merged, *b)
	}
	return merged
}

// NormalizeName is the dedup key for a breach name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func unionFields(a, b []string) []string {
	for _, f := range b {
		if f != "" && !contains(a, f) {
			a = append(a, f)
		}
	}
	return a
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
