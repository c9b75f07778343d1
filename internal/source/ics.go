package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/rcavanagh/docketbill/internal/log"
	"github.com/rcavanagh/docketbill/internal/model"
)

// ICSSource reads events from an ICS subscription feed.
type ICSSource struct {
	url      string
	client   *http.Client
	maxBytes int64
}

// NewICSSource creates an ICSSource for the given subscription URL.
func NewICSSource(url string, timeout time.Duration, maxBytes int64) *ICSSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	return &ICSSource{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Events fetches the feed and returns the events overlapping [from, to),
// sorted by start time. Individual malformed VEVENTs are logged and skipped;
// only fetch or whole-calendar parse failures are errors.
func (s *ICSSource) Events(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("event source: %w", err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("event source: parse ics: %w", err)
	}

	var events []model.Event
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			log.Debug("skipping unparseable vevent", "reason", err)
			continue
		}
		if ev.Start.Before(to) && ev.End.After(from) || (ev.Start.Equal(ev.End) && !ev.Start.Before(from) && ev.Start.Before(to)) {
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	log.Info("ics fetch completed", "events", len(events), "window_start", from.Format("2006-01-02"))
	return events, nil
}

func (s *ICSSource) fetch(ctx context.Context) ([]byte, error) {
	if s.url == "" {
		return nil, errors.New("ics url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch ics: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read ics body: %w", err)
	}
	return body, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var ev model.Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		if start, err = ve.GetAllDayStartAt(); err != nil {
			return ev, fmt.Errorf("dtstart: %w", err)
		}
		ev.AllDay = true
	}
	end, err := ve.GetEndAt()
	if err != nil {
		if end, err = ve.GetAllDayEndAt(); err != nil {
			// DTEND is optional; a missing end means a zero-length event.
			end = start
		}
	}
	ev.Start = start
	ev.End = end

	// All-day: DTSTART carries VALUE=DATE or a date-only (no 'T') value.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if params := p.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				ev.AllDay = true
			}
		}
		if !strings.Contains(p.Value, "T") {
			ev.AllDay = true
		}
	}

	return ev, nil
}
