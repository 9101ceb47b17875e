package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crew-booking-backend/config"
	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/metrics"
	"crew-booking-backend/internal/parse"
	"crew-booking-backend/internal/store"
)

var log = logger.New("roster")

// RosterStore is the persistence the sync needs.
type RosterStore interface {
	UpsertRoster(ctx context.Context, entries []store.RosterEntry) error
}

// Service periodically pulls the worker/vehicle roster from an upstream directory.
type Service struct {
	cfg     config.RosterConfig
	store   RosterStore
	client  *http.Client
	metrics metrics.Recorder
}

// NewService creates and initializes a new roster sync service.
func NewService(cfg config.RosterConfig, s RosterStore, rec metrics.Recorder) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warnf("Invalid proxy URL %q: %v. Roster sync will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	if cfg.Request.PageSize <= 0 {
		cfg.Request.PageSize = 100
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		metrics: rec,
	}
}

// Run syncs once immediately and then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Infof("Roster sync is disabled. Not starting.")
		return
	}
	log.Infof("Starting roster sync service...")

	s.syncAndRecord(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("Roster sync service shutting down.")
			return
		case <-timer.C:
			s.syncAndRecord(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) syncAndRecord(ctx context.Context) {
	if err := s.SyncOnce(ctx); err != nil {
		log.Errorf("Roster sync failed: %v", err)
		s.metrics.IncRosterSync("error")
		return
	}
	s.metrics.IncRosterSync("ok")
}

// SyncOnce fetches every page and upserts the valid entries.
func (s *Service) SyncOnce(ctx context.Context) error {
	log.Debugf("Executing roster sync cycle...")

	var all []store.RosterEntry
	total := 1
	pageSize := s.cfg.Request.PageSize
	var fetchErr error
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.fetchPage(ctx, page)
		if err != nil {
			log.Warnf("Error fetching page %d: %v", page, err)
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		all = append(all, resp.Data.Items...)
	}

	// A failed fetch with nothing retrieved must not touch the directory.
	if fetchErr != nil && len(all) == 0 {
		return fmt.Errorf("roster fetch failed: %w", fetchErr)
	}

	entries := Sanitize(all)
	if len(entries) == 0 {
		log.Infof("Roster sync finished: no entries to process.")
		return fetchErr
	}
	if err := s.store.UpsertRoster(ctx, entries); err != nil {
		return fmt.Errorf("failed to upsert roster: %w", err)
	}

	log.Infof("Roster sync finished: %d of %d entries upserted.", len(entries), len(all))
	return fetchErr
}

// Sanitize drops entries that would violate directory invariants and keeps the
// last occurrence of each upstream id.
func Sanitize(items []store.RosterEntry) []store.RosterEntry {
	index := make(map[string]int)
	out := make([]store.RosterEntry, 0, len(items))
	for _, e := range items {
		e.ExternalRef = strings.TrimSpace(e.ExternalRef)
		e.Name = strings.TrimSpace(e.Name)
		e.Vehicle = strings.TrimSpace(e.Vehicle)
		if e.ExternalRef == "" || e.Name == "" {
			log.Warnf("Skipping roster entry without id or name: %+v", e)
			continue
		}
		if e.WorkingHours == "" {
			e.WorkingHours = parse.DefaultWorkingHours
		}
		wh, err := parse.ParseWorkingHours(e.WorkingHours)
		if err != nil {
			log.Warnf("Skipping roster entry %s: %v", e.ExternalRef, err)
			continue
		}
		e.WorkingHours = wh.String()

		if i, ok := index[e.ExternalRef]; ok {
			out[i] = e
			continue
		}
		index[e.ExternalRef] = len(out)
		out = append(out, e)
	}
	return out
}

// fetchPage fetches a single page of roster data from the upstream directory.
func (s *Service) fetchPage(ctx context.Context, page int) (*RosterResponse, error) {
	payload := make(map[string]any)
	for k, v := range s.cfg.Request.Payload {
		payload[k] = v
	}
	payload["page"] = page
	payload["pageSize"] = s.cfg.Request.PageSize

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Request.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range s.cfg.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var rosterResp RosterResponse
	if err := json.Unmarshal(body, &rosterResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster response: %w", err)
	}

	if rosterResp.Code != 0 {
		return nil, fmt.Errorf("roster API returned non-zero application code: %d", rosterResp.Code)
	}

	return &rosterResp, nil
}
