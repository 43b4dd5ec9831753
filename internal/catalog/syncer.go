package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultSyncInterval   = 24 * time.Hour
	defaultRequestTimeout = 15 * time.Second
	maxPayloadBytes       = 32 << 20
)

// Syncer keeps the plant catalogue synced with a JSON source, either an
// http(s) URL or a local file path.
type Syncer struct {
	db       *gorm.DB
	source   string
	interval time.Duration
	client   *http.Client
	now      func() time.Time
}

// NewSyncer constructs a catalogue syncer. A non-positive interval falls
// back to the daily default.
func NewSyncer(db *gorm.DB, source string, interval time.Duration) *Syncer {
	if db == nil || strings.TrimSpace(source) == "" {
		return nil
	}
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &Syncer{
		db:       db,
		source:   strings.TrimSpace(source),
		interval: interval,
		client:   &http.Client{Timeout: defaultRequestTimeout},
		now:      time.Now,
	}
}

// Start runs the sync loop in the background until ctx is done.
func (s *Syncer) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go s.run(ctx)
	log.Infof("catalog syncer started (source=%s interval=%s)", s.source, s.interval)
}

func (s *Syncer) run(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil {
		log.WithError(err).Warn("catalog syncer: initial sync failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				log.WithError(err).Warn("catalog syncer: sync failed")
			}
		}
	}
}

// SyncOnce reads the source and stores its plants.
func (s *Syncer) SyncOnce(ctx context.Context) (StoreReport, error) {
	if s == nil || s.db == nil {
		return StoreReport{}, fmt.Errorf("catalog syncer: nil db")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	clock := s.now
	if clock == nil {
		clock = time.Now
	}

	body, err := s.read(ctx)
	if err != nil {
		return StoreReport{}, err
	}
	entries, err := ParseCatalogPayload(body, s.source)
	if err != nil {
		return StoreReport{}, err
	}
	if len(entries) == 0 {
		return StoreReport{}, fmt.Errorf("catalog syncer: empty payload")
	}

	report, err := StoreEntries(ctx, s.db, entries, clock().UTC())
	if err != nil {
		return StoreReport{}, err
	}
	log.Infof("catalog synced from %s: %s", s.source, report)
	return report, nil
}

func (s *Syncer) read(ctx context.Context) ([]byte, error) {
	lowered := strings.ToLower(s.source)
	if !strings.HasPrefix(lowered, "http://") && !strings.HasPrefix(lowered, "https://") {
		body, err := os.ReadFile(s.source)
		if err != nil {
			return nil, fmt.Errorf("catalog syncer: read file: %w", err)
		}
		return body, nil
	}

	client := s.client
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	requestCtx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog syncer: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog syncer: request failed: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("catalog syncer: close response body failed")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("catalog syncer: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("catalog syncer: read response: %w", err)
	}
	return body, nil
}
