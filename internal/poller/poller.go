// Package poller periodically fetches the record set from the upstream
// endpoint and replaces the dashboard snapshot when the payload changed.
package poller

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bizpulse/internal/config"
	"bizpulse/internal/infrastructure"
	"bizpulse/pkg/contracts/domain"
)

// SnapshotStore receives the parsed record set when the payload changed.
type SnapshotStore interface {
	ReplaceRecords(records []domain.BalanceRecord)
}

// Broadcaster announces snapshot replacements to connected clients.
type Broadcaster interface {
	BroadcastDataUpdate(recordCount int)
}

// envelope is the upstream response shape: {"status":"success",
// "data":{"clientData":[...]}}.
type envelope struct {
	Status string `json:"status"`
	Data   struct {
		ClientData []domain.BalanceRecord `json:"clientData"`
	} `json:"data"`
}

// Poller drives the fetch loop. Responses are applied under a monotonically
// increasing sequence: a response whose fetch was issued before a
// later-applied one is stale and is dropped, so a slow response can never
// clobber fresher state.
type Poller struct {
	client   *http.Client
	url      string
	token    string
	interval time.Duration
	logger   *slog.Logger
	store    SnapshotStore
	hub      Broadcaster
	metrics  *infrastructure.BusinessMetrics

	mu         sync.Mutex
	issuedSeq  uint64
	appliedSeq uint64
	lastDigest [sha256.Size]byte
	hasDigest  bool
}

// New creates a poller for the configured upstream.
func New(cfg config.UpstreamConfig, store SnapshotStore, hub Broadcaster, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Poller{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		url:      cfg.BaseURL,
		token:    cfg.Token,
		interval: cfg.PollInterval,
		logger:   logger.With(slog.String("component", "poller")),
		store:    store,
		hub:      hub,
		metrics:  metrics,
	}
}

// HasChanged reports whether two serialized payloads differ. Byte-identical
// payloads never trigger a recompute of derived series.
func HasChanged(previous, next []byte) bool {
	return sha256.Sum256(previous) != sha256.Sum256(next)
}

// Run executes the poll loop until the context is canceled. Each fetch runs
// in its own goroutine so a slow upstream cannot stall the cadence; the
// sequence guard keeps overlapping responses ordered.
func (p *Poller) Run(ctx context.Context) error {
	if p.url == "" {
		p.logger.Info("no upstream configured, poller idle")
		<-ctx.Done()
		return nil
	}

	p.logger.Info("poller starting",
		slog.String("url", p.url),
		slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Fetch immediately instead of waiting a full interval.
	go p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping")
			return nil
		case <-ticker.C:
			go p.pollOnce(ctx)
		}
	}
}

// pollOnce performs one fetch/apply cycle.
func (p *Poller) pollOnce(ctx context.Context) {
	p.mu.Lock()
	p.issuedSeq++
	seq := p.issuedSeq
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.PollCyclesTotal.Add(ctx, 1)
	}

	payload, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.WarnContext(ctx, "upstream fetch failed",
				slog.Uint64("seq", seq),
				slog.String("error", err.Error()))
		}
		return
	}

	p.Apply(ctx, seq, payload)
}

// Apply installs a fetched payload under the sequence guard. Returns true
// when the snapshot was replaced. Exposed for the seed path and tests.
func (p *Poller) Apply(ctx context.Context, seq uint64, payload []byte) bool {
	records, err := decodeRecords(payload)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to decode upstream payload",
			slog.Uint64("seq", seq),
			slog.String("error", err.Error()))
		return false
	}

	digest := sha256.Sum256(payload)

	p.mu.Lock()
	if seq < p.appliedSeq {
		p.mu.Unlock()
		p.logger.InfoContext(ctx, "dropping stale poll response",
			slog.Uint64("seq", seq))
		return false
	}
	p.appliedSeq = seq

	if p.hasDigest && digest == p.lastDigest {
		p.mu.Unlock()
		return false
	}
	p.lastDigest = digest
	p.hasDigest = true
	p.mu.Unlock()

	p.store.ReplaceRecords(records)
	if p.metrics != nil {
		p.metrics.SnapshotUpdates.Add(ctx, 1)
		p.metrics.SnapshotRecords.Record(ctx, int64(len(records)))
	}
	if p.hub != nil {
		p.hub.BroadcastDataUpdate(len(records))
	}

	p.logger.InfoContext(ctx, "snapshot replaced",
		slog.Uint64("seq", seq),
		slog.Int("record_count", len(records)))
	return true
}

func (p *Poller) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// decodeRecords accepts either the upstream envelope or a bare record array.
func decodeRecords(payload []byte) ([]domain.BalanceRecord, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []domain.BalanceRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("upstream status %q", env.Status)
	}
	return env.Data.ClientData, nil
}
