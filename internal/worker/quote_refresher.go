package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stocktr-api/internal/models"
)

// QuoteSource is refreshed on every tick
type QuoteSource interface {
	Refresh(ctx context.Context) ([]models.Quote, error)
}

// QuoteRefresher keeps the quote cache warm by refetching on an interval
type QuoteRefresher struct {
	quotes   QuoteSource
	interval time.Duration
	timeout  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewQuoteRefresher creates a new refresher. Each refresh is bounded by timeout.
func NewQuoteRefresher(quotes QuoteSource, interval, timeout time.Duration) *QuoteRefresher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QuoteRefresher{
		quotes:   quotes,
		interval: interval,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}
}

// Enabled reports whether a positive interval was configured
func (w *QuoteRefresher) Enabled() bool {
	return w.interval > 0
}

// Start runs the refresh loop until Stop is called. It returns at once when disabled.
func (w *QuoteRefresher) Start() {
	if !w.Enabled() {
		return
	}
	slog.Info("quote refresher started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh()
		case <-w.stopChan:
			slog.Info("quote refresher stopped")
			return
		}
	}
}

// Stop stops the refresh loop
func (w *QuoteRefresher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

func (w *QuoteRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	quotes, err := w.quotes.Refresh(ctx)
	if err != nil {
		slog.Warn("quote refresh failed", "error", err)
		return
	}
	slog.Debug("quote cache refreshed", "count", len(quotes))
}
