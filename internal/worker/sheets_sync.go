// Package worker keeps a Google Sheets tab in step with a budget file by
// re-exporting a report whenever another process announces a change.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"homebudget/internal/amqp"
	"homebudget/internal/log"
	"homebudget/internal/presenter"
)

// DefaultDebounce is how long the worker waits after a change event before
// re-exporting, so a burst of edits costs one write.
const DefaultDebounce = 2 * time.Second

// Sink receives a report and writes it out on Flush.
type Sink interface {
	presenter.Display
	Flush(ctx context.Context) error
}

// SinkFactory returns a fresh sink for every export.
type SinkFactory func(ctx context.Context) (Sink, error)

// Consumer delivers change events until ctx is done.
type Consumer interface {
	ConsumeBudgetChanged(ctx context.Context, handler func(*amqp.BudgetChangedMessage) error) error
}

// SheetsSync rebuilds one report shape and writes it through a sink.
type SheetsSync struct {
	reports  presenter.Reports
	newSink  SinkFactory
	sel      presenter.Selection
	debounce time.Duration
	logger   *log.Logger

	pending chan struct{}
	synced  atomic.Int64
	failed  atomic.Int64
}

func NewSheetsSync(reports presenter.Reports, newSink SinkFactory, sel presenter.Selection, debounce time.Duration, logger *log.Logger) *SheetsSync {
	if debounce < 0 {
		debounce = 0
	}
	return &SheetsSync{
		reports:  reports,
		newSink:  newSink,
		sel:      sel,
		debounce: debounce,
		logger:   logger.WithComponent(log.ComponentExport),
		pending:  make(chan struct{}, 1),
	}
}

// HandleChange marks the tab stale. It never blocks: events arriving while an
// export is already pending fold into it.
func (w *SheetsSync) HandleChange(msg *amqp.BudgetChangedMessage) error {
	w.logger.Debug("Change event received",
		log.FieldEntity, msg.Entity,
		log.FieldOperation, msg.Op,
		"message_id", msg.ID)
	select {
	case w.pending <- struct{}{}:
	default:
	}
	return nil
}

// Sync builds the report and flushes it once.
func (w *SheetsSync) Sync(ctx context.Context) error {
	start := time.Now()
	sink, err := w.newSink(ctx)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("open sink: %w", err)
	}
	if err := presenter.Show(ctx, w.reports, w.sel, sink); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("build report: %w", err)
	}
	if err := sink.Flush(ctx); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("flush report: %w", err)
	}
	w.synced.Add(1)
	w.logger.Info("Report exported",
		log.FieldReportShape, w.sel.Shape(),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Run exports once at startup, then again after every quiet period that
// follows a change. It returns when ctx is done or the consumer fails.
func (w *SheetsSync) Run(ctx context.Context, events Consumer) error {
	if err := w.Sync(ctx); err != nil {
		w.logger.Warn("Startup export failed", log.FieldError, err)
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- events.ConsumeBudgetChanged(ctx, w.HandleChange)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-consumeErr:
			if err != nil {
				return fmt.Errorf("consume changes: %w", err)
			}
			return nil
		case <-w.pending:
			if !w.settle(ctx) {
				return ctx.Err()
			}
			if err := w.Sync(ctx); err != nil {
				w.logger.Error("Export failed", log.FieldError, err)
			}
		}
	}
}

// settle waits until no event has arrived for a full debounce period.
func (w *SheetsSync) settle(ctx context.Context) bool {
	if w.debounce == 0 {
		return true
	}
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-w.pending:
			timer.Reset(w.debounce)
		case <-timer.C:
			return true
		}
	}
}

// Stats returns how many exports succeeded and failed so far.
func (w *SheetsSync) Stats() (synced, failed int64) {
	return w.synced.Load(), w.failed.Load()
}
