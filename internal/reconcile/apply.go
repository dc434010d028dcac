package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yieldRecon/internal/idempotency"
	"yieldRecon/internal/lock"
	"yieldRecon/internal/metrics"
	"yieldRecon/internal/model"
	"yieldRecon/internal/notify"
	"yieldRecon/internal/transfer"
)

type pending struct {
	repayment model.Repayment
	loan      model.Loan
}

// match decodes logs, orders them by block and log index, and drops events that
// need no effect. Only storage errors are returned.
func (e *Engine) match(ctx context.Context, logs []types.Log, t *tally) ([]pending, error) {
	repayments := make([]model.Repayment, 0, len(logs))
	seen := make(map[string]struct{}, len(logs))
	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		event, err := e.deps.Decoder.Decode(lg)
		if err != nil {
			e.logger.Warn("skip undecodable log", zap.Uint64("block", lg.BlockNumber), zap.Uint("log_index", lg.Index), zap.Error(err))
			continue
		}
		if _, dup := seen[event.Key()]; dup {
			continue
		}
		seen[event.Key()] = struct{}{}

		rep, err := e.deps.Decoder.Repayment(event)
		if err != nil {
			e.logger.Warn("skip malformed repayment", zap.String("event", event.Key()), zap.Error(err))
			continue
		}
		repayments = append(repayments, rep)
	}
	sort.SliceStable(repayments, func(i, j int) bool {
		return repayments[i].Event.Before(repayments[j].Event)
	})

	items := make([]pending, 0, len(repayments))
	for _, rep := range repayments {
		loan, ok, err := e.deps.Loans.ResolveLoan(ctx, rep.LoanHash)
		if err != nil {
			return nil, fmt.Errorf("resolve loan %s: %w", rep.LoanHash, err)
		}
		if !ok {
			e.logger.Debug("unmatched repayment", zap.String("loan_hash", rep.LoanHash), zap.String("event", rep.Event.Key()))
			t.add(metrics.OutcomeUnmatched)
			continue
		}
		// Zero-interest events are skipped before marking so they never hold a ledger slot.
		if rep.Interest == nil || rep.Interest.Sign() <= 0 {
			t.add(metrics.OutcomeSkipped)
			continue
		}
		items = append(items, pending{repayment: rep, loan: loan})
	}
	return items, nil
}

// applyAll applies items. Events of one loan run in order; different loans may
// run in parallel up to ApplyConcurrency.
func (e *Engine) applyAll(ctx context.Context, lease *lock.Lease, st Stream, items []pending, t *tally) error {
	if len(items) == 0 {
		return nil
	}

	order := make([]string, 0)
	groups := make(map[string][]pending)
	for _, it := range items {
		if _, ok := groups[it.loan.ID]; !ok {
			order = append(order, it.loan.ID)
		}
		groups[it.loan.ID] = append(groups[it.loan.ID], it)
	}

	// A failing loan stops new events from starting but never cancels an
	// action already in flight for another loan.
	var (
		g       errgroup.Group
		stopped atomic.Bool
	)
	g.SetLimit(e.cfg.ApplyConcurrency)
	for _, loanID := range order {
		group := groups[loanID]
		g.Go(func() error {
			for _, it := range group {
				if stopped.Load() {
					return nil
				}
				if err := e.applyOne(ctx, lease, st, it, t); err != nil {
					stopped.Store(true)
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// applyOne marks, records and applies one event. A failed action is recorded
// and its mark cleared so a later pass or retry can apply it; only storage and
// lease errors are returned.
func (e *Engine) applyOne(ctx context.Context, lease *lock.Lease, st Stream, it pending, t *tally) error {
	if err := checkLease(lease); err != nil {
		return err
	}
	rep := it.repayment
	fp := idempotency.Fingerprint(st.Name, rep.Event, it.loan.ID)

	isNew, err := e.deps.Ledger.CheckAndMark(ctx, fp)
	if err != nil {
		return fmt.Errorf("mark %s: %w", fp, err)
	}
	if !isNew {
		t.add(metrics.OutcomeSkipped)
		return nil
	}

	rec := model.DistributionRecord{
		Fingerprint:       fp,
		Stream:            st.Name,
		PoolID:            it.loan.PoolID,
		LoanID:            it.loan.ID,
		PrincipalAmount:   rep.Principal,
		InterestAmount:    rep.Interest,
		TotalAmount:       rep.Total(),
		SourceBlockNumber: rep.Event.BlockNumber,
		SourceTxHash:      rep.Event.TxHash,
		SourceLogIndex:    rep.Event.LogIndex,
		Status:            model.StatusPending,
		CreatedAt:         time.Now().UTC(),
	}
	attempts, err := e.deps.Records.Begin(ctx, rec)
	if errors.Is(err, model.ErrAlreadyCompleted) {
		t.add(metrics.OutcomeSkipped)
		return nil
	}
	if err != nil {
		e.clearMark(ctx, fp)
		return fmt.Errorf("begin distribution %s: %w", fp, err)
	}
	rec.Attempts = attempts

	if err := checkLease(lease); err != nil {
		return errors.Join(err, e.recordFailure(ctx, rec, err))
	}

	actionCtx, cancel := context.WithTimeout(ctx, e.cfg.ActionTimeout)
	receipt, err := e.deps.Applier.Apply(actionCtx, transfer.Effect{
		Fingerprint: fp,
		PoolID:      it.loan.PoolID,
		LoanID:      it.loan.ID,
		Amount:      rep.Interest,
		Metadata: map[string]string{
			"stream":       st.Name,
			"source_block": strconv.FormatUint(rep.Event.BlockNumber, 10),
			"source_tx":    rep.Event.TxHash,
			"log_index":    strconv.FormatUint(rep.Event.LogIndex, 10),
		},
	})
	cancel()
	if err != nil {
		if !errors.Is(err, model.ErrActionFailure) {
			err = fmt.Errorf("%w: %w", model.ErrActionFailure, err)
		}
		t.add(metrics.OutcomeFailed)
		return e.recordFailure(ctx, rec, err)
	}

	t.add(metrics.OutcomeApplied)
	now := time.Now().UTC()
	rec.Status = model.StatusCompleted
	rec.ActionTxRef = receipt.Reference
	rec.CompletedAt = &now
	if err := e.deps.Records.Complete(ctx, fp, receipt.Reference); err != nil {
		// The effect landed, so the mark stays and the record is left PENDING for an operator.
		e.logger.Error("applied distribution not recorded",
			zap.String("fingerprint", fp),
			zap.String("action_ref", receipt.Reference),
			zap.Error(err),
		)
		return fmt.Errorf("complete distribution %s: %w", fp, err)
	}

	e.logger.Info("distribution applied",
		zap.String("stream", st.Name),
		zap.String("loan_id", it.loan.ID),
		zap.String("fingerprint", fp),
		zap.String("interest", rep.Interest.String()),
		zap.Uint64("block", rep.Event.BlockNumber),
		zap.String("action_ref", receipt.Reference),
	)
	e.finalize(ctx, rec, notify.EventCompleted)
	return nil
}

// recordFailure moves rec to FAILED and clears its mark. Bookkeeping runs on a
// detached context so a cancelled pass still leaves the event retryable.
func (e *Engine) recordFailure(ctx context.Context, rec model.DistributionRecord, cause error) error {
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	rec.Status = model.StatusFailed
	rec.LastError = cause.Error()

	var errs []error
	if err := e.deps.Records.Fail(bctx, rec.Fingerprint, rec.LastError); err != nil {
		errs = append(errs, fmt.Errorf("fail distribution %s: %w", rec.Fingerprint, err))
	}
	if err := e.deps.Ledger.Clear(bctx, rec.Fingerprint); err != nil {
		errs = append(errs, fmt.Errorf("clear %s: %w", rec.Fingerprint, err))
	}

	e.logger.Warn("distribution failed",
		zap.String("stream", rec.Stream),
		zap.String("loan_id", rec.LoanID),
		zap.String("fingerprint", rec.Fingerprint),
		zap.Uint64("block", rec.SourceBlockNumber),
		zap.Int("attempts", rec.Attempts),
		zap.Error(cause),
	)
	if e.cfg.AlertAfterAttempts > 0 && rec.Attempts >= e.cfg.AlertAfterAttempts {
		e.logger.Error("distribution keeps failing",
			zap.String("stream", rec.Stream),
			zap.String("fingerprint", rec.Fingerprint),
			zap.Int("attempts", rec.Attempts),
		)
		e.deps.Metrics.ObserveAttemptAlert(rec.Stream)
		e.publish(bctx, rec, notify.EventAlert)
	}
	e.finalize(bctx, rec, notify.EventFailed)
	return errors.Join(errs...)
}

func (e *Engine) clearMark(ctx context.Context, fp string) {
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()
	if err := e.deps.Ledger.Clear(bctx, fp); err != nil {
		e.logger.Error("clear mark failed", zap.String("fingerprint", fp), zap.Error(err))
	}
}

func (e *Engine) finalize(ctx context.Context, rec model.DistributionRecord, eventType string) {
	if err := e.deps.Audit.Record(rec); err != nil {
		e.logger.Warn("audit write failed", zap.String("fingerprint", rec.Fingerprint), zap.Error(err))
	}
	e.publish(ctx, rec, eventType)
}

func (e *Engine) publish(ctx context.Context, rec model.DistributionRecord, eventType string) {
	amount := "0"
	if rec.InterestAmount != nil {
		amount = rec.InterestAmount.String()
	}
	err := e.deps.Notifier.Notify(ctx, notify.Event{
		Type:        eventType,
		Stream:      rec.Stream,
		Fingerprint: rec.Fingerprint,
		LoanID:      rec.LoanID,
		PoolID:      rec.PoolID,
		Amount:      amount,
		SourceBlock: rec.SourceBlockNumber,
		SourceTx:    rec.SourceTxHash,
		Attempts:    rec.Attempts,
		ActionRef:   rec.ActionTxRef,
		Error:       rec.LastError,
	})
	if err != nil {
		e.logger.Debug("notify failed", zap.String("fingerprint", rec.Fingerprint), zap.Error(err))
	}
}

// tally accumulates per-event outcomes from concurrent workers.
type tally struct {
	mu      sync.Mutex
	stream  string
	summary *model.Summary
	metrics EngineMetrics
}

func newTally(stream string, summary *model.Summary, m EngineMetrics) *tally {
	return &tally{stream: stream, summary: summary, metrics: m}
}

func (t *tally) add(outcome string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.Processed++
	switch outcome {
	case metrics.OutcomeApplied:
		t.summary.Applied++
	case metrics.OutcomeFailed:
		t.summary.Failed++
	case metrics.OutcomeUnmatched:
		t.summary.Unmatched++
		t.summary.Skipped++
	default:
		t.summary.Skipped++
	}
	t.metrics.ObserveEvent(t.stream, outcome)
}

type nopMetrics struct{}

func (nopMetrics) ObservePass(model.Summary, error, time.Time) {}
func (nopMetrics) ObserveEvent(string, string)                {}
func (nopMetrics) SetCursor(string, uint64)                   {}
func (nopMetrics) ObserveAttemptAlert(string)                 {}
