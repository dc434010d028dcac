package reconcile

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"yieldRecon/internal/chain"
	"yieldRecon/internal/model"
	"yieldRecon/internal/transfer"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	LogSource interface {
		CurrentHead(ctx context.Context) (uint64, error)
		QueryLogs(ctx context.Context, q chain.Query) ([]types.Log, error)
	}
	EventDecoder interface {
		EventID(name string) (common.Hash, error)
		Decode(log types.Log) (model.RawEvent, error)
		Repayment(event model.RawEvent) (model.Repayment, error)
	}
	LoanRegistry interface {
		ResolveLoan(ctx context.Context, hash string) (model.Loan, bool, error)
	}
	RecordStore interface {
		Begin(ctx context.Context, rec model.DistributionRecord) (int, error)
		Complete(ctx context.Context, fp, actionRef string) error
		Fail(ctx context.Context, fp, reason string) error
		ListFailed(ctx context.Context, stream string, limit int) ([]model.DistributionRecord, error)
	}
	Applier interface {
		Apply(ctx context.Context, effect transfer.Effect) (transfer.Receipt, error)
	}
	EngineMetrics interface {
		ObservePass(summary model.Summary, err error, started time.Time)
		ObserveEvent(stream, outcome string)
		SetCursor(stream string, block uint64)
		ObserveAttemptAlert(stream string)
	}
)
