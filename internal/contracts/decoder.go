package contracts

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"yieldRecon/internal/model"
)

// Decoder turns lending pool logs into RawEvents and typed repayments.
type Decoder struct {
	poolABI abi.ABI
	byID    map[common.Hash]abi.Event
}

// NewDecoder builds a Decoder for the lending pool ABI.
func NewDecoder() (*Decoder, error) {
	poolABI, err := LendingPoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse lending pool abi: %w", err)
	}
	byID := make(map[common.Hash]abi.Event, len(poolABI.Events))
	for _, event := range poolABI.Events {
		byID[event.ID] = event
	}
	return &Decoder{poolABI: poolABI, byID: byID}, nil
}

// EventID returns topic0 for the named event.
func (d *Decoder) EventID(name string) (common.Hash, error) {
	event, ok := d.poolABI.Events[name]
	if !ok {
		return common.Hash{}, fmt.Errorf("unknown event %s", name)
	}
	return event.ID, nil
}

// Decode converts a chain log into a RawEvent with arguments in ABI order.
func (d *Decoder) Decode(log types.Log) (model.RawEvent, error) {
	if len(log.Topics) == 0 {
		return model.RawEvent{}, fmt.Errorf("missing topics")
	}
	event, ok := d.byID[log.Topics[0]]
	if !ok {
		return model.RawEvent{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}

	indexedArgs := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexedArgs)+1 {
		return model.RawEvent{}, fmt.Errorf("expected %d topics, got %d", len(indexedArgs)+1, len(log.Topics))
	}

	indexed := make(map[string]interface{}, len(indexedArgs))
	if err := abi.ParseTopicsIntoMap(indexed, indexedArgs, log.Topics[1:]); err != nil {
		return model.RawEvent{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.RawEvent{}, fmt.Errorf("unpack %s: %w", event.Name, err)
	}

	args := make([]model.Arg, 0, len(event.Inputs))
	next := 0
	for _, input := range event.Inputs {
		var value interface{}
		if input.Indexed {
			value = indexed[input.Name]
		} else {
			if next >= len(values) {
				return model.RawEvent{}, fmt.Errorf("missing value for %s", input.Name)
			}
			value = values[next]
			next++
		}
		args = append(args, model.Arg{Name: input.Name, Type: input.Type.String(), Value: value})
	}

	return model.RawEvent{
		Contract:    log.Address.Hex(),
		EventName:   event.Name,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Args:        args,
	}, nil
}

// Repayment extracts the typed LoanRepaid payload.
func (d *Decoder) Repayment(event model.RawEvent) (model.Repayment, error) {
	if event.EventName != EventLoanRepaid {
		return model.Repayment{}, fmt.Errorf("unexpected event %s", event.EventName)
	}

	loanArg, _ := event.Arg("loanId")
	loanHash, err := asHash(loanArg.Value)
	if err != nil {
		return model.Repayment{}, fmt.Errorf("loanId: %w", err)
	}
	payerArg, _ := event.Arg("payer")
	payer, err := asAddress(payerArg.Value)
	if err != nil {
		return model.Repayment{}, fmt.Errorf("payer: %w", err)
	}
	principalArg, _ := event.Arg("principal")
	principal, err := asBigInt(principalArg.Value)
	if err != nil {
		return model.Repayment{}, fmt.Errorf("principal: %w", err)
	}
	interestArg, _ := event.Arg("interest")
	interest, err := asBigInt(interestArg.Value)
	if err != nil {
		return model.Repayment{}, fmt.Errorf("interest: %w", err)
	}

	return model.Repayment{
		Event:     event,
		LoanHash:  strings.ToLower(loanHash.Hex()),
		Payer:     payer.Hex(),
		Principal: principal,
		Interest:  interest,
	}, nil
}

// PoolTopic encodes a pool address as an indexed topic filter value.
func PoolTopic(pool common.Address) common.Hash {
	return common.BytesToHash(pool.Bytes())
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
