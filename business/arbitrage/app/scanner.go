package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fd1az/quote-engine/business/arbitrage/domain"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/logger"
)

const defaultBatchSize = 5

// TokenEvaluator evaluates one token.
type TokenEvaluator interface {
	EvaluateToken(ctx context.Context, token *domain.TokenDescriptor, filter Filter, events chan<- Event) ([]domain.Result, error)
}

// Scanner runs tokens through the evaluator in batches.
type Scanner struct {
	evaluator TokenEvaluator
	policy    *delay.Policy
	batchSize int
	logger    logger.LoggerInterface

	// ParallelTokens evaluates a batch's tokens concurrently, token i
	// starting i inter-token delays after the first.
	ParallelTokens bool
}

// NewScanner creates a Scanner. batchSize <= 0 uses the default.
func NewScanner(evaluator TokenEvaluator, policy *delay.Policy, batchSize int, log logger.LoggerInterface) *Scanner {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Scanner{evaluator: evaluator, policy: policy, batchSize: batchSize, logger: log}
}

// Run scans tokens and streams events. The channel is closed after
// EventScanCompleted, or early when ctx is cancelled.
func (s *Scanner) Run(ctx context.Context, tokens []domain.TokenDescriptor, filter Filter) <-chan Event {
	out := make(chan Event, 64)
	raw := make(chan Event, 64)
	scanID := uuid.NewString()

	// Stamp scan metadata on everything the evaluator emits. Events arrive
	// in order, so the batch index advances on each EventBatchCompleted.
	go func() {
		defer close(out)
		current := 0
		for ev := range raw {
			ev.ScanID = scanID
			if ev.Kind == EventBatchCompleted {
				current = ev.Batch + 1
			} else {
				ev.Batch = current
			}
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
	}()

	go func() {
		defer close(raw)
		s.run(ctx, scanID, tokens, filter, raw)
	}()

	return out
}

func (s *Scanner) run(ctx context.Context, scanID string, tokens []domain.TokenDescriptor, filter Filter, events chan<- Event) {
	s.logger.Info(ctx, "scan started", "scan_id", scanID, "tokens", len(tokens), "batch_size", s.batchSize)

	evaluated := 0
	defer func() {
		emit(ctx, events, Event{Kind: EventScanCompleted, Evaluated: evaluated})
		s.logger.Info(ctx, "scan completed", "scan_id", scanID, "tokens", evaluated)
	}()

	if len(tokens) == 0 {
		emit(ctx, events, Event{Kind: EventError, Err: apperror.New(apperror.CodeInvalidInput, apperror.WithContext("no tokens to scan"))})
		return
	}

	for start, b := 0, 0; start < len(tokens); start, b = start+s.batchSize, b+1 {
		end := min(start+s.batchSize, len(tokens))

		if b > 0 {
			if err := s.policy.Await(ctx, delay.ScopeBatch, ""); err != nil {
				return
			}
		}

		var count int
		if s.ParallelTokens {
			count = s.runParallel(ctx, tokens[start:end], filter, events)
			evaluated += count
		} else {
			for i := start; i < end; i++ {
				if i > start {
					if err := s.policy.Await(ctx, delay.ScopeToken, ""); err != nil {
						return
					}
				}
				if ctx.Err() != nil {
					return
				}
				if s.evaluate(ctx, &tokens[i], filter, events) {
					count++
					evaluated++
				}
			}
		}

		emit(ctx, events, Event{Kind: EventBatchCompleted, Batch: b, Evaluated: count})
	}
}

// runParallel staggers the batch by position instead of serializing it.
func (s *Scanner) runParallel(ctx context.Context, batch []domain.TokenDescriptor, filter Filter, events chan<- Event) int {
	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)
	for i := range batch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.policy.AwaitPosition(ctx, delay.ScopeToken, "", i); err != nil {
				return
			}
			if ctx.Err() != nil {
				return
			}
			if s.evaluate(ctx, &batch[i], filter, events) {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	return int(ok.Load())
}

func (s *Scanner) evaluate(ctx context.Context, token *domain.TokenDescriptor, filter Filter, events chan<- Event) bool {
	if _, err := s.evaluator.EvaluateToken(ctx, token, filter, events); err != nil {
		s.logger.Error(ctx, "token rejected", "token", token.Symbol, "error", err)
		emit(ctx, events, Event{Kind: EventError, Token: token.Symbol, Err: err})
		return false
	}
	return true
}
