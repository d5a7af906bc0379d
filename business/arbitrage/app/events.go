package app

import (
	"context"
	"time"

	"github.com/fd1az/quote-engine/business/arbitrage/domain"
)

// EventKind identifies an Event.
type EventKind string

const (
	EventTokenStarted   EventKind = "token_started"
	EventCEXResult      EventKind = "cex_result"
	EventDEXResult      EventKind = "dex_result"
	EventTokenCompleted EventKind = "token_completed"
	EventBatchCompleted EventKind = "batch_completed"
	EventScanCompleted  EventKind = "scan_completed"
	EventError          EventKind = "error"
)

// CEXSnapshot is the top of book of both CEX legs. Zero means no price.
type CEXSnapshot struct {
	Venue    string
	Token    string
	Pair     string
	TokenBid float64
	TokenAsk float64
	PairBid  float64
	PairAsk  float64

	// Mid and spread of the token leg; zero when a side is missing.
	TokenMid       float64
	TokenSpreadBps float64
}

// Event is one step of a scan. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	ScanID    string
	Token     string
	Batch     int
	CEX       *CEXSnapshot
	Result    *domain.Result
	Results   []domain.Result
	Evaluated int
	Err       error
	Timestamp time.Time
}

// emit sends ev unless ctx is done. A nil channel drops the event.
func emit(ctx context.Context, events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// Dispatch forwards every event to every reporter until events closes.
func Dispatch(ctx context.Context, events <-chan Event, reporters ...Reporter) {
	for ev := range events {
		for _, r := range reporters {
			r.Handle(ctx, ev)
		}
	}
}
