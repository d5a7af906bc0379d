// Package delay resolves per-venue call spacing, inter-token and inter-batch
// pauses, and request timeouts through a layered override hierarchy:
// live override, static configuration, per-vendor default, global default.
package delay

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/ratelimit"
)

// Scope selects which delay table is consulted.
type Scope string

const (
	ScopeCEX     Scope = "cex"
	ScopeDEX     Scope = "dex"
	ScopeToken   Scope = "token"
	ScopeBatch   Scope = "batch"
	ScopeTimeout Scope = "timeout"
)

// Overrides supplies live, user-editable values. Values may be numbers or
// numeric strings in milliseconds; anything else is ignored.
type Overrides interface {
	Lookup(scope Scope, key string) (any, bool)
}

// Stats is the bookkeeping kept per venue key. Interval is the spacing in
// force at the last reservation.
type Stats struct {
	LastCall time.Time
	Count    int64
	Interval time.Duration
}

type venueState struct {
	limiter  *ratelimit.Limiter
	lastCall time.Time
	count    int64
}

// Policy is one owner's delay engine. Instances share nothing.
type Policy struct {
	static    config.DelayTable
	overrides Overrides

	mu     sync.Mutex
	venues map[string]*venueState
}

// New creates a Policy. overrides may be nil.
func New(static config.DelayTable, overrides Overrides) *Policy {
	return &Policy{
		static:    static,
		overrides: overrides,
		venues:    make(map[string]*venueState),
	}
}

// DelayFor resolves the delay for scope and key.
func (p *Policy) DelayFor(scope Scope, key string) time.Duration {
	key = normalizeKey(scope, key)

	if p.overrides != nil {
		if raw, ok := p.overrides.Lookup(scope, key); ok {
			if ms, ok := parseMillis(raw); ok && usable(scope, ms) {
				return millis(ms)
			}
		}
	}

	if ms, ok := p.staticValue(scope, key); ok && usable(scope, ms) {
		return millis(ms)
	}

	if table, ok := vendorDefaults[scope]; ok {
		if ms, ok := table[key]; ok {
			return millis(ms)
		}
	}

	return millis(globalDefaults[scope])
}

// DelayForPosition scales the delay by ordinal position so a caller can issue
// n calls at once with each one offset by the venue spacing.
func (p *Policy) DelayForPosition(scope Scope, key string, position int) time.Duration {
	if position <= 0 {
		return 0
	}
	return time.Duration(position) * p.DelayFor(scope, key)
}

// Timeout returns the per-call request timeout.
func (p *Policy) Timeout() time.Duration {
	return p.DelayFor(ScopeTimeout, "")
}

// Await blocks for the scope's delay. CEX and DEX scopes enforce minimum
// spacing between successive calls to the same venue; token and batch
// scopes sleep the full value. The timeout scope never blocks.
func (p *Policy) Await(ctx context.Context, scope Scope, key string) error {
	switch scope {
	case ScopeCEX, ScopeDEX:
		return sleep(ctx, p.reserve(scope, key))
	case ScopeTimeout:
		return nil
	default:
		return sleep(ctx, p.DelayFor(scope, key))
	}
}

// AwaitPosition sleeps DelayForPosition without touching venue bookkeeping.
func (p *Policy) AwaitPosition(ctx context.Context, scope Scope, key string, position int) error {
	return sleep(ctx, p.DelayForPosition(scope, key, position))
}

// Stats returns the bookkeeping for a venue key.
func (p *Policy) Stats(scope Scope, key string) Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.venues[stateKey(scope, key)]
	if !ok {
		return Stats{}
	}
	return Stats{LastCall: st.lastCall, Count: st.count, Interval: st.limiter.Interval()}
}

func (p *Policy) reserve(scope Scope, key string) time.Duration {
	interval := p.DelayFor(scope, key)

	p.mu.Lock()
	defer p.mu.Unlock()

	sk := stateKey(scope, key)
	st, ok := p.venues[sk]
	if !ok {
		st = &venueState{limiter: ratelimit.NewSpacing(interval)}
		p.venues[sk] = st
	}
	st.limiter.SetInterval(interval)

	wait := st.limiter.ReserveDelay()
	st.lastCall = time.Now().Add(wait)
	st.count++
	return wait
}

func (p *Policy) staticValue(scope Scope, key string) (float64, bool) {
	var ptr *float64
	switch scope {
	case ScopeCEX:
		v, ok := p.static.CEX[key]
		return v, ok
	case ScopeDEX:
		v, ok := p.static.DEX[key]
		return v, ok
	case ScopeToken:
		ptr = p.static.Token
	case ScopeBatch:
		ptr = p.static.Batch
	case ScopeTimeout:
		ptr = p.static.Timeout
	}
	if ptr == nil {
		return 0, false
	}
	return *ptr, true
}

// usable reports whether ms may be served for scope. A zero timeout would
// cancel every call, so non-positive timeouts fall through to the next tier.
func usable(scope Scope, ms float64) bool {
	return scope != ScopeTimeout || ms > 0
}

// parseMillis accepts numeric kinds and numeric strings. Anything else,
// booleans included, reports ok=false so it falls through.
func parseMillis(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func millis(ms float64) time.Duration {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func normalizeKey(scope Scope, key string) string {
	switch scope {
	case ScopeCEX, ScopeDEX:
		return strings.ToLower(strings.TrimSpace(key))
	default:
		return ""
	}
}

func stateKey(scope Scope, key string) string {
	return string(scope) + ":" + normalizeKey(scope, key)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
