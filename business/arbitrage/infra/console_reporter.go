// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/quote-engine/business/arbitrage/app"
	"github.com/fd1az/quote-engine/business/arbitrage/domain"
)

var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorDanger    = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorMuted     = lipgloss.Color("#6B7280")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	positiveStyle = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(colorDanger)
	warningStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// Ensure ConsoleReporter implements Reporter.
var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter prints scan events as styled lines.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
	// OnlyProfitable hides failed and losing results.
	OnlyProfitable bool
}

// NewConsoleReporter creates a reporter writing to w, or stdout when nil.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleReporter{out: w}
}

// Start prints the banner.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	r.println(headerStyle.Render("Quote Engine Started"))
	return nil
}

// Handle prints one event.
func (r *ConsoleReporter) Handle(ctx context.Context, ev app.Event) {
	ts := mutedStyle.Render(ev.Timestamp.Format("15:04:05"))

	switch ev.Kind {
	case app.EventTokenStarted:
		r.println(fmt.Sprintf("%s %s", ts, headerStyle.Render(ev.Token)))
	case app.EventCEXResult:
		if ev.CEX == nil {
			return
		}
		line := fmt.Sprintf("%s   %s %s bid %s ask %s | %s bid %s ask %s", ts,
			ev.CEX.Venue,
			ev.CEX.Token, price(ev.CEX.TokenBid), price(ev.CEX.TokenAsk),
			ev.CEX.Pair, price(ev.CEX.PairBid), price(ev.CEX.PairAsk))
		if ev.CEX.TokenSpreadBps > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" spread %.1fbps", ev.CEX.TokenSpreadBps))
		}
		r.println(line)
	case app.EventDEXResult:
		if ev.Result != nil {
			r.result(ts, *ev.Result)
		}
	case app.EventTokenCompleted:
		if best, ok := domain.Best(ev.Results); ok {
			r.println(fmt.Sprintf("%s   best %s via %s: %s", ts, best.Direction.Key(), best.DEXVenue, pnl(best)))
		}
	case app.EventBatchCompleted:
		r.println(mutedStyle.Render(fmt.Sprintf("%s batch %d done (%d tokens)", ev.Timestamp.Format("15:04:05"), ev.Batch, ev.Evaluated)))
	case app.EventScanCompleted:
		r.println(headerStyle.Render(fmt.Sprintf("scan %s completed: %d tokens", ev.ScanID, ev.Evaluated)))
	case app.EventError:
		r.println(fmt.Sprintf("%s %s %s: %v", ts, negativeStyle.Render("error"), ev.Token, ev.Err))
	}
}

func (r *ConsoleReporter) result(ts string, res domain.Result) {
	if r.OnlyProfitable && !res.Profitable() {
		return
	}
	if res.Failed() {
		r.println(fmt.Sprintf("%s   %-10s %-10s %s", ts, res.Direction.Key(), res.DEXVenue, warningStyle.Render(res.Error)))
		return
	}
	r.println(fmt.Sprintf("%s   %-10s %-10s modal %.2f -> %.4f  costs %.4f (fee %.4f+%.4f wd %.4f gas %.4f)  %s",
		ts, res.Direction.Key(), res.DEXVenue,
		res.Modal, res.Result,
		res.Costs.Total, res.Costs.TradingFeeBuy, res.Costs.TradingFeeSell, res.Costs.Withdrawal, res.Costs.Gas,
		pnl(res)))
}

// Stop prints the footer.
func (r *ConsoleReporter) Stop() error {
	r.println(headerStyle.Render("Quote Engine Stopped " + time.Now().Format(time.RFC3339)))
	return nil
}

func (r *ConsoleReporter) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

func price(p float64) string {
	if p <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.6g", p)
}

func pnl(res domain.Result) string {
	s := fmt.Sprintf("%+.4f (%+.2f%%)", res.PnL, res.PnLPercent)
	if res.PnL > 0 {
		return positiveStyle.Render(s)
	}
	return negativeStyle.Render(s)
}
