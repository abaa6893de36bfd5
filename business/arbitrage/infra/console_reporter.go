// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
)

// ConsoleReporter renders published opportunities to a terminal. It
// implements the engine's Sink interface.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a reporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Name identifies the reporter to the publisher's circuit breaker.
func (r *ConsoleReporter) Name() string {
	return "console"
}

// Start prints the startup banner.
func (r *ConsoleReporter) Start() {
	fmt.Fprintln(r.out, "Arbitrage Scanner Started")
	fmt.Fprintln(r.out, "=========================")
}

// Publish outputs one opportunity to the console.
func (r *ConsoleReporter) Publish(opp domain.Opportunity) {
	profitPct := decimal.NewFromFloat(opp.ProfitPct).Mul(decimal.NewFromInt(100))
	volume := decimal.NewFromFloat(opp.MaxVolume)

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Detected:       %s\n", opp.DetectedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(r.out, "Path:           %s\n", opp.Path)
	fmt.Fprintf(r.out, "Hops:           %d\n", len(opp.Cycle))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(r.out, "  Profit:       %s%%\n", profitPct.StringFixed(4))
	fmt.Fprintf(r.out, "  Max Volume:   %s\n", volume.StringFixed(4))
	fmt.Fprintf(r.out, "  Confidence:   %d/100\n", opp.Confidence)
	fmt.Fprintln(r.out, "================================================================================")
}

// Stop prints the shutdown line.
func (r *ConsoleReporter) Stop() {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage Scanner Stopped")
}
