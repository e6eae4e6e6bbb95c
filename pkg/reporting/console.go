package reporting

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

// ConsoleReporter renders sizing and exit decisions for terminal sessions
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintLimits prints the derived risk limits
func (r *ConsoleReporter) PrintLimits(profile config.Profile, limits config.RiskLimits) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("RISK LIMITS")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🧭 Variant", string(profile.Variant)},
		{"💼 Account Size", fmt.Sprintf("$%.2f", limits.AccountSize)},
		{"📉 Min Position", fmt.Sprintf("$%.2f", limits.MinPositionSize)},
		{"📈 Max Position", fmt.Sprintf("$%.2f", limits.MaxPositionSize)},
		{"🛑 Max Daily Loss", fmt.Sprintf("$%.2f", limits.MaxDailyLoss)},
		{"🚨 Emergency Halt", fmt.Sprintf("$%.2f", limits.EmergencyHaltLoss)},
		{"🎯 Per-Instrument Cap", fmt.Sprintf("%.0f%%", limits.MaxPerInstrumentPct*100)},
		{"🎯 Portfolio Cap", fmt.Sprintf("%.0f%%", limits.MaxPortfolioExposurePct*100)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 15, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintSizingResult prints one sizing decision with its adjustment breakdown
func (r *ConsoleReporter) PrintSizingResult(signal types.SignalContext, result types.SizingResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("SIZING — %s", signal.Symbol))
	t.SetStyle(table.StyleRounded)

	if result.NoTrade {
		t.AppendRows([]table.Row{
			{"🚫 Decision", "NO TRADE"},
			{"📝 Reason", result.Reason},
		})
	} else {
		t.AppendRows([]table.Row{
			{"✅ Decision", "TRADE"},
			{"📦 Contracts", fmt.Sprintf("%d", result.Contracts)},
			{"💵 Position Value", fmt.Sprintf("$%.2f", result.PositionValue)},
		})
	}

	b := result.Breakdown
	t.AppendRows([]table.Row{
		{"🎚 Confidence Factor", fmt.Sprintf("%.2f", b.ConfidenceFactor)},
		{"🌪 Volatility Factor", fmt.Sprintf("%.2f", b.VolatilityFactor)},
		{"🔗 Correlation Factor", fmt.Sprintf("%.2f", b.CorrelationFactor)},
		{"🏛 Fundamental Factor", fmt.Sprintf("%.2f", b.FundamentalFactor)},
		{"🧮 Combined (clamped)", fmt.Sprintf("%.2f (%.2f)", b.CombinedFactor, b.ClampedFactor)},
	})

	if len(result.Substitutions) > 0 {
		t.AppendRow(table.Row{"⚠️ Substitutions", strings.Join(result.Substitutions, "; ")})
	}

	t.Render()
	fmt.Println()
}

// PrintExitSession prints the tick-by-tick actions of an exit replay
func (r *ConsoleReporter) PrintExitSession(pos *types.Position, prices []float64, actions []types.ExitAction) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("EXIT SESSION — %s (entry $%.2f)", pos.Symbol, pos.EntryPrice))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Tick", "Price", "Profit", "Action", "Contracts", "Detail"})

	for i, action := range actions {
		detail := action.Reason
		if detail == "" {
			detail = "-"
		}
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("$%.2f", prices[i]),
			fmt.Sprintf("%.1f%%", action.ProfitPct*100),
			string(action.Type),
			action.Contracts,
			detail,
		})
	}

	t.Render()
	fmt.Printf("Final state: %s, closed fraction %.2f\n\n", pos.State, pos.ClosedFraction)
}
