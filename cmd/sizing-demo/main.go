package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ducminhle1904/options-risk-engine/internal/engine"
	"github.com/ducminhle1904/options-risk-engine/internal/monitoring"
	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/reporting"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

func main() {
	var (
		configFile  = flag.String("config", "", "JSON engine configuration file")
		accountSize = flag.Float64("account", 60000, "account size in dollars")
		variant     = flag.String("variant", "zero_dte", "trading variant: zero_dte or weekly")
		metricsAddr = flag.String("metrics", "", "optional address for the Prometheus endpoint, e.g. :8080")
		reportPath  = flag.String("report", "", "optional path for a JSON session report")
	)
	flag.Parse()

	// .env is optional for local runs
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.NewEngineConfigManager().LoadConfig(*configFile, *accountSize)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *configFile == "" {
		cfg.Variant = config.Variant(*variant)
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", monitoring.NewMetricsHandler())
			http.Handle("/health", monitoring.NewHealthHandler(func(now time.Time) monitoring.HealthSnapshot {
				status := eng.Monitor().Status(now)
				return monitoring.HealthSnapshot{
					TradingDate:     status.TradingDate,
					DailyPnL:        status.DailyPnL,
					DailyHalted:     status.DailyHalted,
					EmergencyHalted: status.EmergencyHalted,
					TotalReserved:   eng.Tracker().TotalReserved(),
				}
			}))
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		fmt.Printf("Prometheus metrics on %s/metrics, health on %s/health\n\n", *metricsAddr, *metricsAddr)
	}

	reporter := reporting.NewConsoleReporter()
	reporter.PrintLimits(eng.Profile(), eng.Limits())

	runDemoSession(eng, reporter, *reportPath)
}

// runDemoSession sizes one signal and replays a price sequence through the
// exit engine so the full decision path is visible in one run.
func runDemoSession(eng *engine.Engine, reporter *reporting.ConsoleReporter, reportPath string) {
	now := time.Now()

	signal := types.SignalContext{
		InstrumentID:  "SPY-0DTE-C",
		Symbol:        "SPY",
		Confidence:    0.85,
		StrategyType:  "momentum",
		Side:          types.SideLong,
		OptionPremium: 2.00,
		GeneratedAt:   now,
	}
	market := types.MarketContext{VolatilityIndex: 18.5}
	correlation := types.CorrelationView{}
	snapshot := types.PortfolioSnapshot{
		Account:    types.Account{Size: eng.Limits().AccountSize, AvailableCapital: eng.Limits().AccountSize},
		TotalValue: eng.Limits().AccountSize,
	}

	result, err := eng.SizeAndReserve(signal, market, correlation, snapshot, now)
	if err != nil {
		log.Fatalf("sizing failed: %v", err)
	}
	reporter.PrintSizingResult(signal, result)

	if result.NoTrade {
		writeReport(reportPath, signal, result, nil, nil)
		return
	}

	pos := eng.OpenPosition(signal, result, now, now.Add(6*time.Hour), 0)

	prices := []float64{2.06, 2.10, 2.16, 2.20, 2.30, 2.40}
	actions := make([]types.ExitAction, 0, len(prices))
	for i, price := range prices {
		action, err := eng.EvaluateExit(pos, price, now.Add(time.Duration(i+1)*10*time.Minute))
		if err != nil {
			log.Fatalf("exit evaluation failed: %v", err)
		}
		actions = append(actions, action)

		if action.Type != types.ExitHold {
			closedValue := result.PositionValue * action.CloseFraction
			pnl := closedValue * action.ProfitPct
			eng.ApplyCloseFill(pos, types.Fill{
				InstrumentID: signal.InstrumentID,
				Amount:       closedValue,
				RealizedPnL:  pnl,
			}, now)
		}
	}

	reporter.PrintExitSession(pos, prices, actions)

	status := eng.Monitor().Status(now)
	fmt.Printf("Daily PnL: $%.2f | daily halted: %v | emergency halted: %v\n",
		status.DailyPnL, status.DailyHalted, status.EmergencyHalted)
	fmt.Printf("Portfolio reserved: $%.2f\n", eng.Tracker().TotalReserved())

	writeReport(reportPath, signal, result, prices, actions)
}

func writeReport(path string, signal types.SignalContext, result types.SizingResult, prices []float64, actions []types.ExitAction) {
	if path == "" {
		return
	}
	report := reporting.SessionReport{
		GeneratedAt: time.Now(),
		Signal:      signal,
		Sizing:      result,
		Prices:      prices,
		Actions:     actions,
	}
	if err := reporting.WriteSessionJSON(report, path); err != nil {
		log.Printf("failed to write session report: %v", err)
		return
	}
	fmt.Printf("Session report written to %s\n", path)
}
