// Package main is the entry point of the trading rule search.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/rule-search/internal/chromosome"
	"github.com/your-org/rule-search/internal/config"
	"github.com/your-org/rule-search/internal/csvwriter"
	"github.com/your-org/rule-search/internal/datastore"
	"github.com/your-org/rule-search/internal/engine"
	"github.com/your-org/rule-search/internal/http/handler"
	"github.com/your-org/rule-search/internal/metrics"
	"github.com/your-org/rule-search/internal/montecarlo"
	"github.com/your-org/rule-search/internal/optimizer"
	"github.com/your-org/rule-search/internal/pnl"
	"github.com/your-org/rule-search/internal/position"
	"github.com/your-org/rule-search/internal/report"
	"github.com/your-org/rule-search/internal/rule"
	"github.com/your-org/rule-search/internal/source"
	"github.com/your-org/rule-search/pkg/logger"
)

func main() {
	// --- Configuration ---
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	ticker := flag.String("ticker", "", "Override the configured ticker")
	flag.Parse()

	overrides := []config.Override{config.WithTicker(*ticker)}
	if _, err := config.ReloadConfig(*configPath, overrides...); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()

	// --- Logger ---
	level := zap.NewAtomicLevelAt(logger.ParseLevel(cfg.LogLevel))
	l := logger.NewLeveledLogger(level)
	logger.SetGlobal(l)
	defer logger.Sync()
	logger.Infof("Loaded configuration from: %s", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Config Reload (SIGHUP) ---
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go watchReload(ctx, hup, *configPath, overrides, level)

	if err := run(ctx, cfg, l.Zap()); err != nil {
		logger.Fatalf("Rule search failed: %v", err)
	}
}

// watchReload reloads the configuration file on every signal from hup and
// applies the new log level. Other settings are fixed for the running search.
func watchReload(ctx context.Context, hup <-chan os.Signal, path string, overrides []config.Override, level zap.AtomicLevel) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			prev := config.GetConfig()
			cfg, err := config.ReloadConfig(path, overrides...)
			if err != nil {
				logger.Errorf("Failed to reload configuration from %s: %v", path, err)
				continue
			}
			level.SetLevel(logger.ParseLevel(cfg.LogLevel))
			logger.Infof("Reloaded configuration from %s (log level %s -> %s)", path, prev.LogLevel, cfg.LogLevel)
		}
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	log := zl.With(zap.String("ticker", cfg.Ticker))

	// --- Prices ---
	provider, closeProvider, err := source.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	from, to, err := cfg.Data.Range()
	if err != nil {
		return err
	}
	data, err := provider.FetchPrices(ctx, cfg.Ticker, datastore.DateRange{From: from, To: to})
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	first, _ := data.Close.First()
	last, _ := data.Close.Last()
	log.Info("Prices loaded",
		zap.String("source", cfg.Data.Source),
		zap.Int("days", data.Close.Len()),
		zap.Time("from", first),
		zap.Time("to", last))

	// --- Evaluator ---
	defs, always, err := resolveRules(cfg.Rules)
	if err != nil {
		return err
	}
	side, err := position.ParseSide(cfg.Direction)
	if err != nil {
		return err
	}
	costs := pnl.Costs{TransactionRate: cfg.Costs.TransactionRate, HoldingFeeRate: cfg.Costs.HoldingFeeRate}
	eval, err := engine.NewEvaluator(defs,
		engine.WithCosts(costs),
		engine.WithDirection(side),
		engine.WithAlwaysActive(always))
	if err != nil {
		return err
	}

	// --- Metrics and Status Server (optional) ---
	status := handler.NewStatusHandler(cfg.Ticker)
	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr, handler.NewRouter(status, metrics.Handler()), log)
		defer srv.Close()
	}

	// --- Genetic Search ---
	opt, err := optimizer.New(eval, data.Close, searchConfig(cfg.Search), log,
		optimizer.WithObserver(metrics.Observer(cfg.Ticker)),
		optimizer.WithObserver(status.Observe))
	if err != nil {
		return err
	}
	searchStart := time.Now()
	res, err := opt.Run(ctx)
	if err != nil {
		return fmt.Errorf("genetic search: %w", err)
	}
	metrics.ObservePhase("search", searchStart)

	if cfg.Output.HallOfFameCSV != "" {
		if err := csvwriter.WriteHallOfFame(cfg.Output.HallOfFameCSV, res.RunID, res.HallOfFame, eval, log); err != nil {
			return err
		}
	}
	if cfg.Output.StatsCSV != "" {
		if err := csvwriter.WriteGenerationStats(cfg.Output.StatsCSV, res.RunID, res.Log, log); err != nil {
			return err
		}
	}

	// --- Cross Validation ---
	status.SetPhase("cross_validation")
	cvStart := time.Now()
	gbm, err := montecarlo.NewGBM(data.Close, cfg.CrossValidation.Seed)
	if err != nil {
		return err
	}
	candidates := make([]chromosome.Chromosome, len(res.HallOfFame))
	for i, e := range res.HallOfFame {
		candidates[i] = e.Chromosome
	}
	cv, err := montecarlo.NewCrossValidator(candidates, gbm, eval, log, montecarlo.WithWorkers(cfg.Search.Workers))
	if err != nil {
		return err
	}
	best, err := cv.Run(ctx, cfg.CrossValidation.Simulations, cfg.CrossValidation.TimeSteps)
	if err != nil {
		return fmt.Errorf("cross validation: %w", err)
	}
	metrics.ObservePhase("cross_validation", cvStart)
	for i, s := range cv.Scores() {
		metrics.CrossValidationScore.WithLabelValues(cfg.Ticker, fmt.Sprint(i+1)).Set(s.Mean)
	}
	if cfg.Output.ScoresCSV != "" {
		if err := csvwriter.WriteScores(cfg.Output.ScoresCSV, cv.Scores(), log); err != nil {
			return err
		}
	}

	// --- Report ---
	status.SetPhase("done")
	return summarize(log, eval, best, data, costs)
}

func summarize(log *zap.Logger, eval *engine.Evaluator, best chromosome.Chromosome, data *datastore.PriceData, costs pnl.Costs) error {
	states, err := eval.Describe(best)
	if err != nil {
		return err
	}
	result, err := eval.Evaluate(best, data.Close)
	if err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("chromosome", best.String()),
		zap.String("rules", csvwriter.FormatRules(states)),
		zap.Float64("net_profit", result.NetProfit),
		zap.Float64("buy_and_hold", pnl.BuyAndHold(data.Close, costs.TransactionRate, result.ForcedClose)),
	}
	if result.HasForcedClose() {
		fields = append(fields, zap.Time("forced_close", result.ForcedClose))
	}

	r, err := report.AnalyzeTrades(result.Trades, data.Close, costs)
	switch {
	case errors.Is(err, report.ErrNoTrades):
		log.Warn("Selected rule set does not trade on the history", fields...)
		return nil
	case err != nil:
		return err
	}
	fields = append(fields,
		zap.Int("trades", r.TotalTrades),
		zap.Float64("win_rate", r.WinRate),
		zap.String("total_pnl", r.TotalPnL.StringFixed(4)),
		zap.String("max_drawdown", r.MaxDrawdown.StringFixed(4)),
		zap.Float64("profit_factor", r.ProfitFactor),
		zap.Float64("sharpe", r.SharpeRatio),
		zap.Float64("sortino", r.SortinoRatio),
		zap.Float64("avg_holding_days", r.AverageHoldingDays))
	log.Info("Selected rule set", fields...)
	return nil
}

// resolveRules maps configured rules to definitions. No configured rules
// selects every registered rule with its own always-active policy.
func resolveRules(rules []config.RuleConfig) ([]rule.Definition, []bool, error) {
	if len(rules) == 0 {
		defs := rule.Defaults()
		always := make([]bool, len(defs))
		for i, d := range defs {
			always[i] = d.AlwaysActive
		}
		return defs, always, nil
	}

	seen := make(map[string]bool, len(rules))
	defs := make([]rule.Definition, 0, len(rules))
	always := make([]bool, 0, len(rules))
	for _, rc := range rules {
		if seen[rc.Name] {
			return nil, nil, fmt.Errorf("%w: rule %q listed twice", config.ErrInvalidConfig, rc.Name)
		}
		seen[rc.Name] = true
		d, err := rule.Lookup(rc.Name)
		if err != nil {
			return nil, nil, err
		}
		a := d.AlwaysActive
		if rc.AlwaysActive != nil {
			a = bool(*rc.AlwaysActive)
		}
		defs = append(defs, d)
		always = append(always, a)
	}
	return defs, always, nil
}

func searchConfig(s config.SearchConfig) optimizer.Config {
	return optimizer.Config{
		PopulationSize: s.PopulationSize,
		Generations:    s.Generations,
		TournamentSize: s.TournamentSize,
		HallOfFameSize: s.HallOfFameSize,
		Workers:        s.Workers,
		CrossoverProb:  s.CrossoverProb,
		MutationProb:   s.MutationProb,
		BitFlipProb:    s.BitFlipProb,
		Seed:           s.Seed,
		TargetFitness:  s.TargetFitness,
	}
}
