package csvwriter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/rule-search/internal/chromosome"
	"github.com/your-org/rule-search/internal/engine"
	"github.com/your-org/rule-search/internal/montecarlo"
	"github.com/your-org/rule-search/internal/optimizer"
	"github.com/your-org/rule-search/internal/picker"
)

// Describer decodes a chromosome into named rules.
type Describer interface {
	Describe(ch chromosome.Chromosome) ([]engine.RuleState, error)
}

// WriteHallOfFame writes one row per hall of fame entry in rank order.
func WriteHallOfFame(path string, runID uuid.UUID, entries []optimizer.Entry, d Describer, logger *zap.Logger) error {
	return writeAll(path, logger, []string{"run_id", "rank", "fitness", "chromosome", "rules"}, func(w *Writer) error {
		for i, e := range entries {
			states, err := d.Describe(e.Chromosome)
			if err != nil {
				return fmt.Errorf("describe rank %d: %w", i+1, err)
			}
			record := []string{
				runID.String(),
				strconv.Itoa(i + 1),
				formatFloat(e.Fitness),
				e.Chromosome.String(),
				FormatRules(states),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteGenerationStats writes the per-generation fitness statistics.
func WriteGenerationStats(path string, runID uuid.UUID, log []optimizer.GenerationStats, logger *zap.Logger) error {
	return writeAll(path, logger, []string{"run_id", "gen", "evals", "min", "max", "mean", "std"}, func(w *Writer) error {
		for _, s := range log {
			record := []string{
				runID.String(),
				strconv.Itoa(s.Gen),
				strconv.Itoa(s.Evaluations),
				formatFloat(s.Min),
				formatFloat(s.Max),
				formatFloat(s.Mean),
				formatFloat(s.Std),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WritePicks writes a ticker ranking; the score column is named after metric.
func WritePicks(path, metric string, picks []picker.Pick, logger *zap.Logger) error {
	return writeAll(path, logger, []string{"rank", "ticker", metric}, func(w *Writer) error {
		for i, p := range picks {
			if err := w.Write([]string{strconv.Itoa(i + 1), p.Ticker, formatFloat(p.Score)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteScores writes the cross-validation score of every candidate.
func WriteScores(path string, scores []montecarlo.Score, logger *zap.Logger) error {
	return writeAll(path, logger, []string{"candidate", "chromosome", "mean", "min", "max"}, func(w *Writer) error {
		for i, s := range scores {
			record := []string{
				strconv.Itoa(i + 1),
				s.Chromosome.String(),
				formatFloat(s.Mean),
				formatFloat(s.Min),
				formatFloat(s.Max),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// FormatRules renders rule states as "sma(37)+ rsi(14,30,70)-" where the
// suffix marks the rule as active (+) or inactive (-).
func FormatRules(states []engine.RuleState) string {
	parts := make([]string, len(states))
	for i, s := range states {
		params := make([]string, len(s.Params))
		for j, p := range s.Params {
			params[j] = strconv.Itoa(p)
		}
		mark := "-"
		if s.Active {
			mark = "+"
		}
		parts[i] = s.Name + "(" + strings.Join(params, ",") + ")" + mark
	}
	return strings.Join(parts, " ")
}

func writeAll(path string, logger *zap.Logger, header []string, body func(*Writer) error) error {
	w, err := NewWriter(path, logger)
	if err != nil {
		return err
	}
	if err := w.Write(header); err != nil {
		w.Close()
		return err
	}
	if err := body(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	logger.Info("Wrote CSV", zap.String("path", path), zap.Int("rows", w.Rows()-1))
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
