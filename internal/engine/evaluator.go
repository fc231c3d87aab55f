// Package engine evaluates chromosomes: it decodes rule parameters, builds the
// active rules on a price series and prices their reconciled signals.
package engine

import (
	"errors"
	"fmt"

	"github.com/your-org/rule-search/internal/chromosome"
	"github.com/your-org/rule-search/internal/pnl"
	"github.com/your-org/rule-search/internal/position"
	"github.com/your-org/rule-search/internal/rule"
	"github.com/your-org/rule-search/internal/series"
	"github.com/your-org/rule-search/internal/signal"
)

var (
	// ErrNoRules is returned when an evaluator has nothing to evaluate.
	ErrNoRules = errors.New("no trading rules configured")
	// ErrPriceMismatch is returned when rules were built on different prices.
	ErrPriceMismatch = errors.New("trading rules do not share the same closing prices")
	// ErrInvalidOption is returned for options that do not fit the rule set.
	ErrInvalidOption = errors.New("invalid evaluator option")
)

// Fitness scores chromosomes of a fixed length against a price series.
type Fitness interface {
	ChromosomeLength() int
	Fitness(ch chromosome.Chromosome, prices *series.PriceSeries) (float64, error)
}

// RuleState is the decoded view of one rule inside a chromosome.
type RuleState struct {
	Name   string
	Params []int
	Active bool
}

// Evaluator turns chromosomes into net profit. It holds no per-evaluation
// state and is safe for concurrent use.
type Evaluator struct {
	defs         []rule.Definition
	specs        []chromosome.RuleSpec
	alwaysActive []bool
	calc         *pnl.Calculator
}

// Option configures an Evaluator.
type Option func(*evaluatorOptions)

type evaluatorOptions struct {
	costs        pnl.Costs
	side         position.Side
	alwaysActive []bool
}

// WithCosts overrides the default cost model.
func WithCosts(c pnl.Costs) Option {
	return func(o *evaluatorOptions) { o.costs = c }
}

// WithDirection selects long or short trading.
func WithDirection(side position.Side) Option {
	return func(o *evaluatorOptions) { o.side = side }
}

// WithAlwaysActive overrides which rules ignore their control bit. flags is
// indexed like the definitions.
func WithAlwaysActive(flags []bool) Option {
	return func(o *evaluatorOptions) { o.alwaysActive = flags }
}

// NewEvaluator creates an evaluator for the given rule definitions.
func NewEvaluator(defs []rule.Definition, opts ...Option) (*Evaluator, error) {
	if len(defs) == 0 {
		return nil, ErrNoRules
	}
	o := evaluatorOptions{costs: pnl.DefaultCosts(), side: position.Long}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.costs.Validate(); err != nil {
		return nil, err
	}

	always := make([]bool, len(defs))
	switch {
	case o.alwaysActive == nil:
		for i, d := range defs {
			always[i] = d.AlwaysActive
		}
	case len(o.alwaysActive) != len(defs):
		return nil, fmt.Errorf("%w: %d always-active flags for %d rules", ErrInvalidOption, len(o.alwaysActive), len(defs))
	default:
		copy(always, o.alwaysActive)
	}

	specs := make([]chromosome.RuleSpec, len(defs))
	for i, d := range defs {
		if d.New == nil {
			return nil, fmt.Errorf("%w: rule %q has no constructor", ErrInvalidOption, d.Name)
		}
		specs[i] = chromosome.RuleSpec{BitWidths: append([]int(nil), d.BitWidths...)}
	}
	// Reject bad widths up front instead of on the first evaluation.
	if _, err := chromosome.Decode(make(chromosome.Chromosome, chromosome.Length(specs)), specs); err != nil {
		return nil, err
	}

	return &Evaluator{
		defs:         append([]rule.Definition(nil), defs...),
		specs:        specs,
		alwaysActive: always,
		calc:         pnl.NewCalculator(o.costs, o.side),
	}, nil
}

// Specs returns the chromosome layout of the evaluator's rules.
func (e *Evaluator) Specs() []chromosome.RuleSpec {
	out := make([]chromosome.RuleSpec, len(e.specs))
	copy(out, e.specs)
	return out
}

// ChromosomeLength returns the number of bits a chromosome must carry.
func (e *Evaluator) ChromosomeLength() int { return chromosome.Length(e.specs) }

// Rules returns the number of rule definitions.
func (e *Evaluator) Rules() int { return len(e.defs) }

// Describe decodes ch into one RuleState per rule. Active reports whether the
// rule takes part in evaluation.
func (e *Evaluator) Describe(ch chromosome.Chromosome) ([]RuleState, error) {
	genes, err := chromosome.Decode(ch, e.specs)
	if err != nil {
		return nil, err
	}
	out := make([]RuleState, len(genes))
	for i, g := range genes {
		out[i] = RuleState{
			Name:   e.defs[i].Name,
			Params: g.Params,
			Active: g.Active || e.alwaysActive[i],
		}
	}
	return out, nil
}

// Evaluate builds the active rules of ch on prices and prices their signals.
// A chromosome without active rules yields a zero Result.
func (e *Evaluator) Evaluate(ch chromosome.Chromosome, prices *series.PriceSeries) (pnl.Result, error) {
	states, err := e.Describe(ch)
	if err != nil {
		return pnl.Result{}, err
	}

	rules := make([]rule.TradingRule, 0, len(states))
	for i, st := range states {
		if !st.Active {
			continue
		}
		rules = append(rules, e.defs[i].Build(prices, st.Params))
	}
	if len(rules) == 0 {
		return pnl.Result{}, nil
	}
	return e.EvaluateRules(rules)
}

// Fitness returns the net profit of ch on prices.
func (e *Evaluator) Fitness(ch chromosome.Chromosome, prices *series.PriceSeries) (float64, error) {
	res, err := e.Evaluate(ch, prices)
	if err != nil {
		return 0, err
	}
	return res.NetProfit, nil
}

// EvaluateRules aggregates, reconciles and prices already built rules. All
// rules must have been built on identical prices.
func (e *Evaluator) EvaluateRules(rules []rule.TradingRule) (pnl.Result, error) {
	if len(rules) == 0 {
		return pnl.Result{}, ErrNoRules
	}
	prices := rules[0].Prices()
	buys := make([]series.Signals, len(rules))
	sells := make([]series.Signals, len(rules))
	for i, r := range rules {
		if !r.Prices().Equal(prices) {
			return pnl.Result{}, fmt.Errorf("%w: %s differs from %s", ErrPriceMismatch, r.Name(), rules[0].Name())
		}
		buys[i] = r.BuySignals()
		sells[i] = r.SellSignals()
	}

	buy, sell, err := signal.Aggregate(buys, sells)
	if err != nil {
		return pnl.Result{}, err
	}
	return e.calc.NetProfit(buy, sell, prices)
}
