// Package zakat implements a simplified zakat calculator.
package zakat

import (
	"errors"
	"fmt"
)

const (
	// DefaultNisabThreshold is an approximate nisab in USD, based on silver.
	DefaultNisabThreshold = 4455.0

	// DefaultRate is the zakat rate applied to wealth above the nisab.
	DefaultRate = 0.025
)

// ErrNegativeAmount is returned when an asset or debt value is negative.
var ErrNegativeAmount = errors.New("amounts must not be negative")

// Assets holds the declared wealth and outstanding debts.
type Assets struct {
	Cash        float64 `json:"cash"`
	Gold        float64 `json:"gold"`
	Silver      float64 `json:"silver"`
	Investments float64 `json:"investments"`
	Business    float64 `json:"business"`
	Debts       float64 `json:"debts"`
}

// Total returns the sum of all assets, excluding debts.
func (a Assets) Total() float64 {
	return a.Cash + a.Gold + a.Silver + a.Investments + a.Business
}

func (a Assets) validate() error {
	fields := map[string]float64{
		"cash":        a.Cash,
		"gold":        a.Gold,
		"silver":      a.Silver,
		"investments": a.Investments,
		"business":    a.Business,
		"debts":       a.Debts,
	}
	for name, v := range fields {
		if v < 0 {
			return fmt.Errorf("%w: %s = %.2f", ErrNegativeAmount, name, v)
		}
	}
	return nil
}

// Options configures the calculation.
type Options struct {
	NisabThreshold float64
	Rate           float64
}

// DefaultOptions returns the standard threshold and rate.
func DefaultOptions() Options {
	return Options{
		NisabThreshold: DefaultNisabThreshold,
		Rate:           DefaultRate,
	}
}

// Result is the outcome of a zakat calculation.
type Result struct {
	TotalAssets float64 `json:"total_assets"`
	Zakatable   float64 `json:"zakatable"`
	Due         float64 `json:"due"`
	BelowNisab  bool    `json:"below_nisab"`
	Nisab       float64 `json:"nisab"`
}

// Calculate computes zakat due on the declared assets. Wealth below the nisab
// threshold owes nothing; otherwise the rate applies to the whole amount.
func Calculate(a Assets, opts Options) (Result, error) {
	if err := a.validate(); err != nil {
		return Result{}, err
	}
	if opts.NisabThreshold < 0 || opts.Rate < 0 {
		return Result{}, fmt.Errorf("%w: threshold and rate", ErrNegativeAmount)
	}

	total := a.Total()
	zakatable := total - a.Debts

	res := Result{
		TotalAssets: total,
		Zakatable:   zakatable,
		Nisab:       opts.NisabThreshold,
	}
	if zakatable < opts.NisabThreshold {
		res.BelowNisab = true
		return res, nil
	}

	res.Due = zakatable * opts.Rate
	return res, nil
}
