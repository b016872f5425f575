// Package trend fits the yearly incident counts with ordinary least squares
// and reports the usual summary: slope, intercept, standard errors, t
// statistics, two-sided p-values on n-2 degrees of freedom, and R².
package trend

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrLengthMismatch means x and y differ in length.
	ErrLengthMismatch = errors.New("trend: x and y lengths differ")
	// ErrTooFewPoints means fewer than three observations were given; the
	// residual variance needs at least one degree of freedom.
	ErrTooFewPoints = errors.New("trend: need at least three observations")
	// ErrConstantX means all x values are equal, so no slope is estimable.
	ErrConstantX = errors.New("trend: explanatory values are constant")
)

// Fit is an ordinary least squares fit of y on x.
type Fit struct {
	N int

	Slope     float64
	Intercept float64

	SlopeStderr     float64
	InterceptStderr float64

	SlopeT     float64
	InterceptT float64

	SlopeP     float64
	InterceptP float64

	R2         float64
	ResidualSE float64
}

// FitLinear estimates y = intercept + slope*x by least squares.
func FitLinear(x, y []float64) (*Fit, error) {
	if len(x) != len(y) {
		return nil, ErrLengthMismatch
	}
	n := len(x)
	if n < 3 {
		return nil, ErrTooFewPoints
	}

	xMean := stat.Mean(x, nil)
	yMean := stat.Mean(y, nil)

	sxx := 0.0
	for _, xi := range x {
		d := xi - xMean
		sxx += d * d
	}
	if sxx == 0 {
		return nil, ErrConstantX
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	rss := 0.0
	tss := 0.0
	for i := range x {
		r := y[i] - (intercept + slope*x[i])
		rss += r * r
		d := y[i] - yMean
		tss += d * d
	}

	df := float64(n - 2)
	sigma2 := rss / df

	fit := &Fit{
		N:               n,
		Slope:           slope,
		Intercept:       intercept,
		SlopeStderr:     math.Sqrt(sigma2 / sxx),
		InterceptStderr: math.Sqrt(sigma2 * (1/float64(n) + xMean*xMean/sxx)),
		ResidualSE:      math.Sqrt(sigma2),
	}

	if tss > 0 {
		fit.R2 = 1 - rss/tss
	}

	fit.SlopeT, fit.SlopeP = tAndP(slope, fit.SlopeStderr, df)
	fit.InterceptT, fit.InterceptP = tAndP(intercept, fit.InterceptStderr, df)

	return fit, nil
}

// Predict returns the fitted value at x.
func (f *Fit) Predict(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// Significant reports whether the slope is significant at the given level.
func (f *Fit) Significant(alpha float64) bool {
	return f.SlopeP < alpha
}

// Direction names the sign of the slope for prose: "upward", "downward"
// or "flat".
func (f *Fit) Direction() string {
	switch {
	case f.Slope > 0:
		return "upward"
	case f.Slope < 0:
		return "downward"
	default:
		return "flat"
	}
}

// tAndP computes the t statistic and two-sided p-value for a coefficient.
// A zero standard error happens on noise-free synthetic input; the
// coefficient is then either exactly zero or exactly determined.
func tAndP(coef, se, df float64) (float64, float64) {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	switch {
	case se > 0:
		t := coef / se
		return t, 2 * dist.CDF(-math.Abs(t))
	case coef == 0:
		return 0, 1
	case coef < 0:
		return math.Inf(-1), 0
	default:
		return math.Inf(1), 0
	}
}
