package service

import (
	"math"

	"github.com/Manan1014/ssas-go/internal/domain"
)

// Trend projection over the ordered monthly revenue series.
//
// Fitting policy: least-squares polynomial of degree min(2, n-1) over
// x=1..n evaluated at x=n+1 when n >= 3; flat carry-forward of the
// last observed value for 1 or 2 points; 0 for an empty series.

// nextLabel labels the synthetic trailing projection point.
const nextLabel = "Next"

// projectNext computes the projected next value of the series.
func projectNext(series []float64) float64 {
	n := len(series)
	switch {
	case n == 0:
		return 0
	case n < 3:
		return series[n-1]
	}

	coeffs := polyFit(series, 2)
	x := float64(n + 1)
	projected := coeffs[0] + coeffs[1]*x + coeffs[2]*x*x
	return math.Round(projected)
}

// appendProjection returns the trend with the synthetic "Next" point
// appended. The input slice is not mutated.
func appendProjection(trend []domain.TrendPoint) ([]domain.TrendPoint, float64) {
	series := make([]float64, len(trend))
	for i, p := range trend {
		series[i] = p.Sales
	}
	projected := projectNext(series)

	out := make([]domain.TrendPoint, len(trend), len(trend)+1)
	copy(out, trend)
	out = append(out, domain.TrendPoint{Month: nextLabel, Sales: projected})
	return out, projected
}

// polyFit fits a least-squares polynomial of the given degree to the
// series, with x = 1..n. Returns coefficients lowest order first.
// Solves the normal equations with Gaussian elimination; the Vandermonde
// moment matrix for distinct x is well-conditioned at these tiny sizes.
func polyFit(series []float64, degree int) []float64 {
	n := len(series)
	if degree >= n {
		degree = n - 1
	}
	size := degree + 1

	// Moment sums: sum(x^k) for k up to 2*degree, sum(y*x^k) up to degree.
	xPow := make([]float64, 2*degree+1)
	b := make([]float64, size)
	for i, y := range series {
		x := float64(i + 1)
		p := 1.0
		for k := 0; k <= 2*degree; k++ {
			xPow[k] += p
			if k <= degree {
				b[k] += y * p
			}
			p *= x
		}
	}

	m := make([][]float64, size)
	for r := 0; r < size; r++ {
		m[r] = make([]float64, size+1)
		for c := 0; c < size; c++ {
			m[r][c] = xPow[r+c]
		}
		m[r][size] = b[r]
	}

	// Gaussian elimination with partial pivoting.
	for col := 0; col < size; col++ {
		pivot := col
		for r := col + 1; r < size; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		m[col], m[pivot] = m[pivot], m[col]

		if m[col][col] == 0 {
			continue
		}
		for r := col + 1; r < size; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= size; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	coeffs := make([]float64, size)
	for r := size - 1; r >= 0; r-- {
		sum := m[r][size]
		for c := r + 1; c < size; c++ {
			sum -= m[r][c] * coeffs[c]
		}
		if m[r][r] != 0 {
			coeffs[r] = sum / m[r][r]
		}
	}
	return coeffs
}
