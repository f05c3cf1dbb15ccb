package render

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/radarlab/radarview/internal/monitoring"
)

// Sigmoid rescales radar magnitudes with a history-adapted tanh curve.
//
// Values are first taken to log10, then pushed through tanh((a*v^2+b*v+c))
// where the quadratic is refit each frame so the sigmoid output passes
// through three anchor points: lowerOut at the clutter floor, 0.5 at a high
// percentile of the scene, and upperOut a fixed log-distance above it. The
// floor and midpoint track moving averages over recent frames so brightness
// does not pump frame to frame. The net effect is that ground clutter is
// crushed while the interesting part of the dynamic range fills the output.
type Sigmoid struct {
	midPercentile float64 // percentile of the log image pinned to output 0.5
	sigmaBuffer   float64 // stddev multiple added to the median for the floor
	minMidBuffer  float64 // minimum log gap between floor and midpoint
	upperBuffer   float64 // log gap between midpoint and the upper anchor
	lowerOut      float64 // sigmoid output at the floor
	upperOut      float64 // sigmoid output at the upper anchor
	preLogMin     float64 // clip applied before log10
	logMin        float64

	lower *movingAverage
	mid   *movingAverage

	// quadratic coefficients, highest order first
	coeffs [3]float64

	min, max float64
}

// NewSigmoid returns a Sigmoid with the tuning used by the recording tools.
func NewSigmoid() *Sigmoid {
	const historySize = 20
	return &Sigmoid{
		midPercentile: 0.99,
		sigmaBuffer:   0.5,
		minMidBuffer:  1.0,
		upperBuffer:   1.5,
		lowerOut:      0.05,
		upperOut:      0.95,
		preLogMin:     1e-9,
		logMin:        math.Log10(1e-9),
		lower:         newMovingAverage(historySize),
		mid:           newMovingAverage(historySize),
	}
}

// Apply compresses vals into [0, 1] in place and returns the slice. If no
// statistics have accumulated yet (every sample below the log floor on every
// frame so far) the input is returned unmodified.
func (s *Sigmoid) Apply(vals []float64) []float64 {
	logVals := make([]float64, len(vals))
	for i, v := range vals {
		if v < s.preLogMin {
			v = s.preLogMin
		}
		logVals[i] = math.Log10(v)
	}

	s.updateStatistics(logVals)
	if !s.lower.valid() || !s.mid.valid() {
		return vals
	}

	s.fitSigmoid()
	for i, v := range logVals {
		vals[i] = s.adjusted(v)
	}
	return vals
}

func (s *Sigmoid) updateStatistics(logVals []float64) {
	masked := make([]float64, 0, len(logVals))
	for _, v := range logVals {
		if v > s.logMin {
			masked = append(masked, v)
		}
	}

	if len(masked) == 0 {
		monitoring.Logf("sigmoid: all data below threshold")
		s.min = s.logMin
		s.max = s.logMin
		return
	}

	sort.Float64s(masked)
	median := stat.Quantile(0.5, stat.Empirical, masked, nil)
	std := stat.PopStdDev(masked, nil)
	newMid := stat.Quantile(s.midPercentile, stat.Empirical, masked, nil)
	s.min = masked[0]
	s.max = masked[len(masked)-1]

	s.lower.add(median + s.sigmaBuffer*std)
	s.mid.add(newMid)
}

// fitSigmoid solves for the quadratic through the three anchor points.
func (s *Sigmoid) fitSigmoid() {
	mid := math.Max(s.mid.value(), s.lower.value()+s.minMidBuffer)
	x := []float64{s.lower.value(), mid, mid + s.upperBuffer}
	y := []float64{invTanhSigmoid(s.lowerOut), invTanhSigmoid(0.5), invTanhSigmoid(s.upperOut)}

	// Vandermonde solve for [a b c] in a*x^2 + b*x + c = y.
	a := mat.NewDense(3, 3, []float64{
		x[0] * x[0], x[0], 1,
		x[1] * x[1], x[1], 1,
		x[2] * x[2], x[2], 1,
	})
	var c mat.VecDense
	if err := c.SolveVec(a, mat.NewVecDense(3, y)); err != nil {
		monitoring.Logf("sigmoid: degenerate anchor points, keeping previous fit: %v", err)
		return
	}
	s.coeffs = [3]float64{c.AtVec(0), c.AtVec(1), c.AtVec(2)}
	s.checkMonotonic()
}

func (s *Sigmoid) checkMonotonic() {
	slopeAt := func(v float64) float64 { return 2*s.coeffs[0]*v + s.coeffs[1] }
	if slopeAt(s.min) <= 0 || slopeAt(s.max) <= 0 {
		monitoring.Logf("sigmoid: fit is not monotonically increasing")
	}
}

func (s *Sigmoid) adjusted(v float64) float64 {
	y := s.coeffs[0]*v*v + s.coeffs[1]*v + s.coeffs[2]
	return tanhSigmoid(y)
}

func tanhSigmoid(v float64) float64 { return (math.Tanh(v) + 1) / 2 }

func invTanhSigmoid(v float64) float64 { return math.Atanh(2*v - 1) }

// movingAverage keeps a windowed running mean.
type movingAverage struct {
	length  int
	history []float64
	cumsum  float64
}

func newMovingAverage(length int) *movingAverage {
	return &movingAverage{length: length}
}

func (m *movingAverage) add(v float64) {
	if len(m.history) >= m.length {
		m.cumsum -= m.history[0]
		m.history = m.history[1:]
	}
	m.history = append(m.history, v)
	m.cumsum += v
}

func (m *movingAverage) value() float64 { return m.cumsum / float64(len(m.history)) }

func (m *movingAverage) valid() bool { return len(m.history) > 0 }
