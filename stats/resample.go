// Package stats holds the resampling helpers behind the gender/mood and
// pronunciation heuristics.
package stats

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrInvalidProbability = errors.New("probability outside [0,1]")

// NewRand returns a seeded generator usable as a distuv source. A zero seed
// picks one from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// WaldSample draws n inverse Gaussian variates with the given mean and shape
// (scale), using the Michael/Schucany/Haas transformation. distuv has no
// inverse Gaussian.
func WaldSample(rng *rand.Rand, mean, scale float64, n int) []float64 {
	out := make([]float64, n)
	mu2l := mean / (2 * scale)
	for i := range out {
		y := rng.NormFloat64()
		y = mean * y * y
		x := mean + mu2l*(y-math.Sqrt(4*scale*y+y*y))
		if rng.Float64() <= mean/(mean+x) {
			out[i] = x
		} else {
			out[i] = mean * mean / x
		}
	}
	return out
}

func NormalSample(rng *rand.Rand, mu, sigma float64, n int) []float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// BinomialMeanPercent draws size Binomial(n, p) variates and returns their
// mean expressed as a percentage of n.
func BinomialMeanPercent(rng *rand.Rand, n int, p float64, size int) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("binomial p=%v: %w", p, ErrInvalidProbability)
	}
	if n <= 0 || size <= 0 {
		return 0, fmt.Errorf("binomial n=%d size=%d: need positive values", n, size)
	}
	dist := distuv.Binomial{N: float64(n), P: p, Src: rng}
	draws := make([]float64, size)
	for i := range draws {
		draws[i] = dist.Rand()
	}
	return stat.Mean(draws, nil) * 100 / float64(n), nil
}
