package stats

import (
	"math"
	"golang.org/x/exp/rand"
)

type Gender string
type Mood string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"

	MoodNoEmotion  Mood = "no_emotion"
	MoodReading    Mood = "reading"
	MoodPassionate Mood = "passionate"
)

// Archetype is the reference pitch distribution a speaker is compared with.
// It applies to pitch means up to and including Upper.
type Archetype struct {
	Upper  float64
	Mean   float64
	Spread float64
}

var archetypes = []Archetype{
	{Upper: 114, Mean: 101, Spread: 3.4},
	{Upper: 135, Mean: 128, Spread: 4.35},
	{Upper: 163, Mean: 142, Spread: 4.85},
	{Upper: 197, Mean: 182, Spread: 2.7},
	{Upper: 226, Mean: 213, Spread: 4.5},
	{Upper: math.Inf(1), Mean: 239, Spread: 5.3},
}

// labels covers (Lo, Hi]; pitch means outside every range get no label.
var labels = []struct {
	Lo, Hi float64
	Gender Gender
	Mood   Mood
}{
	{97, 114, GenderMale, MoodNoEmotion},
	{114, 135, GenderMale, MoodReading},
	{135, 163, GenderMale, MoodPassionate},
	{163, 197, GenderFemale, MoodNoEmotion},
	{197, 226, GenderFemale, MoodReading},
	{226, 245, GenderFemale, MoodPassionate},
}

const (
	minRounds          = 5
	pAccept            = 0.05
	dAccept            = 0.04
	pConfident         = 0.09
	fallbackConfidence = 0.35
	defaultMaxRounds   = 100
	defaultSampleSize  = 1000
)

// ArchetypeFor returns the reference distribution for a pitch mean.
func ArchetypeFor(f0Mean float64) (Archetype, bool) {
	if math.IsNaN(f0Mean) {
		return Archetype{}, false
	}
	for _, a := range archetypes {
		if f0Mean <= a.Upper {
			return a, true
		}
	}
	return Archetype{}, false
}

// Label returns the gender and mood bucket of a pitch mean.
func Label(f0Mean float64) (Gender, Mood, bool) {
	for _, l := range labels {
		if f0Mean > l.Lo && f0Mean <= l.Hi {
			return l.Gender, l.Mood, true
		}
	}
	return "", "", false
}

// Round is the outcome of one resampling comparison.
type Round struct {
	KS  float64 `json:"ks_statistic"`
	KSP float64 `json:"ks_pvalue"`
	T   float64 `json:"t_statistic"`
	TP  float64 `json:"t_pvalue"`
}

// Verdict is the classifier output. OK is false when the pitch mean falls
// outside every labelled bucket.
type Verdict struct {
	Gender     Gender  `json:"gender,omitempty"`
	Mood       Mood    `json:"mood,omitempty"`
	Confidence float64 `json:"confidence"`
	Rounds     int     `json:"rounds,omitempty"`
	OK         bool    `json:"ok"`
}

type Classifier struct {
	rng        *rand.Rand
	SampleSize int
	MaxRounds  int
}

func NewClassifier(rng *rand.Rand) *Classifier {
	return &Classifier{rng: rng, SampleSize: defaultSampleSize, MaxRounds: defaultMaxRounds}
}

func (c *Classifier) round(a Archetype, f0Mean, f0Std float64) Round {
	n := c.SampleSize
	w1 := WaldSample(c.rng, a.Mean, 1, n)
	w2 := WaldSample(c.rng, a.Spread, 1, n)
	d, dp := KS2Samp(w1, w2)

	n1 := NormalSample(c.rng, a.Mean, f0Mean, n)
	n2 := NormalSample(c.rng, a.Spread, f0Std, n)
	t, tp := TTestInd(n1, n2)
	return Round{KS: d, KSP: dp, T: math.Abs(t), TP: tp}
}

// Classify labels a speaker from the pitch mean and attaches a confidence
// taken from repeated archetype comparisons.
func (c *Classifier) Classify(f0Mean, f0Std float64) Verdict {
	a, ok := ArchetypeFor(f0Mean)
	if !ok {
		return Verdict{}
	}
	g, m, ok := Label(f0Mean)
	if !ok {
		return Verdict{}
	}

	r, n := c.settle(func() Round { return c.round(a, f0Mean, f0Std) })
	return Verdict{Gender: g, Mood: m, Confidence: confidence(r), Rounds: n, OK: true}
}

// settle runs one round, then repeats while neither test separates the
// samples or fewer than minRounds repeats have run, up to MaxRounds. It
// returns the last round and the number of repeats.
func (c *Classifier) settle(next func() Round) (Round, int) {
	maxRounds := c.MaxRounds
	if maxRounds < minRounds {
		maxRounds = minRounds
	}

	r := next()
	n := 0
	for (r.TP > pAccept && r.KS > dAccept) || n < minRounds {
		if n >= maxRounds {
			break
		}
		r = next()
		n++
	}
	return r, n
}

func confidence(r Round) float64 {
	if r.TP <= pConfident {
		return r.TP
	}
	return fallbackConfidence
}
