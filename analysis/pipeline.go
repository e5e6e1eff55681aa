package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/maastricht-university/voice-analysis/audio"
	cfg "github.com/maastricht-university/voice-analysis/config"
	"github.com/maastricht-university/voice-analysis/stats"
)

var (
	ErrNotStarted      = errors.New("start() has not been called yet")
	ErrAudioNotClear   = errors.New("audio was not clear")
	ErrMalformedOutput = errors.New("malformed engine output")
)

const (
	pppTrials       = 10 // Bernoulli trials per pronunciation draw
	defaultPPPDraws = 10000
)

// Engine runs an analysis script and returns whatever it printed.
type Engine interface {
	Run(ctx context.Context, script string, args []string) (string, error)
}

type Option func(*Analyser)

func WithRand(r *rand.Rand) Option { return func(a *Analyser) { a.rng = r } }

func WithLogger(l *logrus.Entry) Option { return func(a *Analyser) { a.log = l } }

// Analyser holds one analysis session: a single engine run whose output is
// cached until the next Start.
type Analyser struct {
	cfg    *cfg.Root
	engine Engine
	log    *logrus.Entry
	rng    *rand.Rand

	mu      sync.Mutex
	started bool
	id      string
	path    string
	info    audio.Info
	result  Result
	pppProb float64
}

func New(c *cfg.Root, engine Engine, opts ...Option) *Analyser {
	a := &Analyser{cfg: c, engine: engine}
	for _, o := range opts {
		o(a)
	}
	if a.log == nil {
		a.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if a.rng == nil {
		a.rng = stats.NewRand(c.Classifier.Seed)
	}
	return a
}

// Start probes soundfile, runs the engine once and caches the parsed
// columns. Any failure along the way is reported as ErrAudioNotClear and
// leaves the previous session, if any, untouched.
func (a *Analyser) Start(ctx context.Context, soundfile string) (*Analyser, error) {
	log := a.log.WithField("audio", soundfile)

	info, err := audio.Probe(soundfile)
	if err != nil {
		log.WithError(err).Warn("audio probe failed")
		return a, fmt.Errorf("%w: %w", ErrAudioNotClear, err)
	}

	start := time.Now()
	out, err := a.engine.Run(ctx, a.cfg.Engine.Script, engineArgs(a.cfg.Engine, soundfile))
	if err != nil {
		log.WithError(err).Warn("engine run failed")
		return a, fmt.Errorf("%w: %w", ErrAudioNotClear, err)
	}

	toks, err := tokenize(out)
	if err != nil {
		log.WithError(err).Warn("engine output rejected")
		return a, fmt.Errorf("%w: %w", ErrAudioNotClear, err)
	}
	res, ppp, err := parseResult(toks)
	if err != nil {
		log.WithError(err).Warn("engine output rejected")
		return a, fmt.Errorf("%w: %w", ErrAudioNotClear, err)
	}

	id := uuid.NewString()
	a.mu.Lock()
	a.started = true
	a.id = id
	a.path = soundfile
	a.info = info
	a.result = res
	a.pppProb = ppp
	a.mu.Unlock()

	log.WithFields(logrus.Fields{
		"analysis_id": id,
		"took":        time.Since(start).Round(time.Millisecond),
	}).Info("analysis complete")
	return a, nil
}

func (a *Analyser) snapshot() (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return Result{}, ErrNotStarted
	}
	return a.result, nil
}

// Result returns all fourteen stats.
func (a *Analyser) Result() (Result, error) { return a.snapshot() }

func (a *Analyser) NumSyllables() (int, error) {
	r, err := a.snapshot()
	return r.NumSyllables, err
}

func (a *Analyser) NumPauses() (int, error) {
	r, err := a.snapshot()
	return r.NumPauses, err
}

// SpeechRate is syllables per second of original duration.
func (a *Analyser) SpeechRate() (int, error) {
	r, err := a.snapshot()
	return r.SpeechRate, err
}

// ArticulationRate is syllables per second of speaking duration.
func (a *Analyser) ArticulationRate() (int, error) {
	r, err := a.snapshot()
	return r.ArticulationRate, err
}

func (a *Analyser) SpeakingDurationNoPauses() (float64, error) {
	r, err := a.snapshot()
	return r.SpeakingDurationNoPauses, err
}

func (a *Analyser) SpeakingDurationWithPauses() (float64, error) {
	r, err := a.snapshot()
	return r.SpeakingDurationWithPauses, err
}

// SpeakingRatio is speaking duration over original duration.
func (a *Analyser) SpeakingRatio() (float64, error) {
	r, err := a.snapshot()
	return r.SpeakingRatio, err
}

func (a *Analyser) F0Values() (F0, error) {
	r, err := a.snapshot()
	return r.F0(), err
}

// PPPScorePercentage resamples the pronunciation posterior probability and
// returns the mean success rate as a percentage.
func (a *Analyser) PPPScorePercentage() (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return 0, ErrNotStarted
	}
	return a.pppLocked()
}

// GenderMood guesses gender and mood from the pitch distribution.
func (a *Analyser) GenderMood() (stats.Verdict, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return stats.Verdict{}, ErrNotStarted
	}
	return a.genderMoodLocked(), nil
}

// Report bundles every figure of the current session. All of them are read
// under one lock so a concurrent Start cannot mix two sessions.
func (a *Analyser) Report() (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil, ErrNotStarted
	}
	gm := a.genderMoodLocked()
	ppp, err := a.pppLocked()
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:          a.id,
		AudioPath:   a.path,
		Audio:       a.info,
		Stats:       a.result,
		GenderMood:  gm,
		PPPScore:    ppp,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// a.mu must be held.
func (a *Analyser) pppLocked() (float64, error) {
	draws := a.cfg.Classifier.PPPDraws
	if draws <= 0 {
		draws = defaultPPPDraws
	}
	return stats.BinomialMeanPercent(a.rng, pppTrials, a.pppProb, draws)
}

// a.mu must be held.
func (a *Analyser) genderMoodLocked() stats.Verdict {
	c := stats.NewClassifier(a.rng)
	if n := a.cfg.Classifier.SampleSize; n > 0 {
		c.SampleSize = n
	}
	if n := a.cfg.Classifier.MaxRounds; n > 0 {
		c.MaxRounds = n
	}
	v := c.Classify(a.result.F0Mean, a.result.F0Std)
	a.log.WithFields(logrus.Fields{
		"analysis_id": a.id,
		"f0_mean":     a.result.F0Mean,
		"ok":          v.OK,
		"rounds":      v.Rounds,
	}).Debug("gender/mood classified")
	return v
}
