package analysis

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maastricht-university/voice-analysis/config"
)

// engineArgs builds the positional parameter list of the syllable/pitch
// script. The sound file directory keeps its trailing separator.
func engineArgs(e config.Engine, soundfile string) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	dir := filepath.Dir(soundfile) + string(filepath.Separator)
	return []string{
		f(e.SilenceDB),
		f(e.MinDipDB),
		f(e.MinPause),
		e.KeepSoundfiles,
		soundfile,
		dir,
		f(e.PitchFloor),
		f(e.PitchCeiling),
		f(e.TimeStep),
	}
}

func tokenize(out string) ([]string, error) {
	toks := strings.Fields(out)
	if len(toks) < NumColumns {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrMalformedOutput, len(toks), NumColumns)
	}
	return toks, nil
}

type columns []string

func (c columns) intAt(i int) (int, error) {
	v, err := strconv.Atoi(c[i])
	if err != nil {
		return 0, fmt.Errorf("%w: column %d %q is not an integer", ErrMalformedOutput, i, c[i])
	}
	return v, nil
}

func (c columns) floatAt(i int) (float64, error) {
	v, err := strconv.ParseFloat(c[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: column %d %q is not a number", ErrMalformedOutput, i, c[i])
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: column %d %q is not finite", ErrMalformedOutput, i, c[i])
	}
	return v, nil
}

func parseResult(toks []string) (Result, float64, error) {
	c := columns(toks)
	var r Result
	ints := []struct {
		col int
		dst *int
	}{
		{ColSyllables, &r.NumSyllables},
		{ColPauses, &r.NumPauses},
		{ColSpeechRate, &r.SpeechRate},
		{ColArticulationRate, &r.ArticulationRate},
	}
	for _, x := range ints {
		v, err := c.intAt(x.col)
		if err != nil {
			return Result{}, 0, err
		}
		*x.dst = v
	}

	var ppp float64
	floats := []struct {
		col int
		dst *float64
	}{
		{ColSpeakingNoPauses, &r.SpeakingDurationNoPauses},
		{ColSpeakingWithPauses, &r.SpeakingDurationWithPauses},
		{ColSpeakingRatio, &r.SpeakingRatio},
		{ColF0Mean, &r.F0Mean},
		{ColF0Std, &r.F0Std},
		{ColF0Median, &r.F0Median},
		{ColF0Min, &r.F0Min},
		{ColF0Max, &r.F0Max},
		{ColF0Q25, &r.F0Quantile25},
		{ColF0Q75, &r.F0Quantile75},
		{ColPronunciation, &ppp},
	}
	for _, x := range floats {
		v, err := c.floatAt(x.col)
		if err != nil {
			return Result{}, 0, err
		}
		*x.dst = v
	}
	return r, ppp, nil
}
