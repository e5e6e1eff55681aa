package analysis

import (
	"time"

	"github.com/maastricht-university/voice-analysis/audio"
	"github.com/maastricht-university/voice-analysis/stats"
)

// Column offsets in the engine output.
const (
	ColSyllables = iota
	ColPauses
	ColSpeechRate
	ColArticulationRate
	ColSpeakingNoPauses
	ColSpeakingWithPauses
	ColSpeakingRatio
	ColF0Mean
	ColF0Std
	ColF0Median
	ColF0Min
	ColF0Max
	ColF0Q25
	ColF0Q75
	ColPronunciation

	NumColumns
)

type Result struct {
	NumSyllables               int     `json:"num_syllables"`
	NumPauses                  int     `json:"num_pauses"`
	SpeechRate                 int     `json:"speech_rate"`       // syllables / sec original duration
	ArticulationRate           int     `json:"articulation_rate"` // syllables / sec speaking duration
	SpeakingDurationNoPauses   float64 `json:"speaking_duration_no_pauses"`
	SpeakingDurationWithPauses float64 `json:"speaking_duration_with_pauses"`
	SpeakingRatio              float64 `json:"speaking_ratio"`
	F0Mean                     float64 `json:"f0_mean"`
	F0Std                      float64 `json:"f0_std"`
	F0Median                   float64 `json:"f0_median"`
	F0Min                      float64 `json:"f0_min"`
	F0Max                      float64 `json:"f0_max"`
	F0Quantile25               float64 `json:"f0_quantile25"`
	F0Quantile75               float64 `json:"f0_quantile75"`
}

// F0 is the fundamental frequency distribution in Hz.
type F0 struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"med"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

func (r Result) F0() F0 {
	return F0{
		Mean:   r.F0Mean,
		Std:    r.F0Std,
		Median: r.F0Median,
		Min:    r.F0Min,
		Max:    r.F0Max,
		Q25:    r.F0Quantile25,
		Q75:    r.F0Quantile75,
	}
}

type Report struct {
	ID          string        `json:"id"`
	AudioPath   string        `json:"audio_path"`
	Audio       audio.Info    `json:"audio"`
	Stats       Result        `json:"stats"`
	GenderMood  stats.Verdict `json:"gender_mood"`
	PPPScore    float64       `json:"ppp_score_percentage"`
	GeneratedAt time.Time     `json:"generated_at"`
}
