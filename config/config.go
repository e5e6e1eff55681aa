package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL string `yaml:"url"`
}
type Services struct {
	Reports Service `yaml:"reports"`
}

// Engine holds the praat invocation settings. The acoustic fields are passed
// to the script positionally, in the order they are declared here.
type Engine struct {
	Binary  string `yaml:"binary"`
	Script  string `yaml:"script"`
	Timeout int    `yaml:"timeout"` // seconds

	SilenceDB      float64 `yaml:"silence_db"`
	MinDipDB       float64 `yaml:"min_dip_db"`
	MinPause       float64 `yaml:"min_pause"`
	KeepSoundfiles string  `yaml:"keep_soundfiles"`
	PitchFloor     float64 `yaml:"pitch_floor"`
	PitchCeiling   float64 `yaml:"pitch_ceiling"`
	TimeStep       float64 `yaml:"time_step"`
}

type Classifier struct {
	MaxRounds  int    `yaml:"max_rounds"`
	SampleSize int    `yaml:"sample_size"`
	PPPDraws   int    `yaml:"ppp_draws"`
	Seed       uint64 `yaml:"seed"` // 0 = random
}

type Root struct {
	Pipeline struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		LogLvl  string `yaml:"log_level"`
	} `yaml:"pipeline"`
	Engine     Engine     `yaml:"engine"`
	Classifier Classifier `yaml:"classifier"`
	Services   Services   `yaml:"services"`
	Paths      struct {
		Outputs string `yaml:"outputs"`
		DB      string `yaml:"db"`
	} `yaml:"paths"`
}

// Default returns the settings used when no config file is found.
func Default() *Root {
	var r Root
	r.Pipeline.Name = "voice-analysis"
	r.Pipeline.Version = "0.1.0"
	r.Pipeline.LogLvl = "info"
	r.Engine = Engine{
		Binary:         "praat",
		Script:         filepath.Join("scripts", "myspsolution.praat"),
		Timeout:        120,
		SilenceDB:      -20,
		MinDipDB:       2,
		MinPause:       0.3,
		KeepSoundfiles: "yes",
		PitchFloor:     80,
		PitchCeiling:   400,
		TimeStep:       0.01,
	}
	r.Classifier = Classifier{
		MaxRounds:  100,
		SampleSize: 1000,
		PPPDraws:   10000,
	}
	r.Paths.Outputs = "outputs"
	r.Paths.DB = filepath.Join("outputs", "reports.sqlite")
	return &r
}

// Load looks for config/<CONFIG_ENV>/config.yaml and a couple of fallbacks.
// Missing files are not an error; the defaults are returned instead.
func Load() (*Root, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	var guess = []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("config", "config.yaml"),
	}
	for _, p := range guess {
		cfg, err := LoadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Default(), nil
}

// LoadFile decodes a single YAML file on top of the defaults.
func LoadFile(path string) (*Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// NewViper returns a viper instance reading VOICEANALYSIS_* variables,
// e.g. VOICEANALYSIS_ENGINE_BINARY for engine.binary.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("voiceanalysis")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Overlay copies every key set in v (env or bound flag) over r.
func (r *Root) Overlay(v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	integer := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	str("pipeline.log_level", &r.Pipeline.LogLvl)
	str("engine.binary", &r.Engine.Binary)
	str("engine.script", &r.Engine.Script)
	integer("engine.timeout", &r.Engine.Timeout)
	num("engine.silence_db", &r.Engine.SilenceDB)
	num("engine.min_dip_db", &r.Engine.MinDipDB)
	num("engine.min_pause", &r.Engine.MinPause)
	str("engine.keep_soundfiles", &r.Engine.KeepSoundfiles)
	num("engine.pitch_floor", &r.Engine.PitchFloor)
	num("engine.pitch_ceiling", &r.Engine.PitchCeiling)
	num("engine.time_step", &r.Engine.TimeStep)
	integer("classifier.max_rounds", &r.Classifier.MaxRounds)
	integer("classifier.sample_size", &r.Classifier.SampleSize)
	integer("classifier.ppp_draws", &r.Classifier.PPPDraws)
	if v.IsSet("classifier.seed") {
		r.Classifier.Seed = v.GetUint64("classifier.seed")
	}
	str("services.reports.url", &r.Services.Reports.URL)
	str("paths.outputs", &r.Paths.Outputs)
	str("paths.db", &r.Paths.DB)
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
