package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("audio file is not a valid wav file")

// Info describes a probed input file. Probed is false for formats that are
// handed to the engine without inspection.
type Info struct {
	Path       string        `json:"path"`
	Probed     bool          `json:"probed"`
	SampleRate int           `json:"sample_rate,omitempty"`
	Channels   int           `json:"channels,omitempty"`
	BitDepth   int           `json:"bit_depth,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Probe stats the file and, for .wav inputs, reads the header.
func Probe(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return Info{}, fmt.Errorf("%s is a directory", path)
	}

	info := Info{Path: path}
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		return info, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	dur, err := d.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("wav duration: %w", err)
	}
	format := d.Format()

	info.Probed = true
	info.SampleRate = format.SampleRate
	info.Channels = format.NumChannels
	info.BitDepth = int(d.BitDepth)
	info.Duration = dur
	return info, nil
}
