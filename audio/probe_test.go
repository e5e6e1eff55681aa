package audio_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/voice-analysis/audio"
)

func writeWAV(t *testing.T, path string, sampleRate, samples int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, samples),
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestProbeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.wav")
	writeWAV(t, path, 16000, 32000)

	info, err := audio.Probe(path)
	require.NoError(t, err)
	assert.True(t, info.Probed)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitDepth)
	assert.Equal(t, 2*time.Second, info.Duration)
}

func TestProbeInvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff data"), 0o644))

	_, err := audio.Probe(path)
	assert.ErrorIs(t, err, audio.ErrInvalidWAV)
}

func TestProbeOtherFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.mp3")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfb}, 0o644))

	info, err := audio.Probe(path)
	require.NoError(t, err)
	assert.False(t, info.Probed)
	assert.Equal(t, path, info.Path)
}

func TestProbeMissing(t *testing.T) {
	_, err := audio.Probe(filepath.Join(t.TempDir(), "nope.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = audio.Probe(t.TempDir())
	assert.Error(t, err)
}
