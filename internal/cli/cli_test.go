package cli

import (
	"bytes"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() (*flag.FlagSet, *string, *float64) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("output-dir", "", "")
	conf := fs.Float64("conf-threshold", 0.25, "")
	return fs, out, conf
}

func TestParseInterspersed(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPos  []string
		wantOut  string
		wantConf float64
	}{
		{
			name:     "flags first",
			args:     []string{"--output-dir", "out", "a.jpg", "b.jpg"},
			wantPos:  []string{"a.jpg", "b.jpg"},
			wantOut:  "out",
			wantConf: 0.25,
		},
		{
			name:     "flags last",
			args:     []string{"video.mp4", "shots", "--conf-threshold", "0.5"},
			wantPos:  []string{"video.mp4", "shots"},
			wantConf: 0.5,
		},
		{
			name:     "flags between",
			args:     []string{"a.jpg", "-output-dir=out", "b.jpg", "--conf-threshold=0.7"},
			wantPos:  []string{"a.jpg", "b.jpg"},
			wantOut:  "out",
			wantConf: 0.7,
		},
		{
			name:     "terminator ends flag parsing",
			args:     []string{"--output-dir", "out", "--", "a.jpg", "-b.jpg", "--conf-threshold"},
			wantPos:  []string{"a.jpg", "-b.jpg", "--conf-threshold"},
			wantOut:  "out",
			wantConf: 0.25,
		},
		{
			name:     "terminator after a positional",
			args:     []string{"a.jpg", "--conf-threshold", "0.4", "--", "-weird.jpg"},
			wantPos:  []string{"a.jpg", "-weird.jpg"},
			wantConf: 0.4,
		},
		{
			name:     "no positionals",
			args:     []string{"--output-dir", "out"},
			wantOut:  "out",
			wantConf: 0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, out, conf := newFlagSet()
			pos, err := Parse(fs, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantOut, *out)
			assert.Equal(t, tt.wantConf, *conf)
		})
	}
}

func TestParseErrors(t *testing.T) {
	fs, _, _ := newFlagSet()
	_, err := Parse(fs, []string{"a.jpg", "--conf-threshold", "high"})
	require.Error(t, err)
	assert.Equal(t, ExitUsage, UsageCode(err))

	fs, _, _ = newFlagSet()
	_, err = Parse(fs, []string{"-h"})
	require.ErrorIs(t, err, flag.ErrHelp)
	assert.Equal(t, ExitOK, UsageCode(err))
}

func TestFail(t *testing.T) {
	var buf bytes.Buffer
	code := Fail(&buf, "failed to load model: boom")

	assert.Equal(t, ExitError, code)
	assert.JSONEq(t, `{"error":"failed to load model: boom"}`, buf.String())
}
