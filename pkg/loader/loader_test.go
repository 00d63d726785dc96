package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    string
	}{
		{name: "in_progress", current: 1, total: 4, want: "⏳ 1/4 (25%)"},
		{name: "done", current: 4, total: 4, want: "✅ 4/4 (100%)"},
		{name: "empty", current: 0, total: 0, want: "✅ 0/0 (0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatProgress(tt.current, tt.total))
		})
	}
}

func TestNewWithoutTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.IsType(t, Stub{}, New(f), "regular files are not terminals")
	assert.IsType(t, Stub{}, New(nil))
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)

	// calls before start are ignored
	s.Succeed("nothing")
	s.Update(UpdateProps{SuffixText: "1/2"})

	s.Start("Copying")
	s.Update(UpdateProps{SuffixText: "2/2"})
	assert.Equal(t, "Copying 2/2", s.render())
	s.Succeed("done")

	assert.Nil(t, s.spinner, "finishing releases the spinner")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Start("a")
	r.Update(UpdateProps{SuffixText: "1/1"})
	r.Succeed("b")
	r.Stop()

	assert.Equal(t, []string{"start a", "update 1/1", "succeed b", "stop"}, r.Snapshot())
}
