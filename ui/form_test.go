package ui

import (
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffmpeg-gui/config"
	"ffmpeg-gui/ffmpeg"
)

// blockingInvoker counts calls and never returns until released
type blockingInvoker struct {
	calls   atomic.Int32
	release chan struct{}
	result  ffmpeg.Result
}

func (b *blockingInvoker) Invoke(req ffmpeg.Request) ffmpeg.Result {
	b.calls.Add(1)
	<-b.release
	return b.result
}

func fixedParam(value string) parameterInput {
	return parameterInput{
		label:  "Output Format:",
		widget: widget.NewLabel(value),
		value:  func() string { return value },
	}
}

func TestSubmitWithoutFileShowsMissingInput(t *testing.T) {
	test.NewTempApp(t)

	inv := &blockingInvoker{release: make(chan struct{})}
	f := newForm(ffmpeg.Convert, inv, fixedParam("mp4"), nil)

	test.Tap(f.runBtn)

	assert.Equal(t, "Please select a file first.", f.statusLabel.Text)
	assert.Zero(t, inv.calls.Load())
	assert.False(t, f.runBtn.Disabled())
}

func TestSubmitResizeWithoutResolution(t *testing.T) {
	test.NewTempApp(t)

	inv := &blockingInvoker{release: make(chan struct{})}
	f := newForm(ffmpeg.Resize, inv, fixedParam(""), nil)
	f.setInput("/videos/clip.mov", "clip.mov")

	test.Tap(f.runBtn)

	assert.Equal(t, "Please select a file and enter a resolution.", f.statusLabel.Text)
	assert.Zero(t, inv.calls.Load())
}

func TestSubmitRunsOneOperationAtATime(t *testing.T) {
	test.NewTempApp(t)

	inv := &blockingInvoker{
		release: make(chan struct{}),
		result:  ffmpeg.Result{Success: true, OutputPath: "/nowhere/clip.mp3"},
	}
	f := newForm(ffmpeg.ExtractAudio, inv, fixedParam("mp3"), nil)
	f.setInput("/videos/clip.mov", "clip.mov")

	test.Tap(f.runBtn)

	assert.Equal(t, "Extracting audio...", f.statusLabel.Text)
	assert.True(t, f.runBtn.Disabled())
	assert.True(t, f.browseBtn.Disabled())
	require.Eventually(t, func() bool { return inv.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	// A disabled button ignores taps
	test.Tap(f.runBtn)
	assert.Equal(t, int32(1), inv.calls.Load())

	close(inv.release)
	require.Eventually(t, func() bool {
		return !f.runBtn.Disabled() && f.statusLabel.Text == "Audio extraction complete! clip.mp3"
	}, time.Second, 10*time.Millisecond)
	assert.False(t, f.browseBtn.Disabled())
	assert.Equal(t, int32(1), inv.calls.Load())
}

func TestFinishSuccess(t *testing.T) {
	test.NewTempApp(t)

	f := newForm(ffmpeg.Convert, &blockingInvoker{}, fixedParam("mp4"), nil)
	f.runBtn.Disable()

	f.finish(ffmpeg.Result{Success: true, OutputPath: "/nowhere/movie.mp4"})

	assert.Equal(t, "Conversion complete! movie.mp4", f.statusLabel.Text)
	assert.Equal(t, 1.0, f.progressBar.Value)
	assert.False(t, f.runBtn.Disabled())
	assert.False(t, f.busyBar.Visible())
}

func TestFinishFailureResetsProgress(t *testing.T) {
	test.NewTempApp(t)

	f := newForm(ffmpeg.Resize, &blockingInvoker{}, fixedParam("1280x720"), nil)
	f.progressBar.SetValue(0.5)

	f.finish(ffmpeg.Result{Kind: ffmpeg.ToolNotFound, ExitCode: -1})

	assert.Equal(t, "Error resizing video.", f.statusLabel.Text)
	assert.Equal(t, 0.0, f.progressBar.Value)
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name     string
		op       ffmpeg.Operation
		res      ffmpeg.Result
		expected string
	}{
		{"tool failure", ffmpeg.Convert, ffmpeg.Result{Kind: ffmpeg.ToolFailure, ExitCode: 1}, "Error during conversion."},
		{"not found is shown as failure", ffmpeg.ExtractAudio, ffmpeg.Result{Kind: ffmpeg.ToolNotFound}, "Error during extraction."},
		{"missing input", ffmpeg.Resize, ffmpeg.Result{Kind: ffmpeg.MissingInput}, "Please select a file and enter a resolution."},
		{"success", ffmpeg.Resize, ffmpeg.Result{Success: true, OutputPath: "/x/clip_resized.mp4"}, "Resize complete! clip_resized.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusText(tt.op, tt.res))
		})
	}
}

func TestBuildTabsUsesSavedSettings(t *testing.T) {
	test.NewTempApp(t)

	cfg := config.DefaultConfig()
	cfg.AudioFormat = "wav"
	cfg.ConvertFormat = "webm" // not offered, falls back to the first choice
	cfg.Resolution = "640x360"

	a := &App{ff: &blockingInvoker{}, cfg: cfg}
	tabs := a.buildTabs()

	require.Len(t, tabs.Items, 3)
	assert.Equal(t, "Convert Video", tabs.Items[0].Text)
	assert.Equal(t, "Extract Audio", tabs.Items[1].Text)
	assert.Equal(t, "Resize Video", tabs.Items[2].Text)

	assert.Equal(t, "mp4", a.forms[0].param.value())
	assert.Equal(t, "mp4", cfg.ConvertFormat)
	assert.Equal(t, "wav", a.forms[1].param.value())
	assert.Equal(t, "640x360", a.forms[2].param.value())
}
