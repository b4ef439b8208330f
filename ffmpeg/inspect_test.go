package ffmpeg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ffprobeReport = `{"streams":[{"width":1920,"height":1080}],"format":{"duration":"10.000000"}}`

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}

func TestInspectNonVideo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text\n"), 0o644))

	info := Inspect("", path)

	assert.Equal(t, "notes.txt", info.Name)
	assert.Contains(t, info.MIME, "text/plain")
	assert.Zero(t, info.Width)
	assert.Zero(t, info.Height)
}

func TestInspectMissingFile(t *testing.T) {
	info := Inspect("", filepath.Join(t.TempDir(), "gone.mp4"))

	assert.Equal(t, "gone.mp4", info.Name)
	assert.Empty(t, info.MIME)
	assert.Equal(t, "gone.mp4", info.String())
}

func TestInspectUsesLocalBinFolder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses shell script stubs")
	}

	dir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	writeScript(t, filepath.Join("bin", "ffmpeg"), "exit 0")
	writeScript(t, filepath.Join("bin", "ffprobe"), "echo '"+ffprobeReport+"'")
	require.NoError(t, os.WriteFile("clip.mp4", []byte("not really a video"), 0o644))

	ffmpegPath := Locate("ffmpeg", "")
	require.Equal(t, filepath.Join("bin", "ffmpeg"), ffmpegPath)

	ff := New(ffmpegPath)
	assert.Equal(t, filepath.Join("bin", "ffprobe"), ff.ffprobePath)

	info := ff.Inspect("clip.mp4")
	assert.Equal(t, "clip.mp4", info.Name)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, 10*time.Second, info.Duration)
}

func TestInspectFFprobeFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses shell script stubs")
	}

	dir := t.TempDir()
	ffprobe := filepath.Join(dir, "ffprobe")
	writeScript(t, ffprobe, "echo 'Invalid data found' >&2\nexit 1")
	input := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(input, []byte("garbage"), 0o644))

	info := New("ffmpeg", WithFFprobe(ffprobe)).Inspect(input)

	assert.Equal(t, "clip.mp4", info.Name)
	assert.Zero(t, info.Width)
	assert.Zero(t, info.Duration)
}

func TestLocateFFprobeNextToFFmpeg(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses shell script stubs")
	}

	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "ffmpeg"), "exit 0")
	writeScript(t, filepath.Join(dir, "ffprobe"), "exit 0")

	assert.Equal(t, filepath.Join(dir, "ffprobe"), LocateFFprobe(filepath.Join(dir, "ffmpeg")))

	tools := CheckTools(filepath.Join(dir, "ffmpeg"))
	require.Len(t, tools, 2)
	assert.Equal(t, filepath.Join(dir, "ffprobe"), tools[1].Command)
	assert.True(t, tools[1].Available)
}

func TestInputInfoString(t *testing.T) {
	info := InputInfo{
		Name:     "clip.mov",
		MIME:     "video/quicktime",
		Width:    1920,
		Height:   1080,
		Duration: 92 * time.Second,
	}
	assert.Equal(t, "clip.mov (video/quicktime, 1920x1080, 1m32s)", info.String())

	info.Width = 0
	info.Duration = 0
	assert.Equal(t, "clip.mov (video/quicktime)", info.String())
}
