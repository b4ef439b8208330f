package ffmpeg

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ExecResult holds the outcome of running one external process
type ExecResult struct {
	Started  bool   // false when the process could not be started at all
	ExitCode int    // -1 when not started or killed by a signal
	Stderr   string // captured stderr, used only for logging
	Err      error
}

// Executor runs an external command to completion
type Executor interface {
	Run(name string, args []string) ExecResult
}

// CommandExecutor runs commands with os/exec, never through a shell
type CommandExecutor struct{}

// Run starts the command and blocks until it exits
func (CommandExecutor) Run(name string, args []string) ExecResult {
	cmd := exec.Command(name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return ExecResult{Started: true, Stderr: stderr.String()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExecResult{
			Started:  true,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	return ExecResult{ExitCode: -1, Err: err}
}

// binaryName adds the platform executable suffix
func binaryName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// Locate finds a tool binary. An explicit override wins; otherwise the bin/
// folder next to the executable, ../bin, ./bin and finally PATH are searched.
// When nothing is found the bare name is returned so the failure surfaces
// when the tool is actually run.
func Locate(name, override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}

	file := binaryName(name)

	var searchPaths []string
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		searchPaths = append(searchPaths,
			filepath.Join(exeDir, "bin"),       // Next to executable
			filepath.Join(exeDir, "..", "bin"), // Parent/bin (for development)
		)
	}
	searchPaths = append(searchPaths, "bin")

	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, file)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}

	if path, err := exec.LookPath(file); err == nil {
		return path
	}
	return file
}

// ToolStatus reports whether an external tool can be found
type ToolStatus struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckTools reports the availability of ffmpeg and ffprobe.
// ffprobe is optional; it only feeds the input details shown in the GUI.
func CheckTools(ffmpegOverride string) []ToolStatus {
	ffmpegPath := Locate("ffmpeg", ffmpegOverride)
	tools := []ToolStatus{
		{
			Name:        "ffmpeg",
			Command:     ffmpegPath,
			Description: "Runs convert, extract audio and resize",
		},
		{
			Name:        "ffprobe",
			Command:     LocateFFprobe(ffmpegPath),
			Description: "Reads video dimensions and duration",
			Optional:    true,
		},
	}

	for i := range tools {
		t := &tools[i]
		path, err := exec.LookPath(t.Command)
		if err != nil {
			t.Detail = fmt.Sprintf("binary %q not found", t.Command)
			continue
		}
		t.Available = true
		t.Detail = path
	}
	return tools
}
