package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrToolNotFound is returned when the ffmpeg process could not be started
var ErrToolNotFound = errors.New("ffmpeg could not be started")

// FailureKind classifies why an invocation did not succeed
type FailureKind int

const (
	NoFailure FailureKind = iota
	MissingInput
	InvalidRequest
	ToolFailure
	ToolNotFound
)

func (k FailureKind) String() string {
	switch k {
	case NoFailure:
		return "none"
	case MissingInput:
		return "missing_input"
	case InvalidRequest:
		return "invalid_request"
	case ToolFailure:
		return "tool_failure"
	case ToolNotFound:
		return "tool_not_found"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// IsToolFailure reports whether ffmpeg itself failed, including failing to start
func (k FailureKind) IsToolFailure() bool {
	return k == ToolFailure || k == ToolNotFound
}

// Result is the outcome of one Invoke call. OutputPath is only set on success.
type Result struct {
	Success    bool
	OutputPath string
	ExitCode   int
	Kind       FailureKind
	Err        error
}

// Describe returns the output file name with its size, or "" for failed results
func (r Result) Describe() string {
	if !r.Success {
		return ""
	}
	name := filepath.Base(r.OutputPath)
	st, err := os.Stat(r.OutputPath)
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, humanize.Bytes(uint64(st.Size())))
}

func failed(kind FailureKind, exitCode int, err error) Result {
	return Result{Kind: kind, ExitCode: exitCode, Err: err}
}

// FFmpeg is the process invocation adapter: it turns a Request into an
// ffmpeg run and reports the exit code as a Result.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	exec        Executor
	log         zerolog.Logger
}

// Option configures an FFmpeg adapter
type Option func(*FFmpeg)

// WithExecutor replaces the process runner
func WithExecutor(e Executor) Option {
	return func(f *FFmpeg) {
		f.exec = e
	}
}

// WithFFprobe sets the ffprobe binary used by Inspect
func WithFFprobe(ffprobePath string) Option {
	return func(f *FFmpeg) {
		f.ffprobePath = ffprobePath
	}
}

// WithLogger sets the logger used for invocation records
func WithLogger(log zerolog.Logger) Option {
	return func(f *FFmpeg) {
		f.log = log
	}
}

// New creates an adapter that runs the ffmpeg binary at ffmpegPath
func New(ffmpegPath string, opts ...Option) *FFmpeg {
	f := &FFmpeg{
		ffmpegPath: ffmpegPath,
		exec:       CommandExecutor{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.ffprobePath == "" {
		f.ffprobePath = LocateFFprobe(ffmpegPath)
	}
	return f
}

// Path returns the ffmpeg binary the adapter runs
func (f *FFmpeg) Path() string {
	return f.ffmpegPath
}

// Inspect describes an input file with the adapter's ffprobe
func (f *FFmpeg) Inspect(path string) InputInfo {
	return Inspect(f.ffprobePath, path)
}

// Invoke validates the request, runs ffmpeg and blocks until it exits.
// Every outcome, including a failure to start, is returned as a Result.
func (f *FFmpeg) Invoke(req Request) Result {
	if err := req.Validate(); err != nil {
		kind := MissingInput
		if errors.Is(err, ErrInvalidRequest) {
			kind = InvalidRequest
		}
		f.log.Warn().Err(err).Str("operation", req.Operation.String()).Msg("request rejected")
		return failed(kind, -1, err)
	}

	output, err := OutputPath(req)
	if err != nil {
		return failed(InvalidRequest, -1, err)
	}
	args, err := BuildArgs(req)
	if err != nil {
		return failed(InvalidRequest, -1, err)
	}

	log := f.log.With().
		Str("invocation", uuid.NewString()).
		Str("operation", req.Operation.String()).
		Str("input", req.InputPath).
		Str("output", output).
		Logger()
	log.Info().Strs("args", args).Msg("running ffmpeg")

	start := time.Now()
	res := f.exec.Run(f.ffmpegPath, args)
	elapsed := time.Since(start)

	if !res.Started {
		err := fmt.Errorf("%w: %s: %v", ErrToolNotFound, f.ffmpegPath, res.Err)
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("ffmpeg did not start")
		return failed(ToolNotFound, -1, err)
	}

	if res.ExitCode != 0 {
		log.Error().
			Int("exit_code", res.ExitCode).
			Dur("elapsed", elapsed).
			Str("stderr", tail(res.Stderr, 5)).
			Msg("ffmpeg failed")
		return failed(ToolFailure, res.ExitCode, fmt.Errorf("ffmpeg exited with code %d", res.ExitCode))
	}

	log.Info().Int("exit_code", 0).Dur("elapsed", elapsed).Msg("ffmpeg finished")
	return Result{Success: true, OutputPath: output}
}

// CommandLine renders the ffmpeg invocation for a request as a shell-like string
func (f *FFmpeg) CommandLine(req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	args, err := BuildArgs(req)
	if err != nil {
		return "", err
	}

	parts := []string{quote(f.ffmpegPath)}
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " "), nil
}

// quote single-quotes s for a POSIX shell unless every rune is shell-safe
func quote(s string) string {
	if s != "" && strings.IndexFunc(s, unsafeShellRune) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("_./:=@%+,-", r):
		return false
	}
	return true
}

// tail returns the last n lines of s
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
