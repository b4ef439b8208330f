package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Operation names one of the three fixed ffmpeg jobs
type Operation string

const (
	Convert      Operation = "convert"
	ExtractAudio Operation = "extract_audio"
	Resize       Operation = "resize"
)

// Operations lists every supported operation in tab order
var Operations = []Operation{Convert, ExtractAudio, Resize}

// Messages is the user-facing text for one operation
type Messages struct {
	Title   string
	Action  string
	Running string
	Done    string
	Failed  string
	Missing string
}

var messages = map[Operation]Messages{
	Convert: {
		Title:   "Convert Video",
		Action:  "Convert",
		Running: "Converting...",
		Done:    "Conversion complete!",
		Failed:  "Error during conversion.",
		Missing: "Please select a file first.",
	},
	ExtractAudio: {
		Title:   "Extract Audio",
		Action:  "Extract Audio",
		Running: "Extracting audio...",
		Done:    "Audio extraction complete!",
		Failed:  "Error during extraction.",
		Missing: "Please select a file first.",
	},
	Resize: {
		Title:   "Resize Video",
		Action:  "Resize Video",
		Running: "Resizing...",
		Done:    "Resize complete!",
		Failed:  "Error resizing video.",
		Missing: "Please select a file and enter a resolution.",
	},
}

// Messages returns the status text for the operation
func (o Operation) Messages() Messages {
	return messages[o]
}

// Choices returns the output formats offered for the operation.
// Resize takes a free-form resolution and has none.
func (o Operation) Choices() []string {
	switch o {
	case Convert:
		return []string{"mp4", "avi", "mkv"}
	case ExtractAudio:
		return []string{"mp3", "aac", "wav"}
	}
	return nil
}

func (o Operation) String() string {
	return string(o)
}

var (
	// ErrMissingInput is returned when a request lacks its input file or parameter
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidRequest is returned for requests naming an unknown operation
	ErrInvalidRequest = errors.New("invalid request")
)

var validate = validator.New()

// Request describes one user action: which file, which job, and the job's
// parameter (an output format, or a WIDTHxHEIGHT resolution for Resize).
type Request struct {
	InputPath string    `validate:"required"`
	Operation Operation `validate:"oneof=convert extract_audio resize"`
	Parameter string    `validate:"required"`
}

var fieldNames = map[string]string{
	"InputPath": "input file",
	"Parameter": "format or resolution",
}

// Validate checks the request preconditions without touching the file system
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Field() == "Operation" {
			return fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, r.Operation)
		}
		missing = append(missing, fieldNames[fe.Field()])
	}
	return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
}

// OutputPath derives the file ffmpeg will write for the request
func OutputPath(req Request) (string, error) {
	base := trimExt(req.InputPath)
	switch req.Operation {
	case Convert, ExtractAudio:
		return base + "." + req.Parameter, nil
	case Resize:
		return base + "_resized.mp4", nil
	}
	return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, req.Operation)
}

// BuildArgs returns the ffmpeg argument list for the request.
// The resolution is passed to the scale filter verbatim.
func BuildArgs(req Request) ([]string, error) {
	output, err := OutputPath(req)
	if err != nil {
		return nil, err
	}

	args := []string{"-i", req.InputPath}
	switch req.Operation {
	case ExtractAudio:
		args = append(args,
			"-q:a", "0", // Best variable bitrate quality
			"-map", "a", // Audio streams only
		)
	case Resize:
		args = append(args, "-vf", "scale="+req.Parameter)
	}

	return append(args, "-y", safeArg(output)), nil
}

// safeArg keeps ffmpeg from reading a path that starts with a dash as an
// option.
func safeArg(path string) string {
	if strings.HasPrefix(path, "-") {
		return "." + string(os.PathSeparator) + path
	}
	return path
}

// trimExt strips the final extension from the last path element.
// Names made only of leading dots (".hidden") keep their dots.
func trimExt(path string) string {
	start := len(path)
	for start > 0 && !os.IsPathSeparator(path[start-1]) {
		start--
	}
	name := path[start:]

	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || strings.Trim(name[:dot], ".") == "" {
		return path
	}
	return path[:start+dot]
}
