package ffmpeg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// InputInfo describes a selected input file. Fields other than Name are
// best effort and left zero when they cannot be read.
type InputInfo struct {
	Name     string
	MIME     string
	Width    int
	Height   int
	Duration time.Duration
}

// LocateFFprobe finds ffprobe, preferring the directory ffmpeg was found in
func LocateFFprobe(ffmpegPath string) string {
	if ffmpegPath != filepath.Base(ffmpegPath) {
		candidate := filepath.Join(filepath.Dir(ffmpegPath), binaryName("ffprobe"))
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return Locate("ffprobe", "")
}

// Inspect gathers display details about path using the ffprobe binary at
// ffprobePath. It never rejects an input: the adapter only requires a
// non-empty path.
func Inspect(ffprobePath, path string) InputInfo {
	info := InputInfo{Name: filepath.Base(path)}

	if mt, err := mimetype.DetectFile(path); err == nil {
		info.MIME = mt.String()
	}

	if ffprobePath == "" {
		return info
	}
	if details, err := readVideoDetails(ffprobePath, path); err == nil {
		info.Width = details.Width
		info.Height = details.Height
		info.Duration = details.Duration
	}

	return info
}

type streamReport struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// readVideoDetails reads the first video stream's size and the container duration
func readVideoDetails(ffprobePath, path string) (InputInfo, error) {
	cmd := exec.Command(ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "json",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return InputInfo{}, fmt.Errorf("ffprobe failed: %s", strings.TrimSpace(stderr.String()))
	}

	var out streamReport
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return InputInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var info InputInfo
	if len(out.Streams) > 0 {
		info.Width = out.Streams[0].Width
		info.Height = out.Streams[0].Height
	}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil {
		info.Duration = time.Duration(secs * float64(time.Second)).Round(time.Second)
	}
	return info, nil
}

func (i InputInfo) String() string {
	var details []string
	if i.MIME != "" {
		details = append(details, i.MIME)
	}
	if i.Width > 0 && i.Height > 0 {
		details = append(details, fmt.Sprintf("%dx%d", i.Width, i.Height))
	}
	if i.Duration > 0 {
		details = append(details, i.Duration.String())
	}

	if len(details) == 0 {
		return i.Name
	}
	return fmt.Sprintf("%s (%s)", i.Name, strings.Join(details, ", "))
}
