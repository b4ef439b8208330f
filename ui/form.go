package ui

import (
	"path/filepath"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"ffmpeg-gui/ffmpeg"
)

// parameterInput is the widget that supplies a form's format or resolution
type parameterInput struct {
	label  string
	widget fyne.CanvasObject
	value  func() string
}

// operationForm is one tab: a selected file, a parameter and a run button.
// The form owns its own selection; nothing is shared between tabs.
type operationForm struct {
	op        ffmpeg.Operation
	ff        invoker
	param     parameterInput
	inputPath string

	fileLabel   *widget.Label
	browseBtn   *widget.Button
	runBtn      *widget.Button
	progressBar *widget.ProgressBar
	busyBar     *widget.ProgressBarInfinite
	statusLabel *widget.Label
}

func newForm(op ffmpeg.Operation, ff invoker, param parameterInput, browse func(*operationForm)) *operationForm {
	f := &operationForm{
		op:          op,
		ff:          ff,
		param:       param,
		fileLabel:   widget.NewLabel("Select Video File:"),
		progressBar: widget.NewProgressBar(),
		busyBar:     widget.NewProgressBarInfinite(),
		statusLabel: widget.NewLabel(""),
	}
	f.fileLabel.Wrapping = fyne.TextWrapWord
	f.statusLabel.Wrapping = fyne.TextWrapWord
	f.busyBar.Stop()
	f.busyBar.Hide()

	f.browseBtn = widget.NewButton("Browse", func() {
		if browse != nil {
			browse(f)
		}
	})
	f.runBtn = widget.NewButton(op.Messages().Action, f.submit)
	return f
}

func (f *operationForm) content() fyne.CanvasObject {
	return container.NewVBox(
		f.fileLabel,
		f.browseBtn,
		widget.NewLabel(f.param.label),
		f.param.widget,
		f.runBtn,
		f.progressBar,
		f.busyBar,
		f.statusLabel,
	)
}

// setInput records the chosen file and shows its description
func (f *operationForm) setInput(path, description string) {
	f.inputPath = path
	f.fileLabel.SetText("File: " + description)
}

// submit builds the request from the form and runs it in the background.
// Requests failing their preconditions never reach ffmpeg.
func (f *operationForm) submit() {
	req := ffmpeg.Request{
		InputPath: f.inputPath,
		Operation: f.op,
		Parameter: f.param.value(),
	}
	msgs := f.op.Messages()

	if err := req.Validate(); err != nil {
		f.statusLabel.SetText(msgs.Missing)
		return
	}

	// One operation per form at a time
	f.runBtn.Disable()
	f.browseBtn.Disable()
	f.statusLabel.SetText(msgs.Running)
	f.progressBar.Hide()
	f.busyBar.Show()
	f.busyBar.Start()

	go func() {
		res := f.ff.Invoke(req)
		fyne.Do(func() {
			f.finish(res)
		})
	}()
}

// finish renders a result and re-enables the form
func (f *operationForm) finish(res ffmpeg.Result) {
	f.busyBar.Stop()
	f.busyBar.Hide()
	f.progressBar.Show()
	if res.Success {
		f.progressBar.SetValue(1)
	} else {
		f.progressBar.SetValue(0)
	}
	f.statusLabel.SetText(statusText(f.op, res))
	f.runBtn.Enable()
	f.browseBtn.Enable()
}

func statusText(op ffmpeg.Operation, res ffmpeg.Result) string {
	msgs := op.Messages()
	switch {
	case res.Success:
		return msgs.Done + " " + res.Describe()
	case res.Kind == ffmpeg.MissingInput:
		return msgs.Missing
	default:
		return msgs.Failed
	}
}

// newOperationForm creates a form whose Browse button opens a file dialog
func (a *App) newOperationForm(op ffmpeg.Operation, param parameterInput) *operationForm {
	return newForm(op, a.ff, param, a.browse)
}

func (a *App) newFormatSelect(op ffmpeg.Operation, saved *string) parameterInput {
	choices := op.Choices()
	sel := widget.NewSelect(choices, func(value string) {
		*saved = value
	})

	initial := *saved
	if !slices.Contains(choices, initial) {
		initial = choices[0]
	}
	sel.SetSelected(initial)

	label := "Output Format:"
	if op == ffmpeg.ExtractAudio {
		label = "Audio Format:"
	}
	return parameterInput{
		label:  label,
		widget: sel,
		value:  func() string { return sel.Selected },
	}
}

func (a *App) newResolutionEntry() parameterInput {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Example: 1280x720")
	entry.SetText(a.cfg.Resolution)
	entry.OnChanged = func(text string) {
		a.cfg.Resolution = text
	}
	return parameterInput{
		label:  "Enter Resolution (WidthxHeight):",
		widget: entry,
		value:  func() string { return entry.Text },
	}
}

// browse opens a file dialog and loads the chosen file into the form
func (a *App) browse(f *operationForm) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return // User cancelled
		}
		reader.Close()

		path := localPath(reader.URI())
		a.cfg.LastWorkingDir = filepath.Dir(path)
		f.setInput(path, filepath.Base(path))

		// ffprobe may take a moment; fill in details when ready
		go func() {
			info := a.inspect(path)
			fyne.Do(func() {
				if f.inputPath == path {
					f.setInput(path, info.String())
				}
			})
		}()
	}, a.window)

	if a.cfg.LastWorkingDir != "" {
		uri := storage.NewFileURI(a.cfg.LastWorkingDir)
		if listable, err := storage.ListerForURI(uri); err == nil {
			fd.SetLocation(listable)
		}
	}

	fd.Show()
}

// localPath converts a file URI into a native path.
// On Windows the URI path looks like /C:/..., so the leading slash goes.
func localPath(uri fyne.URI) string {
	path := uri.Path()
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}
