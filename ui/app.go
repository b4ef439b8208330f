package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"github.com/rs/zerolog"

	"ffmpeg-gui/config"
	"ffmpeg-gui/ffmpeg"
)

// invoker runs one ffmpeg request to completion
type invoker interface {
	Invoke(req ffmpeg.Request) ffmpeg.Result
}

// App represents the main application
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	ff      invoker
	inspect func(path string) ffmpeg.InputInfo
	cfg     *config.Config
	log     zerolog.Logger

	forms []*operationForm
}

// NewApp creates a new application instance
func NewApp(ff *ffmpeg.FFmpeg, cfg *config.Config, log zerolog.Logger) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &App{
		ff:      ff,
		inspect: ff.Inspect,
		cfg:     cfg,
		log:     log,
	}
}

// Run starts the application and blocks until the window is closed
func (a *App) Run() {
	a.fyneApp = app.NewWithID("com.ffmpeg-gui")
	a.window = a.fyneApp.NewWindow("FFmpeg GUI - Multi-Tab")
	a.window.Resize(fyne.NewSize(500, 300))

	a.window.SetContent(a.buildTabs())
	a.window.SetOnClosed(func() {
		if err := a.cfg.Save(); err != nil {
			a.log.Warn().Err(err).Msg("failed to save config")
		}
	})

	a.window.ShowAndRun()
}

// buildTabs creates one form per operation
func (a *App) buildTabs() *container.AppTabs {
	convert := a.newOperationForm(ffmpeg.Convert, a.newFormatSelect(ffmpeg.Convert, &a.cfg.ConvertFormat))
	audio := a.newOperationForm(ffmpeg.ExtractAudio, a.newFormatSelect(ffmpeg.ExtractAudio, &a.cfg.AudioFormat))
	resize := a.newOperationForm(ffmpeg.Resize, a.newResolutionEntry())
	a.forms = []*operationForm{convert, audio, resize}

	tabs := container.NewAppTabs()
	for _, f := range a.forms {
		tabs.Append(container.NewTabItem(f.op.Messages().Title, f.content()))
	}
	tabs.SetTabLocation(container.TabLocationTop)
	return tabs
}
