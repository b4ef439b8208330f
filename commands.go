package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ffmpeg-gui/config"
	"ffmpeg-gui/ffmpeg"
	"ffmpeg-gui/logging"
	"ffmpeg-gui/ui"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	ffmpegPath string
}

// env is the state shared by every subcommand once flags are parsed
type env struct {
	cfg *config.Config
	log zerolog.Logger
	ff  *ffmpeg.FFmpeg
}

func (o *rootOptions) load(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	format := cfg.LogFormat
	if o.logFormat != "" {
		format = o.logFormat
	}
	log, err := logging.New(logging.Config{Level: level, Format: format}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	override := cfg.FFmpegPath
	if o.ffmpegPath != "" {
		override = o.ffmpegPath
	}
	ff := ffmpeg.New(ffmpeg.Locate("ffmpeg", override), ffmpeg.WithLogger(log))

	return &env{cfg: cfg, log: log, ff: ff}, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ffmpeg-gui",
		Short: "Convert, extract audio from and resize videos with ffmpeg",
		Long: `ffmpeg-gui runs three fixed ffmpeg jobs: convert to another container,
extract the audio track, and resize. Without a subcommand it opens the desktop window.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			e.log.Debug().Str("ffmpeg", e.ff.Path()).Str("config", e.cfg.Path()).Msg("starting GUI")
			ui.NewApp(e.ff, e.cfg, e.log).Run()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is the user config dir)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: auto, console, json")
	flags.StringVar(&opts.ffmpegPath, "ffmpeg", "", "path to the ffmpeg binary")

	root.AddCommand(
		newOperationCmd(opts, ffmpeg.Convert, "convert INPUT", "Convert a video to another container format", "format", "mp4"),
		newOperationCmd(opts, ffmpeg.ExtractAudio, "extract-audio INPUT", "Extract the audio track at best quality", "format", "mp3"),
		newOperationCmd(opts, ffmpeg.Resize, "resize INPUT", "Scale a video to WIDTHxHEIGHT, writing INPUT_resized.mp4", "resolution", ""),
		newFormatsCmd(),
		newCheckCmd(opts),
	)

	return root
}

func newOperationCmd(opts *rootOptions, op ffmpeg.Operation, use, short, paramFlag, paramDefault string) *cobra.Command {
	var (
		param  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}

			req := ffmpeg.Request{InputPath: args[0], Operation: op, Parameter: param}
			if dryRun {
				line, err := e.ff.CommandLine(req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				return nil
			}

			msgs := op.Messages()
			fmt.Fprintln(cmd.ErrOrStderr(), msgs.Running)

			res := e.ff.Invoke(req)
			if !res.Success {
				if errors.Is(res.Err, ffmpeg.ErrToolNotFound) {
					return fmt.Errorf("%s %w", msgs.Failed, res.Err)
				}
				if res.Kind == ffmpeg.MissingInput {
					return res.Err
				}
				return fmt.Errorf("%s (exit code %d)", msgs.Failed, res.ExitCode)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", msgs.Done, res.Describe())
			return nil
		},
	}

	usage := "output format (" + strings.Join(op.Choices(), ", ") + ")"
	if op == ffmpeg.Resize {
		usage = "target resolution as WIDTHxHEIGHT, e.g. 1280x720"
	}
	cmd.Flags().StringVar(&param, paramFlag, paramDefault, usage)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the ffmpeg command instead of running it")

	return cmd
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List operations, their choices and output names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rows := make([]table.Row, 0, len(ffmpeg.Operations))
			for _, op := range ffmpeg.Operations {
				choices := strings.Join(op.Choices(), ", ")
				if choices == "" {
					choices = "WIDTHxHEIGHT"
				}

				sample := ffmpeg.Request{InputPath: "input.mov", Operation: op, Parameter: "{format}"}
				output, _ := ffmpeg.OutputPath(sample)
				rows = append(rows, table.Row{op.Messages().Title, choices, output})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(table.Row{"Operation", "Choices", "Output"}, rows))
		},
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether ffmpeg and ffprobe can be found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			override := cfg.FFmpegPath
			if opts.ffmpegPath != "" {
				override = opts.ffmpegPath
			}

			tools := ffmpeg.CheckTools(override)
			rows := make([]table.Row, 0, len(tools))
			missingRequired := false
			for _, t := range tools {
				state := "ok"
				if !t.Available {
					state = "missing"
					if t.Optional {
						state = "missing (optional)"
					} else {
						missingRequired = true
					}
				}
				rows = append(rows, table.Row{t.Name, state, t.Detail, t.Description})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(table.Row{"Tool", "Status", "Path", "Used for"}, rows))
			if missingRequired {
				return errors.New("ffmpeg not found; place it in the bin/ folder next to the executable or on PATH")
			}
			return nil
		},
	}
}
