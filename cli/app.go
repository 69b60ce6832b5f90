// Package cli contains the navviz command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/navviz/config"
	"go.viam.com/navviz/logging"
)

const (
	// Global flags.
	configFlag  = "config"
	debugFlag   = "debug"
	logFileFlag = "log-file"

	plotFlagInput      = "input"
	plotFlagOutput     = "output"
	plotFlagQuiverFreq = "quiver-freq"
	plotFlagWidth      = "width"
	plotFlagHeight     = "height"
	plotFlagTitle      = "title"

	masksFlagImage     = "image"
	masksFlagOutput    = "output"
	masksFlagGenerator = "generator"
	masksFlagK         = "k"
	masksFlagStats     = "stats"

	panelsFlagObs         = "obs"
	panelsFlagGoal        = "goal"
	panelsFlagOutputDir   = "output-dir"
	panelsFlagVizFreq     = "viz-freq"
	panelsFlagRunLog      = "run-log"
	panelsFlagPrepareDirs = "prepare-dirs"
)

var app = &cli.App{
	Name:            "navviz",
	Usage:           "visualize navigation trajectories and segmentation masks",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "load pipeline configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  logFileFlag,
			Usage: "also write logs to a rotating `FILE`",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "plot",
			Usage:     "plot trajectories and points to an image",
			UsageText: fmt.Sprintf("navviz plot --%s <input> --%s <output> [other options]", plotFlagInput, plotFlagOutput),
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     plotFlagInput,
					Usage:    "JSON5 file holding trajectories, points and styling",
					Required: true,
				},
				&cli.PathFlag{
					Name:     plotFlagOutput,
					Usage:    "image to write, format taken from the extension",
					Required: true,
				},
				&cli.IntFlag{
					Name:  plotFlagQuiverFreq,
					Usage: "draw a heading arrow every N rows, 0 to disable; overrides the input file",
					Value: -1,
				},
				&cli.Float64Flag{
					Name:  plotFlagWidth,
					Usage: "figure width in inches",
					Value: 6,
				},
				&cli.Float64Flag{
					Name:  plotFlagHeight,
					Usage: "figure height in inches",
					Value: 6,
				},
				&cli.StringFlag{
					Name:  plotFlagTitle,
					Usage: "figure title; overrides the input file",
				},
			},
			Action: PlotAction,
		},
		{
			Name:      "masks",
			Usage:     "generate segmentation masks for an image and write the mask image",
			UsageText: fmt.Sprintf("navviz masks --%s <image> --%s <output> [other options]", masksFlagImage, masksFlagOutput),
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     masksFlagImage,
					Usage:    "input image",
					Required: true,
				},
				&cli.PathFlag{
					Name:     masksFlagOutput,
					Usage:    "mask image to write",
					Required: true,
				},
				&cli.StringFlag{
					Name:  masksFlagGenerator,
					Usage: "registered mask generator",
					Value: "kmeans",
				},
				&cli.IntFlag{
					Name:  masksFlagK,
					Usage: "number of clusters for the kmeans generator",
					Value: 4,
				},
				&cli.BoolFlag{
					Name:  masksFlagStats,
					Usage: "print mask area statistics",
				},
			},
			Action: MasksAction,
		},
		{
			Name:      "panels",
			Usage:     "log a diagnostic panel for an observation and goal image",
			UsageText: fmt.Sprintf("navviz panels --%s <image> --%s <image> [other options]", panelsFlagObs, panelsFlagGoal),
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     panelsFlagObs,
					Usage:    "observation image, repeat for a batch",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:     panelsFlagGoal,
					Usage:    "goal image, one per observation",
					Required: true,
				},
				&cli.PathFlag{
					Name:  panelsFlagOutputDir,
					Usage: "directory for the rendered figures",
					Value: "examples",
				},
				&cli.IntFlag{
					Name:  panelsFlagVizFreq,
					Usage: "render every Nth batch entry",
					Value: 10,
				},
				&cli.PathFlag{
					Name:  panelsFlagRunLog,
					Usage: "JSON lines file receiving the logged images",
					Value: "runs.jsonl",
				},
				&cli.StringFlag{
					Name:  masksFlagGenerator,
					Usage: "registered mask generator",
					Value: "kmeans",
				},
				&cli.IntFlag{
					Name:  masksFlagK,
					Usage: "number of clusters for the kmeans generator",
					Value: 4,
				},
				&cli.BoolFlag{
					Name:  panelsFlagPrepareDirs,
					Usage: "create or reset the pipeline image and latent directories first",
				},
			},
			Action: PanelsAction,
		},
		{
			Name:   "config",
			Usage:  "print the effective pipeline configuration",
			Action: ConfigAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// newLogger builds the command logger from the global flags and installs it as the global
// logger. Logs go to the app's error writer and, with --log-file, to a rotating file released
// by the returned func.
func newLogger(c *cli.Context) (logging.Logger, func()) {
	logger := logging.NewBlankLogger("navviz")
	errOut := c.App.ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}
	logger.AddAppender(logging.NewWriterAppender(errOut))
	if !c.Bool(debugFlag) {
		logger.SetLevel(logging.INFO)
	}
	logging.ReplaceGlobal(logger)

	path := c.String(logFileFlag)
	if path == "" {
		return logger, func() {}
	}
	appender, closer := logging.NewFileAppender(path)
	logger.AddAppender(appender)
	return logger, func() { goutils.UncheckedErrorFunc(closer.Close) }
}

// loadPipeline returns the pipeline configuration named by --config, or the defaults.
func loadPipeline(c *cli.Context) (config.Pipeline, error) {
	path := c.String(configFlag)
	if path == "" {
		return config.Default(), nil
	}
	return config.Read(path)
}
