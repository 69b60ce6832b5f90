package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/navviz/diagnostics"
	"go.viam.com/navviz/rimage"
)

// PanelsAction generates masks for observation/goal image pairs and logs diagnostic panels to a
// run log.
func PanelsAction(c *cli.Context) error {
	logger, done := newLogger(c)
	defer done()

	obsPaths := c.StringSlice(panelsFlagObs)
	goalPaths := c.StringSlice(panelsFlagGoal)
	if len(obsPaths) != len(goalPaths) {
		return errors.Errorf("got %d observations but %d goals", len(obsPaths), len(goalPaths))
	}

	if c.Bool(panelsFlagPrepareDirs) {
		pipeline, err := loadPipeline(c)
		if err != nil {
			return err
		}
		if err := pipeline.PrepareDirectories(logger); err != nil {
			return err
		}
	}

	gen, err := newGenerator(c.Context, c.String(masksFlagGenerator), c.Int(masksFlagK))
	if err != nil {
		return err
	}
	batch := make([]diagnostics.PanelInput, 0, len(obsPaths))
	for i := range obsPaths {
		obsImg, obsMasks, err := generateMasks(c.Context, gen, obsPaths[i])
		if err != nil {
			return err
		}
		goalImg, goalMasks, err := generateMasks(c.Context, gen, goalPaths[i])
		if err != nil {
			return err
		}
		batch = append(batch, diagnostics.PanelInput{
			Obs:       rimage.ImageToFloatTensor(obsImg),
			Goal:      rimage.ImageToFloatTensor(goalImg),
			ObsMasks:  obsMasks,
			GoalMasks: goalMasks,
		})
	}

	conf := diagnostics.DefaultPanelConfig()
	conf.OutputDir = c.Path(panelsFlagOutputDir)
	conf.VizFreq = c.Int(panelsFlagVizFreq)

	sink := diagnostics.NewFileSink(c.Path(panelsFlagRunLog), logger.Sublogger("sink"))
	defer goutils.UncheckedErrorFunc(sink.Close)

	pl, err := diagnostics.NewPanelLogger(conf, sink, nil, logger)
	if err != nil {
		return err
	}
	if err := pl.LogSAMMaps(c.Context, batch); err != nil {
		return err
	}
	printf(c.App.Writer, "Logged run %s to %s", sink.RunID(), c.Path(panelsFlagRunLog))
	return nil
}
