package cli

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// ConfigAction prints the effective pipeline configuration as JSON.
func ConfigAction(c *cli.Context) error {
	logger, done := newLogger(c)
	defer done()

	pipeline, err := loadPipeline(c)
	if err != nil {
		return err
	}
	logger.Debugw("loaded pipeline configuration", "path", c.String(configFlag))
	out, err := json.MarshalIndent(pipeline, "", "  ")
	if err != nil {
		return errors.Wrap(err, "couldn't marshal pipeline configuration")
	}
	printf(c.App.Writer, "%s", out)
	return nil
}
