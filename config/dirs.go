package config

import (
	"go.uber.org/multierr"

	"go.viam.com/navviz/logging"
	"go.viam.com/navviz/utils"
)

// PrepareDirectories creates the image and latent directories, wiping the ones whose reset
// flag is set.
func (p Pipeline) PrepareDirectories(logger logging.Logger) error {
	var errs error
	for _, dir := range []struct {
		path  string
		reset bool
	}{
		{p.ImgDir, p.ResetImgDir},
		{p.LatentDir, p.ResetLatentDir},
	} {
		if dir.reset {
			logger.Infow("resetting directory", "dir", dir.path)
			errs = multierr.Append(errs, utils.ResetDir(dir.path))
			continue
		}
		logger.Debugw("ensuring directory", "dir", dir.path)
		errs = multierr.Append(errs, utils.EnsureDir(dir.path))
	}
	return errs
}
