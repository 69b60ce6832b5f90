// Package config holds the pipeline switches and thresholds shared by the navigation training
// and preprocessing tools. A Pipeline is read once at startup and treated as read-only after.
package config

import (
	"math"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// SimThreshold is an inclusive [low, high] similarity range.
type SimThreshold [2]float64

// Contains reports whether v lies within the range.
func (st SimThreshold) Contains(v float64) bool {
	return v >= st[0] && v <= st[1]
}

// Pipeline toggles pipeline behaviors.
type Pipeline struct {
	// LoadWaypoints is true when training and false when preprocessing.
	LoadWaypoints   bool `json:"load_waypoints"`
	EnableIntervals bool `json:"enable_intervals"`

	ProcessSubgoals bool `json:"process_subgoals"`
	ProcessGoals    bool `json:"process_goals"`

	VisualizeDataset  bool `json:"visualize_dataset"`
	VisualizeSubgoals bool `json:"visualize_subgoals"`
	VisualizeSTL      bool `json:"visualize_stl"`
	VisualizeSim      bool `json:"visualize_sim"`

	ResetImgDir    bool `json:"reset_img_dir"`
	ResetLatentDir bool `json:"reset_latent_dir"`

	ImgDir    string `json:"img_dir"`
	LatentDir string `json:"latent_dir"`

	NumThresh         int          `json:"num_thresh"`
	PersistenceThresh int          `json:"persistence_thresh"`
	SimThresh         SimThreshold `json:"sim_thresh"`
}

// Default returns the stock pipeline configuration.
func Default() Pipeline {
	return Pipeline{
		LoadWaypoints:     true,
		EnableIntervals:   true,
		ProcessSubgoals:   false,
		ProcessGoals:      true,
		VisualizeDataset:  false,
		VisualizeSubgoals: false,
		VisualizeSTL:      false,
		VisualizeSim:      false,
		ResetImgDir:       true,
		ResetLatentDir:    false,
		ImgDir:            "./images",
		LatentDir:         "./latents",
		NumThresh:         1,
		PersistenceThresh: 10,
		SimThresh:         SimThreshold{0.1, 0.125},
	}
}

// Validate checks that the thresholds and directories are usable.
func (p Pipeline) Validate() error {
	if p.NumThresh < 0 {
		return errors.Errorf("num_thresh cannot be negative, got %d", p.NumThresh)
	}
	if p.PersistenceThresh < 0 {
		return errors.Errorf("persistence_thresh cannot be negative, got %d", p.PersistenceThresh)
	}
	if p.SimThresh[0] < 0 || p.SimThresh[0] > p.SimThresh[1] {
		return errors.Errorf("sim_thresh must be an ordered non-negative range, got %v", p.SimThresh)
	}
	if p.ImgDir == "" {
		return errors.New("img_dir is required")
	}
	if p.LatentDir == "" {
		return errors.New("latent_dir is required")
	}
	return nil
}

// Read loads a JSON5 file over the defaults. Keys missing from the file keep their default,
// unknown keys are an error.
func Read(path string) (Pipeline, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, errors.Wrapf(err, "couldn't read config %q", path)
	}
	return FromBytes(data)
}

// FromBytes parses JSON5 config contents over the defaults.
func FromBytes(data []byte) (Pipeline, error) {
	var attrs map[string]interface{}
	if err := json5.Unmarshal(data, &attrs); err != nil {
		return Pipeline{}, errors.Wrap(err, "couldn't parse config")
	}

	if err := checkRawAttributes(attrs); err != nil {
		return Pipeline{}, err
	}

	conf := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &conf,
		ErrorUnused: true,
	})
	if err != nil {
		return Pipeline{}, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return Pipeline{}, errors.Wrap(err, "invalid config")
	}
	if err := conf.Validate(); err != nil {
		return Pipeline{}, err
	}
	return conf, nil
}

// checkRawAttributes rejects values the decoder would otherwise truncate or merge with the
// defaults: sim_thresh must hold exactly two numbers and integer thresholds must be integral.
func checkRawAttributes(attrs map[string]interface{}) error {
	if raw, ok := attrs["sim_thresh"]; ok {
		vals, ok := raw.([]interface{})
		if !ok {
			return errors.Errorf("sim_thresh must be a [low, high] list, got %v", raw)
		}
		if len(vals) != 2 {
			return errors.Errorf("sim_thresh must have exactly 2 elements, got %d", len(vals))
		}
	}
	for _, key := range []string{"num_thresh", "persistence_thresh"} {
		raw, ok := attrs[key]
		if !ok {
			continue
		}
		if v, ok := raw.(float64); ok && v != math.Trunc(v) {
			return errors.Errorf("%s must be an integer, got %v", key, v)
		}
	}
	return nil
}
