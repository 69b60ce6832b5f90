package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/navviz/config"
	"go.viam.com/navviz/logging"
	"go.viam.com/navviz/rimage"
	"go.viam.com/navviz/trajplot"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	err := NewApp(out, errOut).Run(append([]string{"navviz"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

// twoToneImage is left half red, right half blue.
func twoToneImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := rimage.NewFilledNRGBA(16, 8, rimage.Red)
	for y := 0; y < 8; y++ {
		for x := 8; x < 16; x++ {
			img.SetNRGBA(x, y, rimage.Blue)
		}
	}
	path := filepath.Join(dir, name)
	test.That(t, rimage.WriteImageToFile(path, img), test.ShouldBeNil)
	return path
}

func TestConfigAction(t *testing.T) {
	out, err := runApp(t, "config")
	test.That(t, err, test.ShouldBeNil)
	var conf config.Pipeline
	test.That(t, json.Unmarshal([]byte(out), &conf), test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, config.Default())

	path := writeFile(t, t.TempDir(), "pipeline.json5", `{
		// overrides
		persistence_thresh: 3,
	}`)
	out, err = runApp(t, "--config", path, "config")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, json.Unmarshal([]byte(out), &conf), test.ShouldBeNil)
	test.That(t, conf.PersistenceThresh, test.ShouldEqual, 3)

	bad := writeFile(t, t.TempDir(), "bad.json5", `{persistence: 3}`)
	_, err = runApp(t, "--config", bad, "config")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCommandLoggerIsGlobal(t *testing.T) {
	prev := logging.Global()
	defer logging.ReplaceGlobal(prev)

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	test.That(t, NewApp(out, errOut).Run([]string{"navviz", "--debug", "config"}), test.ShouldBeNil)
	logging.Global().Debugw("after command", "key", "value")
	test.That(t, errOut.String(), test.ShouldContainSubstring, "after command")
}

func TestPlotAction(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "traj.json5", `{
		title: "episode 3",
		trajectories: [
			[[0, 0, 0], [1, 1, 0.5], [2, 0, 1]],
		],
		points: [[2, 2]],
		no_legend: true,
	}`)
	output := filepath.Join(dir, "plots", "traj.png")
	out, err := runApp(t, "plot", "--input", input, "--output", output, "--quiver-freq", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, output)

	img, err := rimage.ReadImageFromFile(output)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Empty(), test.ShouldBeFalse)

	mismatch := writeFile(t, dir, "mismatch.json5", `{
		trajectories: [[[0, 0], [1, 1]]],
		points: [[0, 1], [1, 0]],
		point_colors: ["#ff0000"],
		no_legend: true,
	}`)
	_, err = runApp(t, "plot", "--input", mismatch, "--output", filepath.Join(dir, "mismatch.png"))
	test.That(t, errors.Is(err, trajplot.ErrLengthMismatch), test.ShouldBeTrue)

	_, err = runApp(t, "plot", "--input", filepath.Join(dir, "missing.json5"), "--output", output)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlotInputOptions(t *testing.T) {
	freq := 0
	off := false
	in := &plotInput{
		Points:          [][]float64{{1, 2}},
		TrajColors:      []string{"#00ff00"},
		PointLabels:     []string{"start"},
		QuiverFreq:      &freq,
		DefaultColoring: &off,
	}
	opts, err := in.options()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.TrajColors, test.ShouldHaveLength, 1)
	test.That(t, rimage.Hex(opts.TrajColors[0]), test.ShouldEqual, "#00ff00")
	test.That(t, opts.PointLabels, test.ShouldResemble, []string{"start"})
	test.That(t, opts.TrajLabels, test.ShouldResemble, trajplot.DefaultOptions().TrajLabels)
	test.That(t, opts.QuiverFreq, test.ShouldEqual, 0)
	test.That(t, opts.DefaultColoring, test.ShouldBeFalse)

	points, err := in.points()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []trajplot.Point{{X: 1, Y: 2}})

	in.NoLegend = true
	opts, err = in.options()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.TrajLabels, test.ShouldBeNil)
	test.That(t, opts.PointLabels, test.ShouldBeNil)

	in.Points = [][]float64{{1, 2, 3}}
	_, err = in.points()
	test.That(t, err, test.ShouldNotBeNil)

	in.PointColors = []string{"not a color"}
	_, err = in.options()
	test.That(t, err.Error(), test.ShouldContainSubstring, "point_colors")
}

func TestMasksAction(t *testing.T) {
	dir := t.TempDir()
	input := twoToneImage(t, dir, "obs.png")
	output := filepath.Join(dir, "masks", "obs_masks.png")

	out, err := runApp(t, "masks", "--image", input, "--output", output, "--k", "2", "--stats")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Mask area mean:")

	img, err := rimage.ReadImageFromFile(output)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 256, 256))

	_, err = runApp(t, "masks", "--image", input, "--output", output, "--generator", "sam")
	test.That(t, err.Error(), test.ShouldContainSubstring, "sam")

	_, err = runApp(t, "masks", "--image", input, "--output", output, "--k", "0")
	test.That(t, err.Error(), test.ShouldContainSubstring, "k must be at least 1")
}

func TestPanelsAction(t *testing.T) {
	dir := t.TempDir()
	obs := twoToneImage(t, dir, "obs.png")
	goal := twoToneImage(t, dir, "goal.png")
	outputDir := filepath.Join(dir, "examples")
	runLog := filepath.Join(dir, "runs.jsonl")

	out, err := runApp(t, "panels",
		"--obs", obs, "--goal", goal,
		"--obs", obs, "--goal", goal,
		"--output-dir", outputDir, "--viz-freq", "1", "--run-log", runLog, "--k", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Logged run")

	for _, name := range []string{"maps_0.png", "maps_1.png"} {
		_, err := os.Stat(filepath.Join(outputDir, name))
		test.That(t, err, test.ShouldBeNil)
	}
	//nolint:gosec
	records, err := os.ReadFile(runLog)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bytes.Count(records, []byte("\n")), test.ShouldEqual, 2)

	_, err = runApp(t, "panels", "--obs", obs, "--goal", goal, "--goal", goal,
		"--output-dir", outputDir, "--run-log", runLog)
	test.That(t, err.Error(), test.ShouldContainSubstring, "1 observations but 2 goals")
}
