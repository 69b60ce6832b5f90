package segmentation

import (
	"context"
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
	"gorgonia.org/tensor"

	"go.viam.com/navviz/rimage"
)

type recordingGenerator struct {
	got   image.Image
	masks []Mask
}

func (g *recordingGenerator) Generate(ctx context.Context, img image.Image) ([]Mask, error) {
	g.got = img
	return g.masks, nil
}

func TestGenerateMasks(t *testing.T) {
	gen := &recordingGenerator{masks: []Mask{rectMask(2, 2, image.Rect(0, 0, 1, 1))}}
	obs := tensor.New(tensor.WithShape(3, 2, 2), tensor.WithBacking([]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}))
	masks, err := GenerateMasks(context.Background(), gen, obs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, masks, test.ShouldResemble, gen.masks)

	img := rimage.ToNRGBA(gen.got)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 2))
	test.That(t, img.NRGBAAt(0, 0), test.ShouldResemble, color.NRGBA{R: 255, A: 255})
	test.That(t, img.NRGBAAt(1, 0), test.ShouldResemble, color.NRGBA{G: 255, A: 255})
	test.That(t, img.NRGBAAt(0, 1), test.ShouldResemble, color.NRGBA{B: 255, A: 255})
	test.That(t, img.NRGBAAt(1, 1), test.ShouldResemble, color.NRGBA{A: 255})

	gen.got = nil
	_, err = GenerateMasks(context.Background(), gen, tensor.New(tensor.WithShape(2, 2), tensor.WithBacking(make([]float32, 4))))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, gen.got, test.ShouldBeNil)
}

func TestGeneratorRegistry(t *testing.T) {
	fn := func(ctx context.Context, attrs Attributes) (Generator, error) {
		return &recordingGenerator{}, nil
	}
	name := "recording"
	// no constructor
	test.That(t, func() { RegisterGenerator(name, Registration{}) }, test.ShouldPanic)
	// success
	RegisterGenerator(name, Registration{Constructor: fn})
	reg, err := GeneratorLookup(name)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, reg.Constructor, test.ShouldNotBeNil)

	gen, err := NewGenerator(context.Background(), name, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gen, test.ShouldHaveSameTypeAs, &recordingGenerator{})

	_, err = GeneratorLookup("z")
	test.That(t, err.Error(), test.ShouldContainSubstring, "no Generator with name")
	_, err = NewGenerator(context.Background(), "z", nil)
	test.That(t, err, test.ShouldNotBeNil)
	// duplicate
	test.That(t, func() { RegisterGenerator(name, Registration{Constructor: fn}) }, test.ShouldPanic)

	registered := RegisteredGenerators()
	test.That(t, registered, test.ShouldContainKey, name)
	test.That(t, registered, test.ShouldContainKey, KMeansName)
	test.That(t, registered[KMeansName].Parameters, test.ShouldResemble, []string{"k", "max_samples", "min_area"})
}

func TestJSONTags(t *testing.T) {
	params := struct {
		VariableOne int    `json:"int_var"`
		VariableTwo string `json:"string_var,omitempty"`
		Skipped     bool   `json:"-"`
		Untagged    bool
	}{}
	test.That(t, JSONTags(params), test.ShouldResemble, []string{"int_var", "string_var"})
	test.That(t, JSONTags(&params), test.ShouldResemble, []string{"int_var", "string_var"})
}
