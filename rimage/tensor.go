package rimage

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gorgonia.org/tensor"

	"go.viam.com/navviz/utils"
)

type number interface {
	constraints.Integer | constraints.Float
}

func convertNumberSlice[T1, T2 number](t1 []T1) []T2 {
	t2 := make([]T2, len(t1))
	for i := range t1 {
		t2[i] = T2(t1[i])
	}
	return t2
}

// tensorUnitValues flattens t into float64 values in [0, 1]. Float tensors are taken as already
// normalized, uint8 tensors are divided by 255.
func tensorUnitValues(t *tensor.Dense) ([]float64, error) {
	if t.IsMaterializable() {
		materialized, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return nil, errors.New("couldn't materialize tensor view")
		}
		t = materialized
	}
	switch data := t.Data().(type) {
	case []float32:
		return convertNumberSlice[float32, float64](data), nil
	case []float64:
		return data, nil
	case []uint8:
		values := convertNumberSlice[uint8, float64](data)
		for i := range values {
			values[i] /= 255
		}
		return values, nil
	default:
		return nil, errors.Errorf("dont know how to convert tensor of %v into an image", t.Dtype())
	}
}

// chwDims returns the channel, height and width of a (C, H, W) or (1, C, H, W) shape.
func chwDims(shape tensor.Shape) (int, int, int, error) {
	dims := []int(shape)
	if len(dims) == 4 {
		if dims[0] != 1 {
			return 0, 0, 0, errors.Errorf("expected a batch of one image, got shape %v", shape)
		}
		dims = dims[1:]
	}
	if len(dims) != 3 {
		return 0, 0, 0, errors.Errorf("expected a (C, H, W) tensor, got shape %v", shape)
	}
	if dims[0] != 1 && dims[0] != 3 {
		return 0, 0, 0, errors.Errorf("expected 1 or 3 channels, got %d", dims[0])
	}
	return dims[0], dims[1], dims[2], nil
}

// CHWTensorToImage converts a normalized channel-first tensor of shape (C, H, W) or (1, C, H, W)
// into an 8-bit image. Single channel tensors become grayscale.
func CHWTensorToImage(t *tensor.Dense) (*image.NRGBA, error) {
	if t == nil {
		return nil, errors.New("nil tensor")
	}
	channels, height, width, err := chwDims(t.Shape())
	if err != nil {
		return nil, err
	}
	values, err := tensorUnitValues(t)
	if err != nil {
		return nil, err
	}
	plane := height * width
	if len(values) < channels*plane {
		return nil, errors.Errorf("tensor backing holds %d values, shape %v needs %d", len(values), t.Shape(), channels*plane)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			r := utils.UnitToUint8(values[idx])
			g, b := r, r
			if channels == 3 {
				g = utils.UnitToUint8(values[plane+idx])
				b = utils.UnitToUint8(values[2*plane+idx])
			}
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img, nil
}

// ImageToFloatTensor converts img into a (1, 3, H, W) float32 tensor with values in [0, 1].
// Channels are stored planar, so element (0, c, y, x) is channel c of the pixel at (x, y).
// Alpha is dropped.
func ImageToFloatTensor(img image.Image) *tensor.Dense {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	plane := width * height
	backing := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			idx := y*width + x
			backing[idx] = float32(c.R) / 255
			backing[plane+idx] = float32(c.G) / 255
			backing[2*plane+idx] = float32(c.B) / 255
		}
	}
	return tensor.New(tensor.WithShape(1, 3, height, width), tensor.WithBacking(backing))
}
