package segmentation

import (
	"context"
	"image"
	"image/color"

	"github.com/go-viper/mapstructure/v2"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
)

// KMeansName is the registry name of the color clustering generator.
const KMeansName = "kmeans"

func init() {
	RegisterGenerator(KMeansName, Registration{
		Constructor: func(ctx context.Context, attrs Attributes) (Generator, error) {
			conf, err := DecodeKMeansConfig(attrs)
			if err != nil {
				return nil, err
			}
			return NewKMeansGenerator(conf)
		},
		Parameters: JSONTags(KMeansConfig{}),
	})
}

// KMeansConfig configures a KMeansGenerator.
type KMeansConfig struct {
	// K is the number of color clusters, and so the maximum number of masks.
	K int `json:"k"`
	// MaxSamples bounds how many pixels the clustering is fit on. Every pixel is still assigned.
	MaxSamples int `json:"max_samples"`
	// MinArea drops masks covering fewer pixels.
	MinArea int `json:"min_area"`
}

// DefaultKMeansConfig returns the configuration used for unset attributes.
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{K: 4, MaxSamples: 4096, MinArea: 1}
}

// DecodeKMeansConfig overlays attrs onto the default configuration.
func DecodeKMeansConfig(attrs Attributes) (KMeansConfig, error) {
	conf := DefaultKMeansConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return KMeansConfig{}, err
	}
	if err := decoder.Decode(map[string]interface{}(attrs)); err != nil {
		return KMeansConfig{}, errors.Wrap(err, "invalid kmeans attributes")
	}
	return conf, nil
}

// Validate checks the configuration.
func (conf KMeansConfig) Validate() error {
	if conf.K < 1 {
		return errors.Errorf("k must be at least 1, got %d", conf.K)
	}
	if conf.MaxSamples < 1 {
		return errors.Errorf("max_samples must be at least 1, got %d", conf.MaxSamples)
	}
	if conf.MinArea < 0 {
		return errors.Errorf("min_area cannot be negative, got %d", conf.MinArea)
	}
	return nil
}

// KMeansGenerator segments an image by clustering pixel colors. Each non-empty color cluster
// becomes one mask, so its masks never overlap.
type KMeansGenerator struct {
	conf KMeansConfig
}

// NewKMeansGenerator returns a generator for a validated configuration.
func NewKMeansGenerator(conf KMeansConfig) (*KMeansGenerator, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &KMeansGenerator{conf: conf}, nil
}

// pixelObservation is a pixel clustered by its color, with channels scaled to [0, 1].
type pixelObservation struct {
	pt  image.Point
	rgb clusters.Coordinates
}

func (p pixelObservation) Coordinates() clusters.Coordinates {
	return p.rgb
}

func (p pixelObservation) Distance(c clusters.Coordinates) float64 {
	return p.rgb.Distance(c)
}

// Generate implements Generator.
func (g *KMeansGenerator) Generate(ctx context.Context, img image.Image) ([]Mask, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("cannot segment an empty image")
	}

	pixels := make(clusters.Observations, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			pixels = append(pixels, pixelObservation{
				pt:  image.Pt(x, y),
				rgb: clusters.Coordinates{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255},
			})
		}
	}

	stride := (len(pixels) + g.conf.MaxSamples - 1) / g.conf.MaxSamples
	samples := make(clusters.Observations, 0, g.conf.MaxSamples)
	for i := 0; i < len(pixels); i += stride {
		samples = append(samples, pixels[i])
	}
	k := g.conf.K
	if k > len(samples) {
		k = len(samples)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	partition, err := kmeans.New().Partition(samples, k)
	if err != nil {
		return nil, errors.Wrap(err, "kmeans partition failed")
	}

	grids := make([][][]bool, len(partition))
	for i := range grids {
		grids[i] = make([][]bool, height)
		for y := range grids[i] {
			grids[i][y] = make([]bool, width)
		}
	}
	for _, obs := range pixels {
		p := obs.(pixelObservation)
		grids[partition.Nearest(p)][p.pt.Y][p.pt.X] = true
	}

	masks := make([]Mask, 0, len(grids))
	for _, grid := range grids {
		m := NewMask(grid)
		if m.Area == 0 || m.Area < g.conf.MinArea {
			continue
		}
		m.PredictedIOU = 1
		m.StabilityScore = 1
		masks = append(masks, m)
	}
	return SortByArea(masks), nil
}
