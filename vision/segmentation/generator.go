package segmentation

import (
	"context"
	"image"
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorgonia.org/tensor"

	"go.viam.com/navviz/rimage"
)

// A Generator segments an 8-bit image into a set of masks.
type Generator interface {
	Generate(ctx context.Context, img image.Image) ([]Mask, error)
}

// GenerateMasks converts a normalized channel-first observation tensor to an 8-bit image and
// forwards it to gen.
func GenerateMasks(ctx context.Context, gen Generator, obs *tensor.Dense) ([]Mask, error) {
	img, err := rimage.CHWTensorToImage(obs)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't convert observation for mask generation")
	}
	return gen.Generate(ctx, img)
}

// Attributes are the free-form parameters a generator is constructed from.
type Attributes map[string]interface{}

// A CreateGenerator builds a generator from its attributes.
type CreateGenerator func(ctx context.Context, attrs Attributes) (Generator, error)

// Registration is a generator constructor plus the attribute names it understands.
type Registration struct {
	Constructor CreateGenerator
	Parameters  []string
}

var (
	registryMu        sync.RWMutex
	generatorRegistry = map[string]Registration{}
)

// RegisterGenerator registers a generator constructor under name. It panics on a nil
// constructor or a name that is already taken.
func RegisterGenerator(name string, reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, old := generatorRegistry[name]; old {
		panic(errors.Errorf("trying to register two generators with the same name: %s", name))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for generator: %s", name))
	}
	generatorRegistry[name] = reg
}

// GeneratorLookup returns the registration for name.
func GeneratorLookup(name string) (*Registration, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := generatorRegistry[name]
	if !ok {
		return nil, errors.Errorf("no Generator with name %q", name)
	}
	return &reg, nil
}

// RegisteredGenerators returns a copy of the registered generators.
func RegisteredGenerators() map[string]Registration {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return lo.Assign(generatorRegistry)
}

// NewGenerator looks up name and constructs it from attrs.
func NewGenerator(ctx context.Context, name string, attrs Attributes) (Generator, error) {
	reg, err := GeneratorLookup(name)
	if err != nil {
		return nil, err
	}
	return reg.Constructor(ctx, attrs)
}

// JSONTags returns the json tag names of the fields of a struct value.
func JSONTags(s interface{}) []string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	tags := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			tags = append(tags, name)
		}
	}
	return tags
}
