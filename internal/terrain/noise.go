package terrain

import (
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"minigolf/internal/config"
)

const (
	// DefaultHeightScale is the feature size used for elevation samples.
	DefaultHeightScale = 250.0
	// DefaultTerrainScale is the finer feature size used for classification.
	DefaultTerrainScale = 15.0
)

// Source is a 2D coherent noise function returning values in [-1, 1].
type Source interface {
	Eval2(x, y float64) float64
}

// SourceFactory builds a Source for a seed.
type SourceFactory func(seed int64) Source

// SimplexSource returns OpenSimplex noise for seed.
func SimplexSource(seed int64) Source {
	return opensimplex.New(seed)
}

type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) Eval2(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

// PerlinSource returns classic Perlin noise for seed.
func PerlinSource(seed int64) Source {
	return perlinSource{p: perlin.NewPerlin(2, 2, 3, seed)}
}

// SourceFor resolves a configured backend name.
func SourceFor(backend string) (SourceFactory, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "simplex":
		return SimplexSource, nil
	case "perlin":
		return PerlinSource, nil
	default:
		return nil, fmt.Errorf("unknown noise backend %q", backend)
	}
}

// Field samples multi-octave noise at integer cell coordinates. Sampling is
// deterministic for a given seed; Reseed swaps the underlying source.
type Field struct {
	newSource   SourceFactory
	source      Source
	seed        int64
	octaves     int
	persistence float64
	lacunarity  float64
}

// NewField builds a field from terrain configuration. Zero octave settings
// fall back to 4 octaves, persistence 0.5 and lacunarity 2.
func NewField(cfg config.TerrainConfig, seed int64) (*Field, error) {
	factory, err := SourceFor(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return newField(factory, cfg, seed), nil
}

func newField(factory SourceFactory, cfg config.TerrainConfig, seed int64) *Field {
	f := &Field{
		newSource:   factory,
		octaves:     cfg.Octaves,
		persistence: cfg.Persistence,
		lacunarity:  cfg.Lacunarity,
	}
	if f.octaves <= 0 {
		f.octaves = 4
	}
	if f.persistence <= 0 {
		f.persistence = 0.5
	}
	if f.lacunarity <= 0 {
		f.lacunarity = 2
	}
	f.Reseed(seed)
	return f
}

// Seed returns the seed of the current source.
func (f *Field) Seed() int64 {
	return f.seed
}

// Reseed replaces the noise source so successive courses differ.
func (f *Field) Reseed(seed int64) {
	f.seed = seed
	f.source = f.newSource(seed)
}

// Sample returns the octave sum at (x, y) divided by scale, normalised by the
// total amplitude so the result stays within the source range.
func (f *Field) Sample(x, y int, scale float64) float64 {
	if scale == 0 {
		scale = DefaultHeightScale
	}
	amplitude := 1.0
	frequency := 1.0
	value := 0.0
	maxValue := 0.0

	for i := 0; i < f.octaves; i++ {
		value += amplitude * f.source.Eval2(float64(x)*frequency/scale, float64(y)*frequency/scale)
		maxValue += amplitude
		amplitude *= f.persistence
		frequency *= f.lacunarity
	}

	if maxValue == 0 {
		return 0
	}
	return value / maxValue
}
