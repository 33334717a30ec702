package course

import "fmt"

// Terrain classifies a single course cell. Hole and Ball are placement
// overlays written over fairway cells once generation has classified the grid.
type Terrain uint8

const (
	Rough Terrain = iota
	Fairway
	Sand
	Water
	Trees
	Hole
	Ball
)

var terrainNames = [...]string{
	Rough:   "rough",
	Fairway: "fairway",
	Sand:    "sand",
	Water:   "water",
	Trees:   "trees",
	Hole:    "hole",
	Ball:    "ball",
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain(%d)", uint8(t))
}

// Valid reports whether t is one of the known categories.
func (t Terrain) Valid() bool {
	return int(t) < len(terrainNames)
}

// IsMarker reports whether t is a hole or ball overlay rather than a
// noise-derived category.
func (t Terrain) IsMarker() bool {
	return t == Hole || t == Ball
}

// Lie returns the terrain a ball resting on t is played from. Markers are
// only ever placed on fairway, so they play as fairway.
func (t Terrain) Lie() Terrain {
	if t.IsMarker() {
		return Fairway
	}
	return t
}

func (t Terrain) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown terrain %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Terrain) UnmarshalText(b []byte) error {
	parsed, err := ParseTerrain(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTerrain parses a textual terrain label.
func ParseTerrain(value string) (Terrain, error) {
	for i, name := range terrainNames {
		if name == value {
			return Terrain(i), nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", value)
}
