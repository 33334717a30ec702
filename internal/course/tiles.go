package course

// Orientation is the autotile variant selected for a cell from the terrain of
// its orthogonal neighbours. It is presentation metadata only.
type Orientation uint8

const (
	Single Orientation = iota
	TopLeft
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

var orientationNames = [...]string{
	Single:       "single",
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	MiddleLeft:   "middle-left",
	MiddleCenter: "middle-center",
	MiddleRight:  "middle-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return "single"
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(b []byte) error {
	for i, name := range orientationNames {
		if name == string(b) {
			*o = Orientation(i)
			return nil
		}
	}
	*o = Single
	return nil
}

// Fixed tileset indices for categories that have no oriented variants.
const (
	TileHole  = 0
	TileBall  = 1
	TileTrees = 2
	TileRough = 3
)

// tileBlock lists the tileset indices of one oriented terrain, indexed by
// Orientation.
type tileBlock [10]int

var orientedTiles = map[Terrain]tileBlock{
	Fairway: {4, 9, 10, 11, 18, 19, 20, 27, 28, 29},
	Sand:    {5, 12, 13, 14, 21, 22, 23, 30, 31, 32},
	Water:   {6, 15, 16, 17, 24, 25, 26, 33, 34, 35},
}

// TileIndex returns the tileset index used to draw terrain t with orientation o.
func TileIndex(t Terrain, o Orientation) int {
	switch t {
	case Hole:
		return TileHole
	case Ball:
		return TileBall
	case Trees:
		return TileTrees
	case Rough:
		return TileRough
	}
	block, ok := orientedTiles[t]
	if !ok {
		return TileRough
	}
	if int(o) >= len(block) {
		o = Single
	}
	return block[o]
}
