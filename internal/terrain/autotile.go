package terrain

import "minigolf/internal/course"

// Neighbour weights. Diagonals never contribute.
const (
	maskTop    = 2
	maskLeft   = 8
	maskRight  = 16
	maskBottom = 64
)

// orientationByMask is deliberately partial: masks without an entry draw the
// single tile. 255 cannot occur with four neighbours but is kept in the table.
var orientationByMask = map[int]course.Orientation{
	0:   course.Single,
	2:   course.BottomCenter,
	8:   course.MiddleRight,
	10:  course.BottomRight,
	16:  course.MiddleLeft,
	18:  course.BottomLeft,
	24:  course.MiddleCenter,
	26:  course.MiddleCenter,
	64:  course.TopCenter,
	66:  course.MiddleCenter,
	72:  course.TopRight,
	74:  course.MiddleCenter,
	80:  course.TopLeft,
	82:  course.MiddleCenter,
	88:  course.MiddleCenter,
	90:  course.MiddleCenter,
	255: course.MiddleCenter,
}

// Bitmask sums the weights of the neighbours sharing terrain t.
func Bitmask(t course.Terrain, n course.Neighbors) int {
	mask := 0
	check := func(neighbor *course.Cell, weight int) {
		if neighbor != nil && neighbor.Terrain == t {
			mask += weight
		}
	}
	check(n.Top, maskTop)
	check(n.Left, maskLeft)
	check(n.Right, maskRight)
	check(n.Bottom, maskBottom)
	return mask
}

// Resolve picks the autotile orientation for a cell of terrain t.
func Resolve(t course.Terrain, n course.Neighbors) course.Orientation {
	if o, ok := orientationByMask[Bitmask(t, n)]; ok {
		return o
	}
	return course.Single
}
