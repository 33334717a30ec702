package terrain

import "minigolf/internal/course"

// Classify maps a noise height to a terrain category. Bands are checked from
// low to high and the first match wins; the top two bands both yield trees.
func Classify(height float64) course.Terrain {
	switch {
	case height < 0:
		return course.Rough
	case height < 0.2:
		return course.Fairway
	case height < 0.3:
		return course.Sand
	case height < 0.4:
		return course.Water
	case height < 0.5:
		return course.Trees
	default:
		return course.Trees
	}
}
