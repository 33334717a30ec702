package rules

import "minigolf/internal/course"

// ProjectedTarget extends the shot from from in the direction of to by
// exactly allowed cells per axis.
func ProjectedTarget(from, to course.Coord, allowed int) course.Coord {
	d := to.Sub(from)
	return from.Add(course.Coord{X: sign(d.X) * allowed, Y: sign(d.Y) * allowed})
}

// FlightPath returns the cells crossed by the segment joining the centres of
// from and to, excluding from itself. When the segment passes exactly through
// a cell corner both cells sharing that corner are included. Cells are not
// bounds-checked.
func FlightPath(from, to course.Coord) []course.Coord {
	d := to.Sub(from)
	nx, ny := abs(d.X), abs(d.Y)
	sx, sy := sign(d.X), sign(d.Y)

	path := make([]course.Coord, 0, nx+ny)
	p := from
	for ix, iy := 0, 0; ix < nx || iy < ny; {
		// Compare (ix+0.5)/nx with (iy+0.5)/ny without dividing.
		decision := (1+2*ix)*ny - (1+2*iy)*nx
		switch {
		case decision == 0:
			path = append(path,
				course.Coord{X: p.X + sx, Y: p.Y},
				course.Coord{X: p.X, Y: p.Y + sy},
			)
			p.X += sx
			p.Y += sy
			ix++
			iy++
		case decision < 0:
			p.X += sx
			ix++
		default:
			p.Y += sy
			iy++
		}
		path = append(path, p)
	}
	return path
}
