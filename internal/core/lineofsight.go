package core

import (
	"math"
	"sort"
)

// SweptCell is a cell touched by a moving disc, with the fractions of the
// segment at which the disc enters and leaves the cell square.
type SweptCell struct {
	Cell
	In, Out float64
}

// minTouch is the radius used for point agents, so cells sharing only an
// edge or a corner with the segment still count as touched.
const minTouch = 1e-9

// SweptCells returns every cell whose unit square overlaps the disc of the given
// radius while its center moves from a to b. Touching at exactly the radius is
// not an overlap. Results are ordered by entry fraction, then row, then column.
func SweptCells(a, b Point, radius float64) []SweptCell {
	r := math.Max(radius-Epsilon, minTouch)

	iLo := int(math.Ceil(math.Min(a.I, b.I) - r - 0.5))
	iHi := int(math.Floor(math.Max(a.I, b.I) + r + 0.5))
	jLo := int(math.Ceil(math.Min(a.J, b.J) - r - 0.5))
	jHi := int(math.Floor(math.Max(a.J, b.J) + r + 0.5))

	var cells []SweptCell
	for i := iLo; i <= iHi; i++ {
		for j := jLo; j <= jHi; j++ {
			in, out, ok := clipRoundedSquare(a, b, float64(i), float64(j), r)
			if !ok {
				continue
			}
			cells = append(cells, SweptCell{Cell: Cell{i, j}, In: in, Out: out})
		}
	}
	sort.Slice(cells, func(x, y int) bool {
		if cells[x].In != cells[y].In {
			return cells[x].In < cells[y].In
		}
		if cells[x].I != cells[y].I {
			return cells[x].I < cells[y].I
		}
		return cells[x].J < cells[y].J
	})
	return cells
}

// clipRoundedSquare clips segment a->b against the unit square centered at
// (ci, cj) grown by r. The grown square is convex, so the clip is the hull of
// the clips against its two expanded boxes and four corner discs.
func clipRoundedSquare(a, b Point, ci, cj, r float64) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	merge := func(t0, t1 float64, ok bool) {
		if !ok {
			return
		}
		lo = math.Min(lo, t0)
		hi = math.Max(hi, t1)
	}

	merge(clipBox(a, b, ci-0.5-r, ci+0.5+r, cj-0.5, cj+0.5))
	merge(clipBox(a, b, ci-0.5, ci+0.5, cj-0.5-r, cj+0.5+r))
	for _, di := range []float64{-0.5, 0.5} {
		for _, dj := range []float64{-0.5, 0.5} {
			merge(clipDisc(a, b, Point{ci + di, cj + dj}, r))
		}
	}
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// clipBox is the slab clip of a->b, t in [0, 1], against an axis-aligned box.
func clipBox(a, b Point, iMin, iMax, jMin, jMax float64) (float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	slab := func(p, d, min, max float64) bool {
		if d == 0 {
			return p >= min && p <= max
		}
		u0, u1 := (min-p)/d, (max-p)/d
		if u0 > u1 {
			u0, u1 = u1, u0
		}
		t0 = math.Max(t0, u0)
		t1 = math.Min(t1, u1)
		return t0 <= t1
	}
	if !slab(a.I, b.I-a.I, iMin, iMax) || !slab(a.J, b.J-a.J, jMin, jMax) {
		return 0, 0, false
	}
	return t0, t1, true
}

// clipDisc clips a->b, t in [0, 1], against a closed disc.
func clipDisc(a, b, c Point, r float64) (float64, float64, bool) {
	di, dj := b.I-a.I, b.J-a.J
	fi, fj := a.I-c.I, a.J-c.J
	qa := di*di + dj*dj
	qc := fi*fi + fj*fj - r*r
	if qa == 0 {
		if qc <= 0 {
			return 0, 1, true
		}
		return 0, 0, false
	}
	qb := 2 * (fi*di + fj*dj)
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	t0 := math.Max((-qb-sq)/(2*qa), 0)
	t1 := math.Min((-qb+sq)/(2*qa), 1)
	if t0 > t1 {
		return 0, 0, false
	}
	return t0, t1, true
}

// LineOfSight reports whether a disc of the given radius can move straight from
// a to b touching only in-bounds traversable cells.
func (g *Grid) LineOfSight(a, b Cell, radius float64) bool {
	for _, sc := range SweptCells(a.Center(), b.Center(), radius) {
		if !g.Traversable(sc.I, sc.J) {
			return false
		}
	}
	return true
}
