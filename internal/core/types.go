// Package core defines domain models for AA-SIPP multi-agent planning.
package core

import "math"

// Cell is a grid cell addressed by row I and column J.
type Cell struct {
	I, J int
}

// Add returns the cell shifted by a relative move.
func (c Cell) Add(d Cell) Cell {
	return Cell{I: c.I + d.I, J: c.J + d.J}
}

// Point is a continuous planar position in cell units; cell (i, j) has its center at (i, j).
type Point struct {
	I, J float64
}

// Center returns the center of a cell.
func (c Cell) Center() Point {
	return Point{I: float64(c.I), J: float64(c.J)}
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.I-q.I, p.J-q.J)
}

// Lerp interpolates between p and q, alpha in [0, 1].
func (p Point) Lerp(q Point, alpha float64) Point {
	return Point{I: p.I + alpha*(q.I-p.I), J: p.J + alpha*(q.J-p.J)}
}

// Dist returns the Euclidean distance between the centers of two cells.
func Dist(a, b Cell) float64 {
	return math.Hypot(float64(a.I-b.I), float64(a.J-b.J))
}

// Heading returns the direction of travel from a to b in degrees, in [0, 360).
// Heading 0 points along +J, 90 along +I.
func Heading(a, b Cell) float64 {
	h := math.Atan2(float64(b.I-a.I), float64(b.J-a.J)) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

// HeadingDelta returns the smallest absolute angle between two headings, in [0, 180].
func HeadingDelta(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Epsilon for floating-point time and distance comparison.
const Epsilon = 1e-6

// Inf is an unbounded time.
var Inf = math.Inf(1)
