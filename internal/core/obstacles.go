package core

import "fmt"

// TimedPoint is a position reached at time T.
type TimedPoint struct {
	Point
	T float64
}

// Obstacle is a disc moving along a piecewise-linear trajectory.
// It sits at its first point until the first timestamp and stays at its last point forever.
type Obstacle struct {
	ID        string
	Size      float64
	Waypoints []TimedPoint
}

// Radius returns the obstacle's disc radius, falling back to DefaultAgentSize.
func (o Obstacle) Radius() float64 {
	if o.Size > 0 {
		return o.Size
	}
	return DefaultAgentSize
}

// Sections converts the waypoints into sections, including the initial wait
// from time 0 when the first timestamp is later.
func (o Obstacle) Sections() Trajectory {
	if len(o.Waypoints) == 0 {
		return nil
	}
	var tr Trajectory
	first := o.Waypoints[0]
	if first.T > 0 {
		tr = append(tr, Section{From: first.Point, To: first.Point, T0: 0, T1: first.T})
	}
	for k := 1; k < len(o.Waypoints); k++ {
		prev, next := o.Waypoints[k-1], o.Waypoints[k]
		tr = append(tr, Section{From: prev.Point, To: next.Point, T0: prev.T, T1: next.T})
	}
	return tr
}

// Final returns the point the obstacle rests at forever, and when it gets there.
func (o Obstacle) Final() (Point, float64) {
	last := o.Waypoints[len(o.Waypoints)-1]
	return last.Point, last.T
}

// DynamicObstacles is the set of moving obstacles known before planning.
type DynamicObstacles struct {
	Obstacles []Obstacle
}

// Validate checks that every obstacle has waypoints with non-decreasing, non-negative times.
func (d *DynamicObstacles) Validate() error {
	if d == nil {
		return nil
	}
	for _, o := range d.Obstacles {
		if len(o.Waypoints) == 0 {
			return fmt.Errorf("obstacle %q: no waypoints", o.ID)
		}
		prev := 0.0
		for k, w := range o.Waypoints {
			if w.T < prev {
				return fmt.Errorf("obstacle %q: waypoint %d time %v before %v", o.ID, k, w.T, prev)
			}
			prev = w.T
		}
	}
	return nil
}
