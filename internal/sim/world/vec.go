package world

import "math"

// Vec2 is a position on the sector plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

func Dist(a, b Vec2) float64 { return a.Sub(b).Len() }

// HeadingTo is the angle of the vector from a to b, radians in (-pi, pi].
func HeadingTo(a, b Vec2) float64 { return math.Atan2(b.Y-a.Y, b.X-a.X) }

// turnToward rotates heading toward want by at most maxDelta, taking the
// short way around.
func turnToward(heading, want, maxDelta float64) float64 {
	d := normalizeAngle(want - heading)
	if math.Abs(d) <= maxDelta {
		return normalizeAngle(want)
	}
	if d > 0 {
		return normalizeAngle(heading + maxDelta)
	}
	return normalizeAngle(heading - maxDelta)
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// offsetRing returns a point on a circle of radius r around center, at the
// i-th of n evenly spaced positions.
func offsetRing(center Vec2, r float64, i, n int) Vec2 {
	if n <= 0 {
		n = 1
	}
	ang := 2 * math.Pi * float64(i) / float64(n)
	return Vec2{center.X + r*math.Cos(ang), center.Y + r*math.Sin(ang)}
}
