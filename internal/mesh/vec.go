package mesh

import "math"

// Vec3 represents a 3D point or vector in model units (mm).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec2 represents a 2D point in the unfolded (UV) plane, same units as Vec3.
type Vec2 struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns the vector cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Norm() float64 { return math.Sqrt(a.Dot(a)) }

func (a Vec3) Dist(b Vec3) float64 { return a.Sub(b).Norm() }

// Normalize returns a unit-length copy, or the zero vector when a is
// (numerically) zero.
func (a Vec3) Normalize() Vec3 {
	n := a.Norm()
	if n == 0 {
		return Vec3{}
	}
	return a.Scale(1 / n)
}

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.U + b.U, a.V + b.V} }

func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.U - b.U, a.V - b.V} }

func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.U * s, a.V * s} }

func (a Vec2) Norm() float64 { return math.Hypot(a.U, a.V) }

func (a Vec2) Dist(b Vec2) float64 { return a.Sub(b).Norm() }

// TriangleArea3D returns the area of the 3D triangle (a, b, c).
func TriangleArea3D(a, b, c Vec3) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Norm()
}

// TriangleArea2D returns the unsigned area of the 2D triangle (a, b, c).
func TriangleArea2D(a, b, c Vec2) float64 {
	return 0.5 * math.Abs((b.U-a.U)*(c.V-a.V)-(c.U-a.U)*(b.V-a.V))
}
