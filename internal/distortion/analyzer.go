// Package distortion quantifies how far a UV unfolding deviates from the
// source surface. The report it produces is the manufacturing go/no-go
// signal: exceeding tolerance is a normal, reportable outcome that the
// caller decides on, never an error.
package distortion

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/solver"
)

// TriangleMetric holds the per-triangle comparison between 3D and UV space.
type TriangleMetric struct {
	Triangle        int     `json:"triangle"`
	AngleDistortion float64 `json:"angle_distortion_deg"` // max |Δangle| across the three corners
	AreaRatio       float64 `json:"area_ratio"`           // UV area / 3D area
}

// AreaRatioStats aggregates the per-triangle area ratios. On developable
// regions the ratio sits at ≈1.0 after solver scale normalization.
type AreaRatioStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Report is the full distortion analysis of one unfolding.
type Report struct {
	Triangles []TriangleMetric `json:"triangles"`

	MaxAngleDistortion  float64        `json:"max_angle_distortion_deg"`
	MeanAngleDistortion float64        `json:"mean_angle_distortion_deg"`
	AreaRatio           AreaRatioStats `json:"area_ratio_stats"`

	// Tolerance is the caller-supplied relative deviation target;
	// ThresholdDeg is its angle-space equivalent (tolerance × 90°) that
	// ExceededPercent and Acceptable are gated on.
	Tolerance       float64 `json:"tolerance"`
	ThresholdDeg    float64 `json:"threshold_deg"`
	ExceededPercent float64 `json:"exceeded_percent"`
	Acceptable      bool    `json:"acceptable"`
}

// Analyze compares every triangle's interior angles and area between 3D and
// UV space and aggregates the result into the acceptability report.
func Analyze(m *mesh.ValidatedMesh, uv *solver.UVResult, tolerance float64) *Report {
	r := &Report{
		Triangles:    make([]TriangleMetric, m.NumTriangles()),
		Tolerance:    tolerance,
		ThresholdDeg: tolerance * 90,
	}

	angleDistortions := make([]float64, m.NumTriangles())
	areaRatios := make([]float64, m.NumTriangles())
	exceeded := 0

	for t := 0; t < m.NumTriangles(); t++ {
		tri := m.Triangle(t)
		a3 := triangleAngles3D(m.Vertex(tri[0]), m.Vertex(tri[1]), m.Vertex(tri[2]))
		a2 := triangleAnglesUV(uv.UV[tri[0]], uv.UV[tri[1]], uv.UV[tri[2]])

		maxDiff := 0.0
		for i := 0; i < 3; i++ {
			if d := math.Abs(a3[i]-a2[i]) * 180 / math.Pi; d > maxDiff {
				maxDiff = d
			}
		}

		uvArea := mesh.TriangleArea2D(uv.UV[tri[0]], uv.UV[tri[1]], uv.UV[tri[2]])
		ratio := uvArea / m.TriangleArea(t)

		r.Triangles[t] = TriangleMetric{Triangle: t, AngleDistortion: maxDiff, AreaRatio: ratio}
		angleDistortions[t] = maxDiff
		areaRatios[t] = ratio
		if maxDiff > r.ThresholdDeg {
			exceeded++
		}
	}

	r.MaxAngleDistortion = floats.Max(angleDistortions)
	r.MeanAngleDistortion = stat.Mean(angleDistortions, nil)
	r.AreaRatio = AreaRatioStats{
		Min:  floats.Min(areaRatios),
		Max:  floats.Max(areaRatios),
		Mean: stat.Mean(areaRatios, nil),
	}
	r.ExceededPercent = 100 * float64(exceeded) / float64(len(angleDistortions))
	r.Acceptable = !math.IsNaN(r.MaxAngleDistortion) && r.MaxAngleDistortion <= r.ThresholdDeg

	return r
}

// triangleAngles3D returns the interior angles at vertices a, b, c.
func triangleAngles3D(a, b, c mesh.Vec3) [3]float64 {
	return anglesFromLengths(b.Dist(c), c.Dist(a), a.Dist(b))
}

func triangleAnglesUV(a, b, c mesh.Vec2) [3]float64 {
	return anglesFromLengths(b.Dist(c), c.Dist(a), a.Dist(b))
}

// anglesFromLengths applies the law of cosines; la is the side opposite the
// first angle, and so on.
func anglesFromLengths(la, lb, lc float64) [3]float64 {
	return [3]float64{
		acosClamped((lb*lb + lc*lc - la*la) / (2 * lb * lc)),
		acosClamped((la*la + lc*lc - lb*lb) / (2 * la * lc)),
		acosClamped((la*la + lb*lb - lc*lc) / (2 * la * lb)),
	}
}

func acosClamped(x float64) float64 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return math.Acos(x)
}
