// Package solver defines the contract shared by the unfolding solvers: the
// pinned-vertex constraint, the UV result with diagnostics, and the solver
// error taxonomy. The LSCM and simple-grid solvers both produce a UVResult
// and both feed the same distortion analyzer.
package solver

import (
	"fmt"

	"github.com/meshfab/unfold/internal/mesh"
)

// Constraint pins a vertex to a fixed UV position, removing the
// rotation/translation/scale ambiguity of a conformal map.
type Constraint struct {
	Vertex int     `json:"vertex"`
	U      float64 `json:"u"`
	V      float64 `json:"v"`
}

// Diagnostics describes how a solve went. Iterations is zero for direct
// (non-iterative) methods.
type Diagnostics struct {
	Method            string  `json:"method"`
	Iterations        int     `json:"iterations"`
	Residual          float64 `json:"residual"`
	ConditionEstimate float64 `json:"condition_estimate"`
}

// UVResult holds one UV coordinate per vertex in the validated mesh's vertex
// buffer, plus solver diagnostics. Vertices orphaned by the
// largest-component policy map to (0,0). The result is immutable output of a
// single solve call.
type UVResult struct {
	UV          []mesh.Vec2 `json:"uv"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// SingularSystemError reports a numerically singular or rank-deficient
// system. The solvers return it instead of emitting NaN coordinates.
type SingularSystemError struct {
	Detail string
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("solver failed: singular_system (%s)", e.Detail)
}

// ConvergenceTimeoutError reports that the iterative solver hit its hard
// iteration cap before converging.
type ConvergenceTimeoutError struct {
	Iterations int
	Residual   float64
}

func (e *ConvergenceTimeoutError) Error() string {
	return fmt.Sprintf("solver failed: timeout after %d iterations (residual %.3g)", e.Iterations, e.Residual)
}
