// unfold: surface unfolding for manufacturing patterns
//
// Reads a triangle mesh (OBJ or JSON), solves for a flat 2D pattern,
// analyzes distortion against tolerance, and writes manufacturing
// artifacts (DXF, PDF, labels, xlsx report, distortion histogram).
//
// Build:
//   go build -o unfold ./cmd/unfold
//
// Examples:
//   unfold -in panel.obj -out pattern
//   unfold -in hull.obj -out hull -method lscm -tolerance 0.002 \
//          -pin 0:0:0 -pin 14:120:0 -fold 3:27 -formats dxf,pdf,xlsx
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/meshfab/unfold/internal/config"
	"github.com/meshfab/unfold/internal/export"
	"github.com/meshfab/unfold/internal/importer"
	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/pipeline"
	"github.com/meshfab/unfold/internal/solver"
)

// multiFlag collects repeated occurrences of a string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "unfold: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var pins, folds multiFlag

	in := flag.String("in", "", "input mesh file (.obj or .json)")
	out := flag.String("out", "pattern", "output basename for generated files")
	method := flag.String("method", "", "solver method: lscm or grid (default from config)")
	tolerance := flag.Float64("tolerance", 0, "relative distortion tolerance (default from config)")
	policy := flag.String("policy", "", "disconnected mesh policy: strict or largest (default from config)")
	formats := flag.String("formats", "dxf,pdf", "comma-separated outputs: dxf,pdf,labels,xlsx,png,json")
	gate := flag.Bool("gate", false, "exit nonzero when distortion exceeds tolerance")
	maxIter := flag.Int("max-iterations", 0, "solver iteration cap (0 = automatic)")
	margin := flag.Float64("margin", -1, "material margin in mm (default from config)")
	noStraighten := flag.Bool("no-straighten", false, "keep fold lines on mesh edges instead of straightening")
	configPath := flag.String("config", config.DefaultConfigPath(), "settings file")
	saveConfig := flag.Bool("save-config", false, "persist the effective settings back to the config file")
	flag.Var(&pins, "pin", "pin constraint as vertex:u:v (repeatable)")
	flag.Var(&folds, "fold", "fold line as sourceVertex:targetVertex (repeatable)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required -in flag")
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("cannot load config %s: %w", *configPath, err)
	}
	applyFlags(&settings, *method, *tolerance, *policy, *maxIter, *margin, *noStraighten)
	if err := checkSettings(settings); err != nil {
		return err
	}

	if *saveConfig {
		if err := config.Save(*configPath, settings); err != nil {
			return fmt.Errorf("cannot save config: %w", err)
		}
	}

	constraints, err := parsePins(pins)
	if err != nil {
		return err
	}
	foldSpecs, err := parseFolds(folds)
	if err != nil {
		return err
	}

	imported := importer.Import(*in)
	for _, w := range imported.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !imported.OK() {
		return fmt.Errorf("import failed: %s", strings.Join(imported.Errors, "; "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := pipeline.New(settings)
	res, err := u.Unfold(ctx, imported.Vertices, imported.Triangles, constraints, foldSpecs)
	if err != nil {
		return err
	}

	printSummary(res)

	if err := writeOutputs(*out, *formats, res); err != nil {
		return err
	}

	if *gate && !res.Distortion.Acceptable {
		return fmt.Errorf("distortion gate failed: max %.4f deg exceeds threshold %.4f deg",
			res.Distortion.MaxAngleDistortion, res.Distortion.ThresholdDeg)
	}
	return nil
}

// applyFlags overlays command-line values onto the loaded settings. Only
// flags the user actually set override the config file.
func applyFlags(s *pipeline.Settings, method string, tolerance float64, policy string, maxIter int, margin float64, noStraighten bool) {
	if method != "" {
		s.Method = pipeline.Method(method)
	}
	if tolerance > 0 {
		s.Tolerance = tolerance
	}
	if policy != "" {
		s.ComponentPolicy = mesh.ComponentPolicy(policy)
	}
	if maxIter > 0 {
		s.MaxIterations = maxIter
	}
	if margin >= 0 {
		s.MaterialMargin = margin
	}
	if noStraighten {
		s.Straighten = false
	}
}

func checkSettings(s pipeline.Settings) error {
	switch s.Method {
	case pipeline.MethodLSCM, pipeline.MethodGrid:
	default:
		return fmt.Errorf("unknown method %q (want lscm or grid)", s.Method)
	}
	switch s.ComponentPolicy {
	case mesh.PolicyStrict, mesh.PolicyLargest:
	default:
		return fmt.Errorf("unknown policy %q (want strict or largest)", s.ComponentPolicy)
	}
	return nil
}

// parsePins parses repeated vertex:u:v specs.
func parsePins(specs []string) ([]solver.Constraint, error) {
	pins := make([]solver.Constraint, 0, len(specs))
	for _, s := range specs {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed -pin %q (want vertex:u:v)", s)
		}
		vertex, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("malformed -pin %q: %v", s, err)
		}
		u, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed -pin %q: %v", s, err)
		}
		v, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed -pin %q: %v", s, err)
		}
		pins = append(pins, solver.Constraint{Vertex: vertex, U: u, V: v})
	}
	return pins, nil
}

// parseFolds parses repeated source:target specs.
func parseFolds(specs []string) ([]pipeline.FoldSpec, error) {
	folds := make([]pipeline.FoldSpec, 0, len(specs))
	for _, s := range specs {
		parts := strings.Split(s, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed -fold %q (want source:target)", s)
		}
		source, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("malformed -fold %q: %v", s, err)
		}
		target, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("malformed -fold %q: %v", s, err)
		}
		folds = append(folds, pipeline.FoldSpec{Source: source, Target: target})
	}
	return folds, nil
}

func printSummary(res *pipeline.Result) {
	d := res.Distortion
	b := res.Manufacturing.MaterialBounds
	verdict := "REJECTED"
	if d.Acceptable {
		verdict = "OK"
	}
	fmt.Printf("pattern %s: %s\n", res.PatternID, verdict)
	fmt.Printf("  solver       %s (%d iterations, residual %.3g)\n",
		res.Diagnostics.Method, res.Diagnostics.Iterations, res.Diagnostics.Residual)
	fmt.Printf("  distortion   max %.4f deg, mean %.4f deg (threshold %.4f deg, %.1f%% over)\n",
		d.MaxAngleDistortion, d.MeanAngleDistortion, d.ThresholdDeg, d.ExceededPercent)
	fmt.Printf("  area ratio   %.4f / %.4f / %.4f (min/mean/max)\n",
		d.AreaRatio.Min, d.AreaRatio.Mean, d.AreaRatio.Max)
	fmt.Printf("  material     %.1f x %.1f mm\n", b.Width, b.Height)
	if res.DiscardedTriangles > 0 {
		fmt.Printf("  discarded    %d vertices, %d triangles (largest-component policy)\n",
			res.DiscardedVertices, res.DiscardedTriangles)
	}
}

// writeOutputs writes one file per requested format, named <out>.<ext>.
func writeOutputs(out, formats string, res *pipeline.Result) error {
	var errs []error
	for _, format := range strings.Split(formats, ",") {
		format = strings.TrimSpace(format)
		if format == "" {
			continue
		}
		var err error
		var path string
		switch format {
		case "dxf":
			path = out + ".dxf"
			err = export.ExportDXF(path, res)
		case "pdf":
			path = out + ".pdf"
			err = export.ExportPDF(path, res)
		case "labels":
			path = out + "-labels.pdf"
			err = export.ExportLabels(path, []*pipeline.Result{res})
		case "xlsx":
			path = out + ".xlsx"
			err = export.ExportReport(path, res)
		case "png":
			path = out + ".png"
			err = export.ExportHistogram(path, res)
		case "json":
			path = out + ".json"
			err = writeJSON(path, res)
		default:
			err = fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", format, err))
			continue
		}
		fmt.Printf("  wrote        %s\n", path)
	}
	return errors.Join(errs...)
}

func writeJSON(path string, res *pipeline.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
