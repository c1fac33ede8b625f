package importer

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ImportOBJ reads a Wavefront OBJ file. Only geometry is used: "v" lines
// become vertices and "f" lines become triangles, with quads and larger
// polygons fan-triangulated around their first vertex. Texture/normal
// references inside face elements (v/vt/vn) are ignored, as are groups,
// materials, and free-form geometry.
func ImportOBJ(path string) ImportResult {
	result := ImportResult{}

	f, err := os.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open OBJ file: %v", err))
		return result
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("line %d: vertex needs 3 coordinates", lineNum))
				continue
			}
			var coords [3]float64
			ok := true
			for i := 0; i < 3; i++ {
				coords[i], err = strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					result.Errors = append(result.Errors,
						fmt.Sprintf("line %d: bad coordinate %q", lineNum, fields[i+1]))
					ok = false
					break
				}
			}
			if ok {
				result.Vertices = append(result.Vertices, coords)
			}

		case "f":
			if len(fields) < 4 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d: skipped face with fewer than 3 vertices", lineNum))
				continue
			}
			indices := make([]int, 0, len(fields)-1)
			ok := true
			for _, fld := range fields[1:] {
				idx, err := parseFaceIndex(fld, len(result.Vertices))
				if err != nil {
					result.Errors = append(result.Errors,
						fmt.Sprintf("line %d: %v", lineNum, err))
					ok = false
					break
				}
				indices = append(indices, idx)
			}
			if !ok {
				continue
			}
			// Fan triangulation preserves winding for convex faces.
			for i := 1; i < len(indices)-1; i++ {
				result.Triangles = append(result.Triangles,
					[3]int{indices[0], indices[i], indices[i+1]})
			}

		default:
			// vt, vn, g, o, s, mtllib, usemtl and friends carry no
			// geometry we need.
		}
	}
	if err := scanner.Err(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("read error: %v", err))
		return result
	}

	if len(result.Vertices) == 0 {
		result.Errors = append(result.Errors, "OBJ file contains no vertices")
	}
	if len(result.Triangles) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "OBJ file contains no faces")
	}
	return result
}

// parseFaceIndex resolves one face element ("7", "7/2", "7/2/3", "7//3" or
// a negative relative index) to a zero-based vertex index.
func parseFaceIndex(field string, numVertices int) (int, error) {
	vertPart := field
	if slash := strings.IndexByte(field, '/'); slash >= 0 {
		vertPart = field[:slash]
	}
	idx, err := strconv.Atoi(vertPart)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", field)
	}
	if idx < 0 {
		idx = numVertices + idx // relative to the vertices seen so far
	} else {
		idx-- // OBJ indices are 1-based
	}
	if idx < 0 || idx >= numVertices {
		return 0, fmt.Errorf("face index %q out of range", field)
	}
	return idx, nil
}
