// Command hemesh evaluates a mesh script, builds the half-edge and buffer
// forms of every mesh it defines, validates them and prints statistics.
//
// Usage:
//
//	hemesh [-v] [-json] [-cells N] [-render out.json] script.hemesh
//	hemesh [-v] [-json] -e '(icosahedron "ico" :edge 2)'
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/engine"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/kernel/sdfx"
	"github.com/chazu/hemesh/pkg/meshgeom"
	"github.com/chazu/hemesh/pkg/tessellate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errMeshFailed is returned when at least one mesh failed to build or
// validate. Its details have already been reported.
var errMeshFailed = errors.New("one or more meshes failed")

// MeshStats is the per-mesh report.
type MeshStats struct {
	Name           string     `json:"name"`
	Type           string     `json:"type,omitempty"`
	Vertices       int        `json:"vertices"`
	HalfEdges      int        `json:"halfEdges"`
	Edges          int        `json:"edges"`
	Faces          int        `json:"faces"`
	BoundaryCycles int        `json:"boundaryCycles"`
	Triangles      int        `json:"triangles"`
	Euler          int        `json:"euler"`
	Closed         bool       `json:"closed"`
	Area           float64    `json:"area"`
	Min            [3]float64 `json:"min"`
	Max            [3]float64 `json:"max"`
	Warnings       []string   `json:"warnings,omitempty"`
	Error          string     `json:"error,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errMeshFailed) {
			fmt.Fprintln(os.Stderr, "hemesh:", err)
		}
		os.Exit(1)
	}
}

// newLogger returns a console debug logger when verbose is set and a JSON
// warn-level logger otherwise, both writing to w.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if verbose {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel))
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.WarnLevel))
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hemesh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "verbose debug logging")
	asJSON := fs.Bool("json", false, "print statistics as JSON")
	inline := fs.String("e", "", "evaluate this script instead of reading a file")
	render := fs.String("render", "", "write the tessellated render meshes as JSON to this file")
	cells := fs.Int("cells", engine.DefaultSampleCells, "marching cubes resolution for sampled primitives")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source := *inline
	switch {
	case source != "" && fs.NArg() > 0:
		return errors.New("give either -e or a script file, not both")
	case source == "":
		if fs.NArg() != 1 {
			fs.Usage()
			return errors.New("expected one script file")
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			return err
		}
		source = string(b)
	}

	log := newLogger(stderr, *verbose)
	defer log.Sync() //nolint:errcheck
	opts := []config.Option{config.WithLogger(log)}

	eng := engine.NewEngine(
		engine.WithKernel(sdfx.New(sdfx.WithCells(*cells))),
		engine.WithConfig(opts...),
	)
	scene, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintln(stderr, "error:", e.Error())
		}
		return errMeshFailed
	}
	for _, w := range scene.Lint() {
		log.Warn("mesh lint", zap.String("mesh", w.Mesh), zap.String("message", w.Message))
	}

	stats := make([]MeshStats, 0, scene.Len())
	failed := false
	for _, m := range scene.Meshes() {
		s := collect(m, opts)
		if s.Error != "" {
			failed = true
		}
		stats = append(stats, s)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return err
		}
	} else {
		printTable(stdout, stats)
	}
	if *render != "" {
		if err := writeRender(*render, scene, opts); err != nil {
			return err
		}
	}
	if failed {
		return errMeshFailed
	}
	return nil
}

// writeRender tessellates every mesh of scene and writes the render meshes
// to path.
func writeRender(path string, scene *engine.Scene, opts []config.Option) error {
	meshes, err := tessellate.Tessellate(scene, opts...)
	if err != nil {
		return err
	}
	b, err := json.Marshal(meshes)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// collect builds both representations of m and summarizes them. Build and
// validation failures are recorded in the Error field.
func collect(m *geometry.BasePolygonalGeometryData, opts []config.Option) MeshStats {
	s := MeshStats{Name: m.Name}

	ref := meshgeom.NewReferenced(m, opts...)
	if err := ref.BuildGeometry(); err != nil {
		s.Error = err.Error()
		return s
	}
	data, _ := ref.Data()
	s.Type = data.PolyMeshType.String()
	s.Vertices = data.Vertices.Len()
	s.HalfEdges = data.HalfEdges.Len()
	s.Edges = data.Edges.Len()
	s.Faces = data.Faces.Len()
	s.BoundaryCycles = data.BoundaryCycles.Len()
	s.Euler = data.EulerCharacteristic()
	s.Closed = data.IsClosed()

	res := halfedge.Validate(data, opts...)
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}
	if !res.OK() {
		s.Error = res.Errors[0].Error()
		return s
	}

	meas, _ := ref.Measure()
	s.Area = meas.TotalArea()
	bb := meas.BoundingBox()
	s.Min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	s.Max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}

	buf, err := ref.ToBuffer()
	if err != nil {
		s.Error = err.Error()
		return s
	}
	bd, _ := buf.Data()
	s.Triangles = bd.TriangleCount()
	return s
}

func printTable(w io.Writer, stats []MeshStats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MESH\tTYPE\tV\tHE\tE\tF\tBOUNDARY\tTRIS\tEULER\tAREA")
	for _, s := range stats {
		if s.Error != "" {
			fmt.Fprintf(tw, "%s\terror: %s\n", s.Name, s.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.6g\n",
			s.Name, s.Type, s.Vertices, s.HalfEdges, s.Edges, s.Faces,
			s.BoundaryCycles, s.Triangles, s.Euler, s.Area)
	}
	tw.Flush()
	for _, s := range stats {
		for _, warn := range s.Warnings {
			fmt.Fprintf(w, "warning: %s: %s\n", s.Name, warn)
		}
	}
}
