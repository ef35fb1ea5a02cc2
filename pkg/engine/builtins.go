package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/convert"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms mesh script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: without-faces -> without_faces
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVertex wraps a position or direction.
type sexpVertex struct {
	vec v3.Vec
}

func (v *sexpVertex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vertex %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVertex) Type() *zygo.RegisteredType { return nil }

// sexpFace wraps one face's vertex index list.
type sexpFace struct {
	indices []int
}

func (f *sexpFace) SexpString(ps *zygo.PrintState) string {
	parts := make([]string, len(f.indices))
	for i, v := range f.indices {
		parts[i] = fmt.Sprint(v)
	}
	return "(face " + strings.Join(parts, " ") + ")"
}
func (f *sexpFace) Type() *zygo.RegisteredType { return nil }

// sexpMeshRef names a mesh in the scene.
type sexpMeshRef struct {
	name string
}

func (m *sexpMeshRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(meshref %q)", m.name)
}
func (m *sexpMeshRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// floatKW returns the numeric keyword name, or def when absent.
func (pa kwArgs) floatKW(name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// intKW returns the integer keyword name, or def when absent.
func (pa kwArgs) intKW(name string, def int) (int, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVertex extracts a v3.Vec from a sexpVertex.
func toVertex(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVertex); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vertex, got %T (%s)", s, s.SexpString(nil))
}

// toFace extracts an index list from a sexpFace or a plain list of integers.
func toFace(s zygo.Sexp) ([]int, error) {
	if f, ok := s.(*sexpFace); ok {
		return append([]int(nil), f.indices...), nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected face, got %T (%s)", s, s.SexpString(nil))
	}
	face := make([]int, len(items))
	for i, item := range items {
		if face[i], err = toInt(item); err != nil {
			return nil, fmt.Errorf("face index %d: %w", i, err)
		}
	}
	return face, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toMeshName resolves a mesh reference or a plain mesh name against the
// scene.
func toMeshName(s zygo.Sexp, scene *Scene) (string, error) {
	var name string
	switch v := s.(type) {
	case *sexpMeshRef:
		name = v.name
	case *zygo.SexpStr:
		name = v.S
	default:
		return "", fmt.Errorf("expected mesh reference, got %T (%s)", s, s.SexpString(nil))
	}
	if scene.Lookup(name) == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownMesh, name)
	}
	return name, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFunc is the zygomys signature of a registered Go function.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// named wraps a builtin whose first positional argument is the new mesh's
// name. The generated record is validated, renamed and added to the scene.
func named(op string, scene *Scene, gen func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error)) builtinFunc {
	return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires a name argument", op)
		}
		meshName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", op, err)
		}
		m, err := gen(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
		}
		m.Name = meshName
		if err := m.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s %q: %w", op, meshName, err)
		}
		if err := scene.Add(m); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
		}
		return &sexpMeshRef{name: meshName}, nil
	}
}

// sampled builds a kernel solid, optionally moves it to :at, samples it and
// welds the result into a polygon soup.
func sampled(k kernel.Kernel, cfg config.Options, pa kwArgs, solid func() (kernel.Solid, error)) (*geometry.BasePolygonalGeometryData, error) {
	s, err := solid()
	if err != nil {
		return nil, err
	}
	if v, ok := pa.kw["at"]; ok {
		at, err := toVertex(v)
		if err != nil {
			return nil, fmt.Errorf("at: %w", err)
		}
		s = k.Translate(s, at.X, at.Y, at.Z)
	}
	rm, err := k.ToMesh(s)
	if err != nil {
		return nil, err
	}
	return convert.FromRenderMesh(rm, cfg.Tolerance.Weld)
}

// registerBuiltins installs all mesh script builtins into a zygomys
// environment. The builtins populate scene during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, scene *Scene, k kernel.Kernel, cfg config.Options) {

	// -----------------------------------------------------------------------
	// (vertex 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vertex requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vertex: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVertex{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (face 0 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		indices := make([]int, len(args))
		for i, a := range args {
			n, err := toInt(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: index %d: %w", i, err)
			}
			indices[i] = n
		}
		return &sexpFace{indices: indices}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh "name" :vertices (list (vertex ...) ...) :faces (list (face ...) ...)
	//              :normals (list (vertex ...) ...))
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", named("mesh", scene, func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error) {
		m := &geometry.BasePolygonalGeometryData{}
		var err error
		if m.Vertices, err = vertexList(pa, "vertices"); err != nil {
			return nil, err
		}
		if m.VertexNormals, err = vertexList(pa, "normals"); err != nil {
			return nil, err
		}
		if v, ok := pa.kw["faces"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, fmt.Errorf("faces: %w", err)
			}
			for i, item := range items {
				face, err := toFace(item)
				if err != nil {
					return nil, fmt.Errorf("faces: entry %d: %w", i, err)
				}
				m.VertexIndices = append(m.VertexIndices, face)
			}
		}
		return m, nil
	}))

	// -----------------------------------------------------------------------
	// (icosahedron "name" :edge 1)
	// -----------------------------------------------------------------------
	env.AddFunction("icosahedron", named("icosahedron", scene, func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error) {
		edge, err := pa.floatKW("edge", 1)
		if err != nil {
			return nil, err
		}
		if !(edge > 0) {
			return nil, fmt.Errorf("%w: edge %g", geometry.ErrInputValidation, edge)
		}
		return geometry.Icosahedron(edge), nil
	}))

	// -----------------------------------------------------------------------
	// (box "name" :x 1 :y 1 :z 1)
	// -----------------------------------------------------------------------
	env.AddFunction("box", named("box", scene, func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error) {
		var dims [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := pa.floatKW(axis, 1)
			if err != nil {
				return nil, err
			}
			if !(f > 0) {
				return nil, fmt.Errorf("%w: %s %g", geometry.ErrInputValidation, axis, f)
			}
			dims[i] = f
		}
		return geometry.Box(dims[0], dims[1], dims[2]), nil
	}))

	// -----------------------------------------------------------------------
	// (grid "name" :rows 2 :cols 3 :spacing 1)
	// -----------------------------------------------------------------------
	env.AddFunction("grid", named("grid", scene, func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error) {
		rows, err := pa.intKW("rows", 1)
		if err != nil {
			return nil, err
		}
		cols, err := pa.intKW("cols", 1)
		if err != nil {
			return nil, err
		}
		spacing, err := pa.floatKW("spacing", 1)
		if err != nil {
			return nil, err
		}
		return geometry.Grid(rows, cols, spacing)
	}))

	// -----------------------------------------------------------------------
	// (polygon "name" :sides 6 :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", named("polygon", scene, func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error) {
		sides, err := pa.intKW("sides", 6)
		if err != nil {
			return nil, err
		}
		radius, err := pa.floatKW("radius", 1)
		if err != nil {
			return nil, err
		}
		return geometry.RegularPolygon(sides, radius)
	}))

	// -----------------------------------------------------------------------
	// (sphere "name" :radius 1 :at (vertex 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", named("sphere", scene, func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error) {
		radius, err := pa.floatKW("radius", 1)
		if err != nil {
			return nil, err
		}
		return sampled(k, cfg, pa, func() (kernel.Solid, error) { return k.Sphere(radius) })
	}))

	// -----------------------------------------------------------------------
	// (cylinder "name" :height 2 :radius 0.5 :at (vertex 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", named("cylinder", scene, func(pa kwArgs) (*geometry.BasePolygonalGeometryData, error) {
		height, err := pa.floatKW("height", 1)
		if err != nil {
			return nil, err
		}
		radius, err := pa.floatKW("radius", 0.5)
		if err != nil {
			return nil, err
		}
		return sampled(k, cfg, pa, func() (kernel.Solid, error) { return k.Cylinder(height, radius) })
	}))

	// -----------------------------------------------------------------------
	// (translate m (vertex 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a mesh and an offset")
		}
		meshName, err := toMeshName(args[0], scene)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		delta, err := toVertex(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		scene.Lookup(meshName).Translate(delta)
		return &sexpMeshRef{name: meshName}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate m :axis :z :degrees 90)
	// (rotate m :axis (vertex 0 0 1) :degrees 90)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a mesh argument")
		}
		meshName, err := toMeshName(pa.positional[0], scene)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		degrees, err := pa.floatKW("degrees", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		axisArg, ok := pa.kw["axis"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("rotate: missing :axis")
		}
		axis, err := toVertex(axisArg)
		if err != nil {
			s, kwErr := toKeywordString(axisArg)
			if kwErr != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: axis: %w", err)
			}
			a, err := geometry.ParseAxis3(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
			}
			axis = a.Unit()
		}
		m := scene.Lookup(meshName)
		if err := m.Rotate(axis, degrees*math.Pi/180, cfg.Tolerance); err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		return &sexpMeshRef{name: meshName}, nil
	})

	// -----------------------------------------------------------------------
	// (scale m 2) or (scale m (vertex 1 2 3))
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires a mesh and a factor")
		}
		meshName, err := toMeshName(args[0], scene)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		factor, err := toVertex(args[1])
		if err != nil {
			f, numErr := toFloat64(args[1])
			if numErr != nil {
				return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
			}
			factor = v3.Vec{X: f, Y: f, Z: f}
		}
		if err := scene.Lookup(meshName).Scale(factor, cfg.Tolerance); err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		return &sexpMeshRef{name: meshName}, nil
	})

	// -----------------------------------------------------------------------
	// (without-faces m 0 1)
	//
	// Registered as "without_faces"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("without_faces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("without-faces requires a mesh argument")
		}
		meshName, err := toMeshName(args[0], scene)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("without-faces: %w", err)
		}
		m := scene.Lookup(meshName)
		faces := make([]int, 0, len(args)-1)
		for i, a := range args[1:] {
			f, err := toInt(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("without-faces: face %d: %w", i, err)
			}
			if f < 0 || f >= m.FaceCount() {
				return zygo.SexpNull, fmt.Errorf("without-faces: %w: face %d out of range [0,%d)",
					geometry.ErrInputValidation, f, m.FaceCount())
			}
			faces = append(faces, f)
		}
		if err := scene.replace(meshName, m.WithoutFaces(faces...)); err != nil {
			return zygo.SexpNull, fmt.Errorf("without-faces: %w", err)
		}
		return &sexpMeshRef{name: meshName}, nil
	})
}

// vertexList reads a keyword holding a list of (vertex ...) values.
func vertexList(pa kwArgs, kw string) ([]v3.Vec, error) {
	v, ok := pa.kw[kw]
	if !ok {
		return nil, nil
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kw, err)
	}
	out := make([]v3.Vec, len(items))
	for i, item := range items {
		if out[i], err = toVertex(item); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", kw, i, err)
		}
	}
	return out, nil
}
