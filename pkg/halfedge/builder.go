package halfedge

import (
	"errors"
	"fmt"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/handle"
	"github.com/chazu/hemesh/pkg/triangulate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// ErrAlreadyBuilt is returned by a second call to Builder.Build.
var ErrAlreadyBuilt = errors.New("halfedge: builder already used")

type builderState int

const (
	stateUnbuilt builderState = iota
	stateBuilding
	stateBuilt
)

// Builder turns one polygon soup into a ReferencedMeshGeometryData. A
// Builder runs once; later calls to Build fail with ErrAlreadyBuilt.
type Builder struct {
	base  *geometry.BasePolygonalGeometryData
	opts  config.Options
	state builderState
}

// NewBuilder returns a builder for base. base is read, never modified.
func NewBuilder(base *geometry.BasePolygonalGeometryData, opts ...config.Option) *Builder {
	return &Builder{base: base, opts: config.Resolve(opts...)}
}

// Build is shorthand for NewBuilder(base, opts...).Build().
func Build(base *geometry.BasePolygonalGeometryData, opts ...config.Option) (*ReferencedMeshGeometryData, error) {
	return NewBuilder(base, opts...).Build()
}

// edgeKey identifies an undirected edge by its ordered vertex pair.
type edgeKey struct {
	lo, hi int
}

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// rawHalfEdge is the index-based form of a half-edge used while building,
// before any arena exists. -1 marks an unset link.
type rawHalfEdge struct {
	tail, next, opposite, loop, edge int
	boundary                         bool
}

// build holds the index-based intermediate state of one run.
type build struct {
	base      *geometry.BasePolygonalGeometryData
	tol       config.Tolerance
	log       *zap.Logger
	halfEdges []rawHalfEdge
	edges     []int // canonical half-edge per edge
	faceSeeds []int
	cycles    []int // seed half-edge per boundary cycle
	tris      [][]triangulate.Triangle
}

// Build runs the builder.
func (b *Builder) Build() (*ReferencedMeshGeometryData, error) {
	if b.state != stateUnbuilt {
		return nil, ErrAlreadyBuilt
	}
	b.state = stateBuilding
	defer func() { b.state = stateBuilt }()

	log := b.opts.Logger
	if err := b.base.Validate(); err != nil {
		return nil, fmt.Errorf("halfedge: build: %w", err)
	}

	st := &build{base: b.base, tol: b.opts.Tolerance, log: log}
	if err := st.faces(); err != nil {
		return nil, fmt.Errorf("halfedge: build %q: %w", b.base.Name, err)
	}
	interior := len(st.halfEdges)
	if err := st.stitchBoundary(); err != nil {
		return nil, fmt.Errorf("halfedge: build %q: %w", b.base.Name, err)
	}
	m := st.materialize()

	log.Debug("built referenced mesh",
		zap.String("name", m.Name),
		zap.Int("vertices", m.Vertices.Len()),
		zap.Int("faces", m.Faces.Len()),
		zap.Int("edges", m.Edges.Len()),
		zap.Int("half_edges", m.HalfEdges.Len()),
		zap.Int("boundary_half_edges", m.HalfEdges.Len()-interior),
		zap.Int("boundary_cycles", m.BoundaryCycles.Len()),
		zap.Stringer("type", m.PolyMeshType),
	)
	return m, nil
}

// faces creates the face half-edges and pairs them.
func (st *build) faces() error {
	total := 0
	for _, f := range st.base.VertexIndices {
		total += len(f)
	}
	st.halfEdges = make([]rawHalfEdge, 0, 2*total)
	st.faceSeeds = make([]int, len(st.base.VertexIndices))
	st.tris = make([][]triangulate.Triangle, len(st.base.VertexIndices))

	type pairing struct{ first, second int }
	pairs := make(map[edgeKey]*pairing, total)

	for f, face := range st.base.VertexIndices {
		pts := st.base.FacePositions(f)
		tris, err := triangulate.Triangulate(pts, st.tol)
		if err != nil {
			return geometry.NewFaceError(err, f, "triangulation")
		}
		if triangulate.NewellNormal(pts).Length() < st.tol.Normal {
			st.log.Warn("degenerate face has zero area", zap.Int("face", f))
		}
		st.tris[f] = tris

		n := len(face)
		start := len(st.halfEdges)
		st.faceSeeds[f] = start
		for k, v := range face {
			st.halfEdges = append(st.halfEdges, rawHalfEdge{
				tail:     v,
				next:     start + (k+1)%n,
				opposite: -1,
				loop:     f,
				edge:     -1,
			})
		}
		for k, tail := range face {
			h := start + k
			head := face[(k+1)%n]
			key := keyOf(tail, head)
			p, ok := pairs[key]
			switch {
			case !ok:
				pairs[key] = &pairing{first: h, second: -1}
			case p.second >= 0:
				return geometry.NewFaceError(geometry.ErrTopology, f,
					"edge (%d,%d) is shared by more than two faces", tail, head)
			case st.halfEdges[p.first].tail == tail:
				return geometry.NewFaceError(geometry.ErrTopology, f,
					"half-edge %d->%d also appears in face %d; orientations disagree",
					tail, head, st.halfEdges[p.first].loop)
			default:
				p.second = h
				e := len(st.edges)
				st.edges = append(st.edges, p.first)
				st.halfEdges[p.first].opposite = h
				st.halfEdges[p.first].edge = e
				st.halfEdges[h].opposite = p.first
				st.halfEdges[h].edge = e
			}
		}
	}
	return nil
}

func (st *build) head(h int) int {
	return st.halfEdges[st.halfEdges[h].next].tail
}

// stitchBoundary gives every unpaired face half-edge a boundary partner and
// links the partners into cycles.
func (st *build) stitchBoundary() error {
	interior := len(st.halfEdges)
	outgoing := make(map[int]int) // tail vertex -> boundary half-edge
	incoming := make(map[int]int) // head vertex -> boundary half-edge
	var heads []int

	for i := 0; i < interior; i++ {
		if st.halfEdges[i].opposite >= 0 {
			continue
		}
		tail, head := st.head(i), st.halfEdges[i].tail
		if prev, dup := outgoing[tail]; dup {
			return fmt.Errorf("%w: vertex %d has two outgoing boundary half-edges (%d, %d)",
				geometry.ErrTopology, tail, prev, len(st.halfEdges))
		}
		if prev, dup := incoming[head]; dup {
			return fmt.Errorf("%w: vertex %d has two incoming boundary half-edges (%d, %d)",
				geometry.ErrTopology, head, prev, len(st.halfEdges))
		}
		b := len(st.halfEdges)
		e := len(st.edges)
		st.edges = append(st.edges, i)
		st.halfEdges[i].opposite = b
		st.halfEdges[i].edge = e
		st.halfEdges = append(st.halfEdges, rawHalfEdge{
			tail:     tail,
			next:     -1,
			opposite: i,
			loop:     -1,
			edge:     e,
			boundary: true,
		})
		outgoing[tail] = b
		incoming[head] = b
		heads = append(heads, head)
	}

	for k, head := range heads {
		b := interior + k
		next, ok := outgoing[head]
		if !ok {
			return fmt.Errorf("%w: boundary at vertex %d does not continue", geometry.ErrTopology, head)
		}
		st.halfEdges[b].next = next
	}

	// next is a permutation of the boundary half-edges; its orbits are the
	// cycles.
	for b := interior; b < len(st.halfEdges); b++ {
		if st.halfEdges[b].loop >= 0 {
			continue
		}
		c := len(st.cycles)
		st.cycles = append(st.cycles, b)
		for h := b; st.halfEdges[h].loop < 0; h = st.halfEdges[h].next {
			st.halfEdges[h].loop = c
		}
	}
	return nil
}

// materialize allocates exactly sized arenas and converts indices into
// handles.
func (st *build) materialize() *ReferencedMeshGeometryData {
	base := st.base
	m := &ReferencedMeshGeometryData{
		Name:           base.Name,
		Vertices:       handle.NewArena[Vertex](len(base.Vertices)),
		HalfEdges:      handle.NewArena[HalfEdge](len(st.halfEdges)),
		Edges:          handle.NewArena[Edge](len(st.edges)),
		Faces:          handle.NewArena[Face](len(st.faceSeeds)),
		BoundaryCycles: handle.NewArena[BoundaryCycle](len(st.cycles)),
		PolyMeshType:   base.PolyMeshType(),
	}
	if len(base.VertexNormals) > 0 {
		m.VertexNormals = append([]v3.Vec(nil), base.VertexNormals...)
	}

	seeds := make([]int, len(base.Vertices))
	for i := range seeds {
		seeds[i] = -1
	}
	for h, he := range st.halfEdges {
		if seeds[he.tail] < 0 {
			seeds[he.tail] = h
		}
	}
	for i, p := range base.Vertices {
		v := m.Vertices.Slot(i)
		v.position = p
		v.index = i
		if seeds[i] >= 0 {
			v.halfEdge = m.HalfEdges.At(seeds[i])
		}
	}

	for i, raw := range st.halfEdges {
		h := m.HalfEdges.Slot(i)
		h.tail = m.Vertices.At(raw.tail)
		h.next = m.HalfEdges.At(raw.next)
		h.opposite = m.HalfEdges.At(raw.opposite)
		h.edge = m.Edges.At(raw.edge)
		h.index = i
		h.boundary = raw.boundary
		if raw.boundary {
			h.loop = m.BoundaryCycles.At(raw.loop)
		} else {
			h.loop = m.Faces.At(raw.loop)
		}
	}

	for i, canon := range st.edges {
		e := m.Edges.Slot(i)
		e.halfEdge = m.HalfEdges.At(canon)
		e.index = i
	}

	for f, seed := range st.faceSeeds {
		face := m.Faces.Slot(f)
		face.halfEdge = m.HalfEdges.At(seed)
		face.index = f
		indices := base.VertexIndices[f]
		face.triangulation = make([]Triangle, len(st.tris[f]))
		for k, t := range st.tris[f] {
			face.triangulation[k] = Triangle{
				m.Vertices.At(indices[t[0]]),
				m.Vertices.At(indices[t[1]]),
				m.Vertices.At(indices[t[2]]),
			}
		}
		m.TriangleCount += len(st.tris[f])
	}

	for c, seed := range st.cycles {
		cycle := m.BoundaryCycles.Slot(c)
		cycle.halfEdge = m.HalfEdges.At(seed)
		cycle.index = c
		cycle.boundary = true
	}
	return m
}
