// Package halfedge holds the connectivity-rich form of a polygon mesh.
//
// Every face of n vertices owns n half-edges linked by Next into a loop.
// Interior half-edges are paired by Opposite with the half-edge of the
// neighbouring face running the other way. Half-edges left without a
// partner are matched with synthetic boundary half-edges, which are linked
// into BoundaryCycles, so every half-edge of a built mesh has a valid
// Opposite and Next.
//
// Entities refer to each other through handles into the arenas of a single
// ReferencedMeshGeometryData. A built mesh is immutable; there is no edit
// API.
package halfedge
