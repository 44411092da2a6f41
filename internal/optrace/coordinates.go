package optrace

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FrameSpec places a frame relative to its parent.
//
// With TiltThenDecenter false the decenter is expressed in the parent frame and the
// tilt is applied about the decentered origin. With it true the tilt comes first and
// the decenter is expressed in the tilted axes.
type FrameSpec struct {
	Name             string
	Decenter         Vector3
	Tilt             Rot3
	TiltThenDecenter bool
}

// FrameID addresses a frame inside its CoordinateGraph.
type FrameID int

const noParent FrameID = -1

type frameNode struct {
	spec     FrameSpec
	parent   FrameID
	children []FrameID
	// x_parent = R x_local + T
	R Mat3
	T Vector3
}

func (n *frameNode) setSpec(spec FrameSpec) {
	n.spec = spec
	n.R = rotFromTilts(spec.Tilt)
	n.T = spec.Decenter
	if spec.TiltThenDecenter {
		n.T = n.R.MulVec(spec.Decenter)
	}
}

// CoordinateGraph is an arena of named frames forming a tree under one root.
// Lookups are O(1) by name, transforms are O(depth).
type CoordinateGraph struct {
	mu     sync.RWMutex
	nodes  []frameNode
	byName map[string]FrameID
}

// NewCoordinateGraph creates a graph holding only the root frame.
func NewCoordinateGraph(rootName string) *CoordinateGraph {
	if rootName == "" {
		rootName = DefaultRootName
	}
	g := &CoordinateGraph{byName: map[string]FrameID{rootName: 0}}
	root := frameNode{parent: noParent}
	root.setSpec(FrameSpec{Name: rootName})
	g.nodes = append(g.nodes, root)
	return g
}

// Root returns the handle of the root frame.
func (g *CoordinateGraph) Root() *LocalCoordinates { return &LocalCoordinates{g: g, id: 0} }

// add registers a frame as a child of refname; an empty refname means the root.
// An empty spec.Name gets a generated unique name. Mutators are unexported:
// an OpticalSystem serializes them against running traces.
func (g *CoordinateGraph) add(spec FrameSpec, refname string) (*LocalCoordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if spec.Name == "" {
		spec.Name = uuid.NewString()
	}
	if _, ok := g.byName[spec.Name]; ok {
		return nil, fmt.Errorf("frame %q: %w", spec.Name, ErrDuplicateName)
	}
	parent := FrameID(0)
	if refname != "" {
		p, ok := g.byName[refname]
		if !ok {
			return nil, fmt.Errorf("parent frame %q of %q: %w", refname, spec.Name, ErrUnknownReference)
		}
		parent = p
	}
	if !spec.Decenter.finite() || !isFinite(spec.Tilt.X) || !isFinite(spec.Tilt.Y) || !isFinite(spec.Tilt.Z) {
		return nil, fmt.Errorf("frame %q has non-finite placement: %w", spec.Name, ErrInvalidConfig)
	}
	id := FrameID(len(g.nodes))
	n := frameNode{parent: parent}
	n.setSpec(spec)
	g.nodes = append(g.nodes, n)
	g.nodes[parent].children = append(g.nodes[parent].children, id)
	g.byName[spec.Name] = id
	return &LocalCoordinates{g: g, id: id}, nil
}

// Lookup finds a frame by name.
func (g *CoordinateGraph) Lookup(name string) (*LocalCoordinates, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return &LocalCoordinates{g: g, id: id}, true
}

// Len returns the number of frames including the root.
func (g *CoordinateGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Names lists frames in creation order.
func (g *CoordinateGraph) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.nodes))
	for i := range g.nodes {
		out[i] = g.nodes[i].spec.Name
	}
	return out
}

// Children lists the direct children of a frame.
func (g *CoordinateGraph) Children(name string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("frame %q: %w", name, ErrUnknownReference)
	}
	out := make([]string, 0, len(g.nodes[id].children))
	for _, c := range g.nodes[id].children {
		out = append(out, g.nodes[c].spec.Name)
	}
	return out, nil
}

// reparent moves a frame (and its subtree) under a new parent, keeping its relative placement.
func (g *CoordinateGraph) reparent(name, parent string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.byName[name]
	if !ok {
		return fmt.Errorf("frame %q: %w", name, ErrUnknownReference)
	}
	pid, ok := g.byName[parent]
	if !ok {
		return fmt.Errorf("parent frame %q: %w", parent, ErrUnknownReference)
	}
	if id == 0 {
		return fmt.Errorf("root %q cannot get a parent: %w", name, ErrCyclicGraph)
	}
	// walk from the new parent to the root; meeting id means parent lives in id's subtree
	for n := pid; n != noParent; n = g.nodes[n].parent {
		if n == id {
			return fmt.Errorf("%q under %q: %w", name, parent, ErrCyclicGraph)
		}
	}
	old := g.nodes[id].parent
	kids := g.nodes[old].children
	for i, c := range kids {
		if c == id {
			g.nodes[old].children = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	g.nodes[id].parent = pid
	g.nodes[pid].children = append(g.nodes[pid].children, id)
	return nil
}

// update replaces the placement of an existing frame. The name cannot change.
func (g *CoordinateGraph) update(name string, spec FrameSpec) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.byName[name]
	if !ok {
		return fmt.Errorf("frame %q: %w", name, ErrUnknownReference)
	}
	if spec.Name != "" && spec.Name != name {
		return fmt.Errorf("frame %q cannot be renamed to %q: %w", name, spec.Name, ErrInvalidConfig)
	}
	if id == 0 {
		return fmt.Errorf("root frame %q is fixed: %w", name, ErrInvalidConfig)
	}
	spec.Name = name
	g.nodes[id].setSpec(spec)
	return nil
}

// toGlobal composes the chain from id up to the root: x_global = R x_local + T.
func (g *CoordinateGraph) toGlobal(id FrameID) (Mat3, Vector3) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	R, T := I3(), Vector3{}
	for n := id; n != noParent; n = g.nodes[n].parent {
		node := &g.nodes[n]
		R = node.R.Mul(R)
		T = node.R.MulVec(T).Add(node.T)
	}
	return R, T
}

// LocalCoordinates is a handle to one frame of a CoordinateGraph.
// Surfaces share handles; moving a frame moves every surface attached to it.
type LocalCoordinates struct {
	g  *CoordinateGraph
	id FrameID
}

func (lc *LocalCoordinates) ID() FrameID             { return lc.id }
func (lc *LocalCoordinates) Graph() *CoordinateGraph { return lc.g }

func (lc *LocalCoordinates) sameGraph(g *CoordinateGraph) bool { return lc != nil && lc.g == g }

func (lc *LocalCoordinates) Name() string {
	lc.g.mu.RLock()
	defer lc.g.mu.RUnlock()
	return lc.g.nodes[lc.id].spec.Name
}

// Parent returns the parent's name, or "" for the root.
func (lc *LocalCoordinates) Parent() string {
	lc.g.mu.RLock()
	defer lc.g.mu.RUnlock()
	p := lc.g.nodes[lc.id].parent
	if p == noParent {
		return ""
	}
	return lc.g.nodes[p].spec.Name
}

// Spec returns the frame's placement relative to its parent.
func (lc *LocalCoordinates) Spec() FrameSpec {
	lc.g.mu.RLock()
	defer lc.g.mu.RUnlock()
	return lc.g.nodes[lc.id].spec
}

// Transform returns R, T with x_global = R x_local + T.
func (lc *LocalCoordinates) Transform() (Mat3, Vector3) { return lc.g.toGlobal(lc.id) }

// Origin is the frame origin in global coordinates.
func (lc *LocalCoordinates) Origin() Vector3 {
	_, T := lc.Transform()
	return T
}

func (lc *LocalCoordinates) LocalToGlobalPoints(p Vec3s) Vec3s {
	R, T := lc.Transform()
	return R.MulVecs(p, T)
}

func (lc *LocalCoordinates) GlobalToLocalPoints(p Vec3s) Vec3s {
	R, T := lc.Transform()
	RT := R.Transpose()
	return RT.MulVecs(p, RT.MulVec(T).Mul(-1))
}

func (lc *LocalCoordinates) LocalToGlobalDirections(d Vec3s) Vec3s {
	R, _ := lc.Transform()
	return R.MulVecs(d, Vector3{})
}

func (lc *LocalCoordinates) GlobalToLocalDirections(d Vec3s) Vec3s {
	R, _ := lc.Transform()
	return R.Transpose().MulVecs(d, Vector3{})
}

// LocalToGlobalCVectors rotates complex wavevectors or fields.
func (lc *LocalCoordinates) LocalToGlobalCVectors(v CVec3s) CVec3s {
	R, _ := lc.Transform()
	return R.MulCVecs(v)
}

func (lc *LocalCoordinates) GlobalToLocalCVectors(v CVec3s) CVec3s {
	R, _ := lc.Transform()
	return R.Transpose().MulCVecs(v)
}
