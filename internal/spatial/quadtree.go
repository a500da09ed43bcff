package spatial

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

const (
	DefaultMaxObjects = 4
	DefaultMaxDepth   = 8
	DefaultTheta      = 0.5
)

const noChildren = -1

// node is one arena slot. Children occupy four contiguous slots starting
// at children, ordered +x/-y, -x/-y, -x/+y, +x/+y around the midpoint.
type node struct {
	bounds   r2.Box
	depth    int32
	children int32
	objects  []int32
	mass     float64
	com      r2.Vec
}

// Tree is a Barnes-Hut quadtree over a body snapshot. Nodes live in a flat
// arena that is reused across builds.
type Tree struct {
	MaxObjects int
	MaxDepth   int

	nodes     []node
	bodies    []*dynamo.Body
	maxRadius float64
}

func NewTree() *Tree {
	return &Tree{MaxObjects: DefaultMaxObjects, MaxDepth: DefaultMaxDepth}
}

// Reset empties the tree and sets the root bounds.
func (t *Tree) Reset(bodies []*dynamo.Body, bounds r2.Box) {
	t.bodies = bodies
	t.maxRadius = 0
	t.nodes = t.nodes[:0]
	t.newNode(bounds, 0)
}

// Build resets the tree over bodies and inserts all of them. The root bounds
// grow from bounds to cover every body position.
func (t *Tree) Build(bodies []*dynamo.Body, bounds r2.Box) {
	for _, b := range bodies {
		bounds = extend(bounds, b.Position)
	}
	t.Reset(bodies, bounds)
	for i := range bodies {
		t.Insert(int32(i))
	}
}

func (t *Tree) newNode(bounds r2.Box, depth int32) int32 {
	n := len(t.nodes)
	if n < cap(t.nodes) {
		t.nodes = t.nodes[:n+1]
		objs := t.nodes[n].objects[:0]
		t.nodes[n] = node{bounds: bounds, depth: depth, children: noChildren, objects: objs}
	} else {
		t.nodes = append(t.nodes, node{bounds: bounds, depth: depth, children: noChildren})
	}
	return int32(n)
}

// Insert adds the body at snapshot index i.
func (t *Tree) Insert(i int32) {
	if r := t.bodies[i].Radius; r > t.maxRadius {
		t.maxRadius = r
	}
	t.insert(0, i)
}

func (t *Tree) insert(ni, i int32) {
	pos := t.bodies[i].Position
	if c := t.nodes[ni].children; c != noChildren {
		if q := t.quadrant(ni, pos); q >= 0 {
			t.insert(c+q, i)
			t.summarize(ni)
			return
		}
	}

	n := &t.nodes[ni]
	n.objects = append(n.objects, i)
	if n.children == noChildren && len(n.objects) > t.MaxObjects && int(n.depth) < t.MaxDepth {
		t.split(ni)
		objs := t.nodes[ni].objects
		keep := objs[:0]
		for _, o := range objs {
			q := t.quadrant(ni, t.bodies[o].Position)
			if q < 0 {
				keep = append(keep, o)
				continue
			}
			t.insert(t.nodes[ni].children+q, o)
		}
		t.nodes[ni].objects = keep
	}
	t.summarize(ni)
}

func (t *Tree) split(ni int32) {
	b := t.nodes[ni].bounds
	d := t.nodes[ni].depth + 1
	m := center(b)
	first := t.newNode(r2.Box{Min: r2.Vec{X: m.X, Y: b.Min.Y}, Max: r2.Vec{X: b.Max.X, Y: m.Y}}, d)
	t.newNode(r2.Box{Min: b.Min, Max: m}, d)
	t.newNode(r2.Box{Min: r2.Vec{X: b.Min.X, Y: m.Y}, Max: r2.Vec{X: m.X, Y: b.Max.Y}}, d)
	t.newNode(r2.Box{Min: m, Max: b.Max}, d)
	t.nodes[ni].children = first
}

// quadrant returns the child slot for p, or -1 when p lies on a midpoint axis.
func (t *Tree) quadrant(ni int32, p r2.Vec) int32 {
	m := center(t.nodes[ni].bounds)
	top, bottom := p.Y < m.Y, p.Y > m.Y
	left, right := p.X < m.X, p.X > m.X
	switch {
	case right && top:
		return 0
	case left && top:
		return 1
	case left && bottom:
		return 2
	case right && bottom:
		return 3
	}
	return -1
}

func (t *Tree) summarize(ni int32) {
	n := &t.nodes[ni]
	var mass float64
	var w r2.Vec
	for _, o := range n.objects {
		b := t.bodies[o]
		mass += b.Mass
		w = r2.Add(w, r2.Scale(b.Mass, b.Position))
	}
	if n.children != noChildren {
		for k := int32(0); k < 4; k++ {
			c := &t.nodes[n.children+k]
			if c.mass > 0 {
				mass += c.mass
				w = r2.Add(w, r2.Scale(c.mass, c.com))
			}
		}
	}
	n.mass = mass
	if mass > 0 {
		n.com = r2.Scale(1/mass, w)
	} else {
		n.com = r2.Vec{}
	}
}

// Len is the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Mass() float64 {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.nodes[0].mass
}

// CenterOfMass returns the root center of mass; ok is false for an empty tree.
func (t *Tree) CenterOfMass() (com r2.Vec, ok bool) {
	if len(t.nodes) == 0 || t.nodes[0].mass == 0 {
		return r2.Vec{}, false
	}
	return t.nodes[0].com, true
}

func (t *Tree) Bounds() r2.Box {
	if len(t.nodes) == 0 {
		return r2.Box{}
	}
	return t.nodes[0].bounds
}

// Depth is the deepest level in use; the root is level 0.
func (t *Tree) Depth() int {
	d := int32(0)
	for i := range t.nodes {
		d = max(d, t.nodes[i].depth)
	}
	return int(d)
}

// ForEachNode calls fn with the bounds, depth and mass of every node.
func (t *Tree) ForEachNode(fn func(bounds r2.Box, depth int, mass float64)) {
	for i := range t.nodes {
		n := &t.nodes[i]
		fn(n.bounds, int(n.depth), n.mass)
	}
}

// Candidates appends to out the indices of every body that may overlap the
// body at index i, excluding i itself. The search radius is the body radius
// plus the largest inserted radius, so no overlapping pair is missed.
func (t *Tree) Candidates(i int32, out []int32) []int32 {
	if len(t.nodes) == 0 {
		return out
	}
	b := t.bodies[i]
	return t.candidates(0, i, b.Position, b.Radius+t.maxRadius, out)
}

func (t *Tree) candidates(ni, self int32, p r2.Vec, r float64, out []int32) []int32 {
	n := &t.nodes[ni]
	for _, o := range n.objects {
		if o != self {
			out = append(out, o)
		}
	}
	if n.children == noChildren {
		return out
	}
	own := t.quadrant(ni, p)
	for k := int32(0); k < 4; k++ {
		if k == own {
			continue
		}
		c := n.children + k
		if intersectsCircle(t.nodes[c].bounds, p, r) {
			out = t.candidates(c, self, p, r, out)
		}
	}
	if own >= 0 {
		out = t.candidates(n.children+own, self, p, r, out)
	}
	return out
}

// ForceOn approximates the gravitational force on b from every body in the
// tree. A subtree whose width over its distance to b is below theta acts as
// a single point mass at its center of mass. b itself is skipped if present.
func (t *Tree) ForceOn(b *dynamo.Body, theta, g float64) r2.Vec {
	if len(t.nodes) == 0 {
		return r2.Vec{}
	}
	return t.forceOn(0, b, theta, g)
}

func (t *Tree) forceOn(ni int32, b *dynamo.Body, theta, g float64) r2.Vec {
	n := &t.nodes[ni]
	if n.mass == 0 {
		return r2.Vec{}
	}
	if !contains(n.bounds, b.Position) {
		d := r2.Norm(r2.Sub(n.com, b.Position))
		if d > 0 && width(n.bounds)/d < theta {
			return dynamo.Attraction(g, b.Position, b.Mass, n.com, n.mass)
		}
	}

	var f r2.Vec
	if n.children != noChildren {
		for k := int32(0); k < 4; k++ {
			f = r2.Add(f, t.forceOn(n.children+k, b, theta, g))
		}
	}
	for _, o := range n.objects {
		other := t.bodies[o]
		if other == b {
			continue
		}
		f = r2.Add(f, dynamo.Attraction(g, b.Position, b.Mass, other.Position, other.Mass))
	}
	return f
}

var candidatePool = sync.Pool{
	New: func() any {
		s := make([]int32, 0, 64)
		return &s
	},
}

// GetCandidates returns a scratch buffer for Candidates.
func GetCandidates() *[]int32 {
	return candidatePool.Get().(*[]int32)
}

func PutCandidates(s *[]int32) {
	*s = (*s)[:0]
	candidatePool.Put(s)
}
