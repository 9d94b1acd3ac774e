package svgscene

import "github.com/benoitkugler/svgscene/svgpath"

// Index is a lookup structure over a Tree, keyed by node name.
// It also records, per named node, the bounding box of the node and
// its descendants expressed in root coordinates (all ancestor
// transforms applied, the tree base transform included).
//
// Like the Tree it observes, an Index is immutable once built and
// safe for concurrent reads.
type Index struct {
	tree   *Tree
	byName map[string]NodeID
	bounds map[NodeID]svgpath.Bounds
}

// BuildIndex traverses the tree once and indexes every named node.
// Names are expected to be unique; on a duplicate, the first
// occurrence in document order wins and later ones are ignored.
func BuildIndex(t *Tree) *Index {
	idx := &Index{
		tree:   t,
		byName: make(map[string]NodeID),
		bounds: make(map[NodeID]svgpath.Bounds),
	}
	if t != nil && len(t.nodes) != 0 {
		idx.walk(Root, t.Transform)
	}
	return idx
}

// walk indexes the subtree at `id` and returns its bounds in root
// coordinates. `abs` is the product of the ancestor transforms.
func (idx *Index) walk(id NodeID, abs svgpath.Matrix2D) svgpath.Bounds {
	n := idx.tree.node(id)
	here := abs.Mult(n.Transform)

	acc := idx.tree.geometryBounds(id, here)
	for _, child := range n.children {
		acc = acc.Union(idx.walk(child, here))
	}

	if n.Name != "" {
		if _, seen := idx.byName[n.Name]; !seen {
			idx.byName[n.Name] = id
			idx.bounds[id] = acc
		}
	}
	return acc
}

// Lookup returns the node declared with `name`.
// A missing name is a normal outcome, reported by ok == false.
func (idx *Index) Lookup(name string) (id NodeID, ok bool) {
	id, ok = idx.byName[name]
	return id, ok
}

// SubtreeBounds returns the bounding box, in root coordinates, of the
// named node and its descendants. ok is false when the name is
// unknown; a known node with no geometry yields an empty box.
func (idx *Index) SubtreeBounds(name string) (svgpath.Bounds, bool) {
	id, ok := idx.byName[name]
	if !ok {
		return svgpath.Bounds{}, false
	}
	return idx.bounds[id], true
}

// absTransform returns the product of the ancestor transforms of
// `id` (the tree base transform included, the node's own excluded).
func (t *Tree) absTransform(id NodeID) svgpath.Matrix2D {
	// walk up, then compose root-first
	var chain []NodeID
	for cur := t.node(id).parent; cur >= 0; cur = t.node(cur).parent {
		chain = append(chain, cur)
	}
	m := t.Transform
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Mult(t.node(chain[i]).Transform)
	}
	return m
}
