// Package svgscene implements a simplified, backend agnostic
// representation of a static SVG document: a render tree of
// groups, paths, images and glyph runs, which can then be painted
// by interchangeable backends through the Canvas interface.
// See for example svgscene/svgraster or svgscene/svgpdf.
//
// The tree is produced by a preprocessing step (parsing, style
// resolution and unit resolution are out of scope here) and is
// immutable once handed to a render entry point: it may then be
// shared freely between concurrent render calls.
package svgscene

import (
	"errors"
	"image"

	"github.com/benoitkugler/svgscene/svgpath"
)

// Kind is the variant tag of a tree node.
type Kind uint8

const (
	KindGroup Kind = iota
	KindPath
	KindImage
	KindGlyphRun
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindPath:
		return "Path"
	case KindImage:
		return "Image"
	case KindGlyphRun:
		return "GlyphRun"
	default:
		return "<unknown Kind>"
	}
}

// NodeID adresses a node inside its Tree.
type NodeID int32

// Root is the id of the top level group of every tree.
const Root NodeID = 0

// Node is one element of the render tree. Which fields are
// meaningful depends on the Kind; the others keep their zero value.
type Node struct {
	Kind Kind

	// Name is the identifier declared on the source element,
	// empty for anonymous nodes. Names are expected to be unique
	// within the tree; duplicates are resolved first-occurrence-wins
	// when indexing.
	Name string

	// Transform maps the node's coordinate space into its parent's.
	Transform svgpath.Matrix2D

	parent   NodeID
	children []NodeID

	// group attributes
	Opacity  float64 // in [0, 1]; 1 is fully opaque
	Blend    BlendMode
	Isolated bool
	Clip     *ClipPath

	// path and glyph run attributes
	Shape svgpath.Path
	Style PathStyle

	// image attributes
	Image     image.Image
	Placement svgpath.Bounds

	// glyph run attributes
	Run *GlyphRun
}

// Children returns the node's children ids, in declaration order.
// Declaration order is paint order: later children paint over
// earlier ones.
func (n Node) Children() []NodeID { return n.children }

// Tree is the immutable render tree: an arena of nodes rooted at
// a group carrying the document viewbox.
//
// A Tree is built once, through the Add* methods, by the
// preprocessing collaborator; it must not be modified after the
// first render call issued against it.
type Tree struct {
	// ViewBox is the document's intrinsic geometry: origin and size
	// in resolved user units.
	ViewBox svgpath.Bounds

	// Transform is the root base transform, applied between the
	// output fit transform and the tree content.
	Transform svgpath.Matrix2D

	nodes []Node
}

// NewTree creates a tree reduced to an empty root group.
func NewTree(viewBox svgpath.Bounds) *Tree {
	return &Tree{
		ViewBox:   viewBox,
		Transform: svgpath.Identity,
		nodes: []Node{{
			Kind:      KindGroup,
			Transform: svgpath.Identity,
			Opacity:   1,
			parent:    -1,
		}},
	}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns a copy of the node `id`, or a zero Node for an
// out of range id.
func (t *Tree) Get(id NodeID) Node {
	if !t.valid(id) {
		return Node{}
	}
	return t.nodes[id]
}

func (t *Tree) valid(id NodeID) bool { return id >= 0 && int(id) < len(t.nodes) }

func (t *Tree) node(id NodeID) *Node { return &t.nodes[id] }

var errBadParent = errors.New("svgscene: parent is not a group node of this tree")

// append adds `n` under `parent`. The transform is stored as given:
// a zero (or otherwise degenerate) transform is a legitimate value,
// collapsing the subtree at render time.
func (t *Tree) append(parent NodeID, n Node) (NodeID, error) {
	if !t.valid(parent) || t.nodes[parent].Kind != KindGroup {
		return -1, errBadParent
	}
	n.parent = parent
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id, nil
}

// GroupOptions are the attributes of a group node.
type GroupOptions struct {
	Name      string
	Transform svgpath.Matrix2D // use NewGroupOptions for the identity
	Opacity   float64          // 1 is fully opaque
	Blend     BlendMode
	Isolated  bool
	Clip      *ClipPath
}

// NewGroupOptions returns options for a plain, fully opaque group.
func NewGroupOptions() GroupOptions {
	return GroupOptions{Transform: svgpath.Identity, Opacity: 1}
}

// AddGroup appends a group node under `parent`.
func (t *Tree) AddGroup(parent NodeID, opts GroupOptions) (NodeID, error) {
	return t.append(parent, Node{
		Kind:      KindGroup,
		Name:      opts.Name,
		Transform: opts.Transform,
		Opacity:   opts.Opacity,
		Blend:     opts.Blend,
		Isolated:  opts.Isolated,
		Clip:      opts.Clip,
	})
}

// AddPath appends a path node under `parent`.
func (t *Tree) AddPath(parent NodeID, name string, transform svgpath.Matrix2D,
	shape svgpath.Path, style PathStyle) (NodeID, error) {
	return t.append(parent, Node{
		Kind:      KindPath,
		Name:      name,
		Transform: transform,
		Shape:     shape,
		Style:     style,
	})
}

// AddImage appends an image node under `parent`, painting `img`
// scaled into `placement`.
func (t *Tree) AddImage(parent NodeID, name string, transform svgpath.Matrix2D,
	img image.Image, placement svgpath.Bounds) (NodeID, error) {
	return t.append(parent, Node{
		Kind:      KindImage,
		Name:      name,
		Transform: transform,
		Image:     img,
		Placement: placement,
	})
}

// AddGlyphRun appends a glyph run node under `parent`, painted
// with `style`.
func (t *Tree) AddGlyphRun(parent NodeID, name string, transform svgpath.Matrix2D,
	run *GlyphRun, style PathStyle) (NodeID, error) {
	return t.append(parent, Node{
		Kind:      KindGlyphRun,
		Name:      name,
		Transform: transform,
		Run:       run,
		Style:     style,
	})
}

// geometryBounds returns the node's own geometry extent, in the
// coordinate space defined by `abs` (the node's transform included).
func (t *Tree) geometryBounds(id NodeID, abs svgpath.Matrix2D) svgpath.Bounds {
	n := t.node(id)
	switch n.Kind {
	case KindPath:
		if !n.Shape.IsFinite() {
			return svgpath.Bounds{}
		}
		return n.Shape.TransformedBy(abs).BoundingBox()
	case KindImage:
		if n.Image == nil || n.Placement.IsEmpty() || !n.Placement.IsFinite() {
			return svgpath.Bounds{}
		}
		return abs.TransformBounds(n.Placement)
	case KindGlyphRun:
		if n.Run == nil {
			return svgpath.Bounds{}
		}
		return n.Run.Outline().TransformedBy(abs).BoundingBox()
	default:
		return svgpath.Bounds{}
	}
}
