package svgscene

import (
	"testing"

	"github.com/benoitkugler/svgscene/svgpath"
)

func TestNewTree(t *testing.T) {
	tree := NewTree(svgpath.Bounds{W: 100, H: 100})
	if tree.Len() != 1 {
		t.Fatalf("expected a single root node, got %d", tree.Len())
	}
	root := tree.Get(Root)
	if root.Kind != KindGroup || root.Opacity != 1 {
		t.Errorf("unexpected root node %v", root)
	}
}

func TestAddNodes(t *testing.T) {
	tree := NewTree(svgpath.Bounds{W: 100, H: 100})

	g, err := tree.AddGroup(Root, NewGroupOptions())
	if err != nil {
		t.Fatal(err)
	}
	p1, err := tree.AddPath(g, "first", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), DefaultStyle)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := tree.AddPath(g, "second", svgpath.Identity, svgpath.Rect(20, 0, 30, 10, 0), DefaultStyle)
	if err != nil {
		t.Fatal(err)
	}

	children := tree.Get(g).Children()
	if len(children) != 2 || children[0] != p1 || children[1] != p2 {
		t.Errorf("expected declaration order children, got %v", children)
	}
}

func TestAddUnderLeaf(t *testing.T) {
	tree := NewTree(svgpath.Bounds{W: 100, H: 100})
	p, err := tree.AddPath(Root, "", svgpath.Identity, svgpath.Circle(0, 0, 5), DefaultStyle)
	if err != nil {
		t.Fatal(err)
	}
	// a path cannot have children
	if _, err := tree.AddGroup(p, NewGroupOptions()); err == nil {
		t.Error("expected an error adding under a leaf node")
	}
	// nor can an out of range parent
	if _, err := tree.AddGroup(NodeID(42), NewGroupOptions()); err == nil {
		t.Error("expected an error for an invalid parent")
	}
}

func TestZeroScaleTransformKept(t *testing.T) {
	tree := NewTree(svgpath.Bounds{W: 10, H: 10})
	// a zero scale is the zero matrix: it must be stored as is,
	// so that the subtree collapses at render time
	p, err := tree.AddPath(Root, "", svgpath.Identity.Scale(0, 0), svgpath.Circle(0, 0, 5), DefaultStyle)
	if err != nil {
		t.Fatal(err)
	}
	got := tree.Get(p).Transform
	if got != (svgpath.Matrix2D{}) {
		t.Errorf("expected the zero scale to be preserved, got %v", got)
	}
	if !got.IsDegenerate() {
		t.Error("expected a degenerate transform")
	}
}

func TestGetOutOfRange(t *testing.T) {
	tree := NewTree(svgpath.Bounds{W: 10, H: 10})
	if n := tree.Get(NodeID(-1)); n.Kind != KindGroup || len(n.Children()) != 0 {
		t.Errorf("expected a zero node, got %v", n)
	}
	if n := tree.Get(NodeID(99)); len(n.Children()) != 0 {
		t.Errorf("expected a zero node, got %v", n)
	}
}
