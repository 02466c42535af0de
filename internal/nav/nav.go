// Package nav builds the navigation tree for a set of emitted documents
// and serializes it in Docusaurus sidebar form. The tree is derived from
// the unit paths themselves, so it can never reference a document that
// was not written, nor miss one that was.
package nav

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oxidoc/oxidoc/internal/emit"
)

// Node is one entry of the navigation tree. Leaf nodes point at a
// document; interior nodes group a module's documents and carry the
// module's index document as their own destination. Interior status is
// fixed at construction: a directory node is interior even while it has
// no children yet (or its module holds only an index document).
type Node struct {
	Label     string
	Path      string
	Collapsed bool
	Children  []*Node

	interior bool
}

// IsLeaf reports whether the node is a document entry rather than a
// directory grouping.
func (n *Node) IsLeaf() bool { return !n.interior }

// Count returns the number of nodes in the subtree, the root included.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Options controls tree construction.
type Options struct {
	// Root is the output root prefix shared by every unit path; it is
	// stripped from labels but kept in destinations.
	Root string
	// Collapsed is the initial-display hint propagated to every interior
	// node. It never changes tree shape.
	Collapsed bool
}

// Build derives the navigation tree from the emitted units. Directories
// become interior nodes labelled by their last segment; files become
// leaves. A directory's index.md names the directory node itself rather
// than a separate leaf.
func Build(units []emit.Unit, opts Options) *Node {
	root := &Node{Label: strings.TrimSuffix(opts.Root, "/"), Collapsed: opts.Collapsed, interior: true}

	for _, u := range units {
		rel := strings.TrimPrefix(u.Path, opts.Root)
		rel = strings.TrimPrefix(rel, "/")
		segments := strings.Split(rel, "/")

		node := root
		for _, dir := range segments[:len(segments)-1] {
			node = node.child(dir, opts.Collapsed)
		}

		file := segments[len(segments)-1]
		if file == "index.md" {
			node.Path = u.Path
			continue
		}
		node.Children = append(node.Children, &Node{
			Label: docLabel(file),
			Path:  u.Path,
		})
	}

	sortChildren(root)
	return root
}

// Subtree returns the interior node for a module path ("demo/patterns"),
// enabling per-module contextual navigation. The path is relative to the
// output root.
func (n *Node) Subtree(modulePath string) (*Node, bool) {
	node := n
	for _, segment := range strings.Split(modulePath, "/") {
		if segment == "" {
			continue
		}
		var next *Node
		for _, c := range node.Children {
			if c.Label == segment && !c.IsLeaf() {
				next = c
				break
			}
		}
		if next == nil {
			return nil, false
		}
		node = next
	}
	return node, true
}

func (n *Node) child(label string, collapsed bool) *Node {
	for _, c := range n.Children {
		if c.interior && c.Label == label {
			return c
		}
	}
	c := &Node{Label: label, Collapsed: collapsed, interior: true}
	n.Children = append(n.Children, c)
	return c
}

// sortChildren orders interior nodes before leaves, each group
// alphabetically. Child order is part of the deterministic output.
func sortChildren(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsLeaf() != b.IsLeaf() {
			return !a.IsLeaf()
		}
		return a.Label < b.Label
	})
	for _, c := range n.Children {
		sortChildren(c)
	}
}

// docLabel derives a display label from a file name: the kind prefix and
// the .md suffix are dropped ("struct.Point.md" reads as "Point").
func docLabel(file string) string {
	name := strings.TrimSuffix(file, ".md")
	if i := strings.Index(name, "."); i >= 0 {
		rest := name[i+1:]
		// Collision ordinals keep the full name visible.
		if rest != "" && !allDigits(rest) {
			name = rest
		}
	}
	return name
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// Sidebars serializes the tree as a Docusaurus sidebars module. Interior
// nodes become categories linked to their index document, leaves become
// doc entries. Doc ids are unit paths without the .md suffix. A non-empty
// rootLink adds a back-link entry at the top of the sidebar.
func Sidebars(root *Node, rootLink string) string {
	var b strings.Builder
	b.WriteString("// This file is auto-generated by oxidoc.\n")
	b.WriteString("// Do not edit manually - it is overwritten on every run.\n\n")
	b.WriteString("export const rustSidebars = {\n")
	fmt.Fprintf(&b, "  '%s': [\n", sidebarKey(root.Label))
	if rootLink != "" {
		fmt.Fprintf(&b, "    {type: 'link', label: '← Back to docs', href: '%s'},\n", rootLink)
	}
	for _, c := range root.Children {
		writeSidebarItem(&b, c, 2)
	}
	b.WriteString("  ],\n")
	b.WriteString("};\n\nexport default rustSidebars;\n")
	return b.String()
}

func writeSidebarItem(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsLeaf() {
		fmt.Fprintf(b, "%s{type: 'doc', id: '%s', label: '%s'},\n", indent, docID(n.Path), n.Label)
		return
	}
	fmt.Fprintf(b, "%s{\n%s  type: 'category',\n%s  label: '%s',\n%s  collapsed: %t,\n",
		indent, indent, indent, n.Label, indent, n.Collapsed)
	if n.Path != "" {
		fmt.Fprintf(b, "%s  link: {type: 'doc', id: '%s'},\n", indent, docID(n.Path))
	}
	fmt.Fprintf(b, "%s  items: [\n", indent)
	for _, c := range n.Children {
		writeSidebarItem(b, c, depth+2)
	}
	fmt.Fprintf(b, "%s  ],\n%s},\n", indent, indent)
}

func docID(path string) string {
	return strings.TrimSuffix(path, ".md")
}

func sidebarKey(label string) string {
	return strings.NewReplacer("/", "_", ".", "_").Replace(label)
}
