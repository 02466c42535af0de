// Package resolve walks the raw module graph of an export and derives the
// public shape of the crate: which items are visible, and under which
// display paths they appear. Re-exports make reachability graph-shaped
// while output stays tree-shaped, so placement is kept as a derived
// id → paths mapping instead of duplicating items.
package resolve

import (
	"sort"
	"strings"

	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

// maxUseDepth bounds re-export chain resolution. Chains deeper than this
// are treated as unresolvable, matching how cyclic chains are handled.
const maxUseDepth = 10

// Path is a display path: ordered named segments starting at the crate
// name.
type Path []string

func (p Path) String() string { return strings.Join(p, "::") }

// Child returns p with one more segment appended, without aliasing p's
// backing array.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Options controls the inclusion policy.
type Options struct {
	// IncludePrivate admits non-public items. Modules the exporter marked
	// fully stripped stay excluded regardless.
	IncludePrivate bool
}

// Module is one node of the filtered, visibility-correct module tree.
type Module struct {
	ID   rustdoc.ID
	Path Path
	Item *rustdoc.Item

	// Items are the direct non-module members placed in this module,
	// sorted by name then id. Glob re-exports are expanded into this
	// list; simple re-exports are not (their target keeps its defining
	// location and gains an extra placement).
	Items []*rustdoc.Item

	// Children are the submodules, sorted by name.
	Children []*Module

	// Reexports are the `use` items shown in the module's re-exports
	// section, in declaration order.
	Reexports []*rustdoc.Item
}

// Name returns the module's last path segment.
func (m *Module) Name() string { return m.Path[len(m.Path)-1] }

// Resolution is the canonical placement of every visible item plus the
// filtered module tree. It is immutable once built; downstream stages
// hold read-only references.
type Resolution struct {
	Crate   *rustdoc.Crate
	Package string
	Root    *Module

	modules    map[string]*Module
	placements map[rustdoc.ID][]Path
	opts       Options
}

// Resolve builds the Resolution for one loaded export.
func Resolve(crate *rustdoc.Crate, opts Options) *Resolution {
	r := &Resolution{
		Crate:      crate,
		Package:    crate.Name(),
		modules:    make(map[string]*Module),
		placements: make(map[rustdoc.ID][]Path),
		opts:       opts,
	}
	rootItem := crate.Index[crate.Root]
	r.Root = r.walkModule(crate.Root, rootItem, Path{r.Package}, map[rustdoc.ID]bool{})
	return r
}

// Placements returns every display path of an item, lexicographically
// sorted. Items excluded by visibility (or reachable only through broken
// chains) have none.
func (r *Resolution) Placements(id rustdoc.ID) []Path {
	return r.placements[id]
}

// Primary returns the canonical display path of an item: its defining
// path when that is itself visible, otherwise the lexicographically
// smallest placement. Independent of traversal order.
func (r *Resolution) Primary(id rustdoc.ID) (Path, bool) {
	paths := r.placements[id]
	if len(paths) == 0 {
		return nil, false
	}
	if summary, ok := r.Crate.Paths[id]; ok && summary.CrateID == 0 {
		defining := Path(summary.Path)
		for _, p := range paths {
			if p.String() == defining.String() {
				return p, true
			}
		}
	}
	return paths[0], true
}

// Module looks up a module node by display path.
func (r *Resolution) Module(path string) (*Module, bool) {
	m, ok := r.modules[path]
	return m, ok
}

// SortedModules returns every module in lexicographic path order.
func (r *Resolution) SortedModules() []*Module {
	out := make([]*Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path.String() < out[j].Path.String()
	})
	return out
}

func (r *Resolution) included(item *rustdoc.Item) bool {
	if item.Visibility.IsPublic() {
		return true
	}
	return r.opts.IncludePrivate
}

// placeable reports whether an item kind gets its own placement (and,
// downstream, its own document). Impl blocks, fields, variants and
// associated items are rendered inside their owners.
func placeable(kind rustdoc.ItemKind) bool {
	switch kind {
	case rustdoc.KindStruct, rustdoc.KindEnum, rustdoc.KindFunction,
		rustdoc.KindTrait, rustdoc.KindTypeAlias, rustdoc.KindConstant,
		rustdoc.KindStatic, rustdoc.KindMacro, rustdoc.KindPrimitive:
		return true
	}
	return false
}

func (r *Resolution) addPlacement(id rustdoc.ID, path Path) {
	for _, existing := range r.placements[id] {
		if existing.String() == path.String() {
			return
		}
	}
	paths := append(r.placements[id], path)
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
	r.placements[id] = paths
}

func (r *Resolution) walkModule(id rustdoc.ID, item *rustdoc.Item, path Path, visiting map[rustdoc.ID]bool) *Module {
	if visiting[id] {
		return nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	mod := &Module{ID: id, Path: path, Item: item}
	r.modules[path.String()] = mod
	r.addPlacement(id, path)

	if item.Inner.Module == nil {
		return mod
	}
	for _, childID := range item.Inner.Module.Items {
		child, ok := r.Crate.Index[childID]
		if !ok {
			continue
		}
		if !r.included(child) {
			continue
		}
		switch child.Inner.Kind {
		case rustdoc.KindModule:
			if child.Inner.Module != nil && child.Inner.Module.IsStripped {
				continue
			}
			if child.Name == nil {
				continue
			}
			sub := r.walkModule(childID, child, path.Child(*child.Name), visiting)
			if sub != nil {
				mod.Children = append(mod.Children, sub)
			}
		case rustdoc.KindUse:
			mod.Reexports = append(mod.Reexports, child)
			r.expandUse(mod, child, map[rustdoc.ID]bool{})
		default:
			if !placeable(child.Inner.Kind) || child.Name == nil {
				continue
			}
			mod.Items = append(mod.Items, child)
			r.addPlacement(childID, path.Child(*child.Name))
		}
	}

	sort.Slice(mod.Items, func(i, j int) bool {
		a, b := mod.Items[i], mod.Items[j]
		if *a.Name != *b.Name {
			return *a.Name < *b.Name
		}
		return a.ID < b.ID
	})
	mod.Items = dedupByID(mod.Items)
	sort.Slice(mod.Children, func(i, j int) bool {
		return mod.Children[i].Name() < mod.Children[j].Name()
	})
	return mod
}

// expandUse adds the extra placements a `use` item contributes. The
// visited set guards one re-export chain; cycles end the branch without
// placements and without recursing forever.
func (r *Resolution) expandUse(mod *Module, use *rustdoc.Item, visited map[rustdoc.ID]bool) {
	decl := use.Inner.Use
	if decl == nil || decl.ID == nil {
		return
	}
	target := r.resolveUseChain(*decl.ID, visited)
	if target == nil {
		return
	}

	if !decl.IsGlob {
		if placeable(target.Inner.Kind) {
			r.addPlacement(target.ID, mod.Path.Child(decl.Name))
		}
		return
	}

	// Glob: one placement per item visible through the target module.
	if target.Inner.Module == nil {
		return
	}
	if r.isAncestorOf(target.ID, mod.Path) {
		return
	}
	for _, memberID := range target.Inner.Module.Items {
		member, ok := r.Crate.Index[memberID]
		if !ok || !r.included(member) {
			continue
		}
		// Nested uses and submodules are not flattened through a glob.
		if !placeable(member.Inner.Kind) || member.Name == nil {
			continue
		}
		mod.Items = append(mod.Items, member)
		r.addPlacement(memberID, mod.Path.Child(*member.Name))
	}
}

// resolveUseChain follows use→use chains to the final item. Returns nil
// for external targets, cycles, or chains deeper than maxUseDepth.
func (r *Resolution) resolveUseChain(id rustdoc.ID, visited map[rustdoc.ID]bool) *rustdoc.Item {
	for depth := 0; depth <= maxUseDepth; depth++ {
		if visited[id] {
			return nil
		}
		visited[id] = true
		item, ok := r.Crate.Index[id]
		if !ok {
			return nil
		}
		if item.Inner.Kind != rustdoc.KindUse {
			return item
		}
		if item.Inner.Use == nil || item.Inner.Use.ID == nil {
			return nil
		}
		id = *item.Inner.Use.ID
	}
	return nil
}

// isAncestorOf reports whether the module identified by id sits on the
// path above modPath. Globbing an ancestor would re-import the current
// module into itself.
func (r *Resolution) isAncestorOf(id rustdoc.ID, modPath Path) bool {
	summary, ok := r.Crate.Paths[id]
	if !ok || summary.CrateID != 0 {
		return false
	}
	prefix := strings.Join(summary.Path, "::") + "::"
	return strings.HasPrefix(modPath.String()+"::", prefix)
}

func dedupByID(items []*rustdoc.Item) []*rustdoc.Item {
	seen := make(map[rustdoc.ID]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}
