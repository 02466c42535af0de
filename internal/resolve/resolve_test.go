package resolve

import (
	"testing"

	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

func strptr(s string) *string { return &s }

func pub() rustdoc.Visibility {
	return rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}
}

func structItem(name string) *rustdoc.Item {
	return &rustdoc.Item{
		Name:       strptr(name),
		Visibility: pub(),
		Inner:      rustdoc.ItemInner{Kind: rustdoc.KindStruct, Struct: &rustdoc.Struct{}},
	}
}

func moduleItem(name string, items ...rustdoc.ID) *rustdoc.Item {
	return &rustdoc.Item{
		Name:       strptr(name),
		Visibility: pub(),
		Inner:      rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{Items: items}},
	}
}

func useItem(name string, target rustdoc.ID, glob bool) *rustdoc.Item {
	return &rustdoc.Item{
		Visibility: pub(),
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindUse, Use: &rustdoc.Use{
			Source: name,
			Name:   name,
			ID:     &target,
			IsGlob: glob,
		}},
	}
}

func newCrate(items map[rustdoc.ID]*rustdoc.Item, paths map[rustdoc.ID]rustdoc.ItemSummary) *rustdoc.Crate {
	for id, item := range items {
		item.ID = id
	}
	return &rustdoc.Crate{
		Root:          0,
		FormatVersion: rustdoc.FormatVersion,
		Index:         items,
		Paths:         paths,
	}
}

func TestResolve_VisibilityFilter(t *testing.T) {
	t.Parallel()

	hidden := structItem("Hidden")
	hidden.Visibility = rustdoc.Visibility{Kind: rustdoc.VisibilityDefault}
	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1, 2),
		1: structItem("Point"),
		2: hidden,
	}, map[rustdoc.ID]rustdoc.ItemSummary{
		1: {CrateID: 0, Path: []string{"demo", "Point"}, Kind: "struct"},
		2: {CrateID: 0, Path: []string{"demo", "Hidden"}, Kind: "struct"},
	})

	res := Resolve(crate, Options{})
	if len(res.Root.Items) != 1 || *res.Root.Items[0].Name != "Point" {
		t.Errorf("public-only items = %v", names(res.Root.Items))
	}
	if res.Placements(2) != nil {
		t.Error("private item must have no placements")
	}

	res = Resolve(crate, Options{IncludePrivate: true})
	if len(res.Root.Items) != 2 {
		t.Errorf("include-private items = %v", names(res.Root.Items))
	}
	if got := res.Placements(2); len(got) != 1 || got[0].String() != "demo::Hidden" {
		t.Errorf("private placements = %v", got)
	}
}

func TestResolve_StrippedModuleExcluded(t *testing.T) {
	t.Parallel()

	stripped := moduleItem("detail", 2)
	stripped.Inner.Module.IsStripped = true
	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1),
		1: stripped,
		2: structItem("Point"),
	}, nil)

	res := Resolve(crate, Options{IncludePrivate: true})
	if len(res.Root.Children) != 0 {
		t.Error("stripped module must stay excluded even with private items included")
	}
	if _, ok := res.Module("demo::detail"); ok {
		t.Error("stripped module registered in the module map")
	}
}

func TestResolve_SimpleReexport(t *testing.T) {
	t.Parallel()

	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1, 3),
		1: moduleItem("inner", 2),
		2: structItem("Point"),
		3: useItem("Point", 2, false),
	}, map[rustdoc.ID]rustdoc.ItemSummary{
		2: {CrateID: 0, Path: []string{"demo", "inner", "Point"}, Kind: "struct"},
	})

	res := Resolve(crate, Options{})

	placements := res.Placements(2)
	if len(placements) != 2 {
		t.Fatalf("placements = %v, want the defining path plus the re-export", placements)
	}
	if placements[0].String() != "demo::Point" || placements[1].String() != "demo::inner::Point" {
		t.Errorf("placements = %v, want sorted [demo::Point demo::inner::Point]", placements)
	}

	// The defining path is visible, so it stays primary over the
	// lexicographically smaller re-export path.
	primary, ok := res.Primary(2)
	if !ok || primary.String() != "demo::inner::Point" {
		t.Errorf("Primary = %v, want demo::inner::Point", primary)
	}

	if len(res.Root.Reexports) != 1 {
		t.Errorf("Reexports = %d entries, want 1", len(res.Root.Reexports))
	}
	// A simple re-export does not duplicate the item into the module body.
	if len(res.Root.Items) != 0 {
		t.Errorf("root items = %v, want none", names(res.Root.Items))
	}
}

func TestResolve_PrimaryFallsBackWhenDefiningPathHidden(t *testing.T) {
	t.Parallel()

	private := moduleItem("detail", 2)
	private.Visibility = rustdoc.Visibility{Kind: rustdoc.VisibilityDefault}
	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1, 3, 4),
		1: private,
		2: structItem("Point"),
		3: useItem("Point", 2, false),
		4: useItem("Vertex", 2, false),
	}, map[rustdoc.ID]rustdoc.ItemSummary{
		2: {CrateID: 0, Path: []string{"demo", "detail", "Point"}, Kind: "struct"},
	})
	res := Resolve(crate, Options{})

	// Only the two re-export paths exist; the defining path is private.
	placements := res.Placements(2)
	if len(placements) != 2 {
		t.Fatalf("placements = %v", placements)
	}
	primary, ok := res.Primary(2)
	if !ok || primary.String() != "demo::Point" {
		t.Errorf("Primary = %v, want the lexicographically smallest placement demo::Point", primary)
	}
}

func TestResolve_GlobExpansion(t *testing.T) {
	t.Parallel()

	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1, 4),
		1: moduleItem("prelude", 2, 3),
		2: structItem("Point"),
		3: structItem("Vertex"),
		4: useItem("prelude", 1, true),
	}, map[rustdoc.ID]rustdoc.ItemSummary{
		1: {CrateID: 0, Path: []string{"demo", "prelude"}, Kind: "module"},
	})

	res := Resolve(crate, Options{})

	if got := names(res.Root.Items); len(got) != 2 || got[0] != "Point" || got[1] != "Vertex" {
		t.Errorf("glob-expanded root items = %v, want [Point Vertex]", got)
	}
	for id, want := range map[rustdoc.ID]string{2: "demo::Point", 3: "demo::Vertex"} {
		found := false
		for _, p := range res.Placements(id) {
			if p.String() == want {
				found = true
			}
		}
		if !found {
			t.Errorf("item %d placements %v missing %s", id, res.Placements(id), want)
		}
	}
}

func TestResolve_GlobOfAncestorIgnored(t *testing.T) {
	t.Parallel()

	// demo::sub contains `use demo::*`; expanding it would pull sub's own
	// contents back into itself.
	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1, 2),
		1: moduleItem("sub", 3),
		2: structItem("Point"),
		3: useItem("demo", 0, true),
	}, map[rustdoc.ID]rustdoc.ItemSummary{
		0: {CrateID: 0, Path: []string{"demo"}, Kind: "module"},
	})

	res := Resolve(crate, Options{})
	sub, ok := res.Module("demo::sub")
	if !ok {
		t.Fatal("demo::sub missing")
	}
	if len(sub.Items) != 0 {
		t.Errorf("ancestor glob expanded into %v", names(sub.Items))
	}
}

func TestResolve_UseCycleTerminates(t *testing.T) {
	t.Parallel()

	a, b := useItem("a", 2, false), useItem("b", 1, false)
	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1, 2),
		1: a,
		2: b,
	}, nil)

	res := Resolve(crate, Options{})
	if len(res.Root.Items) != 0 {
		t.Errorf("cyclic re-exports produced items %v", names(res.Root.Items))
	}
}

func TestResolve_DeepUseChainUnresolved(t *testing.T) {
	t.Parallel()

	// A chain one hop past the depth bound: use0 -> use1 -> ... -> struct.
	items := map[rustdoc.ID]*rustdoc.Item{}
	const chainLen = 12
	var rootItems []rustdoc.ID
	for i := 0; i < chainLen; i++ {
		items[rustdoc.ID(i+1)] = useItem("deep", rustdoc.ID(i+2), false)
	}
	items[chainLen+1] = structItem("Deep")
	rootItems = append(rootItems, 1)
	items[0] = moduleItem("demo", rootItems...)
	crate := newCrate(items, nil)

	res := Resolve(crate, Options{})
	if got := res.Placements(chainLen + 1); got != nil {
		t.Errorf("over-deep chain still placed the target: %v", got)
	}
}

func TestResolve_ItemsSortedAndDeduped(t *testing.T) {
	t.Parallel()

	// Beta is declared in root and also reachable through a glob of
	// mirror, which lists the same item id.
	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 3, 1, 5, 4),
		1: structItem("Beta"),
		3: structItem("Alpha"),
		5: moduleItem("mirror", 1),
		4: useItem("mirror", 5, true),
	}, map[rustdoc.ID]rustdoc.ItemSummary{
		5: {CrateID: 0, Path: []string{"demo", "mirror"}, Kind: "module"},
	})

	res := Resolve(crate, Options{})
	got := names(res.Root.Items)
	if len(got) != 2 || got[0] != "Alpha" || got[1] != "Beta" {
		t.Errorf("items = %v, want deduped [Alpha Beta]", got)
	}
}

func TestSortedModules(t *testing.T) {
	t.Parallel()

	crate := newCrate(map[rustdoc.ID]*rustdoc.Item{
		0: moduleItem("demo", 1, 2),
		1: moduleItem("zeta"),
		2: moduleItem("alpha"),
	}, nil)

	res := Resolve(crate, Options{})
	mods := res.SortedModules()
	if len(mods) != 3 {
		t.Fatalf("got %d modules", len(mods))
	}
	want := []string{"demo", "demo::alpha", "demo::zeta"}
	for i, m := range mods {
		if m.Path.String() != want[i] {
			t.Errorf("module %d = %s, want %s", i, m.Path, want[i])
		}
	}
}

func names(items []*rustdoc.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = *it.Name
	}
	return out
}
