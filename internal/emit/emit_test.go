package emit

import (
	"strings"
	"testing"

	"github.com/oxidoc/oxidoc/internal/link"
	"github.com/oxidoc/oxidoc/internal/render"
	"github.com/oxidoc/oxidoc/internal/resolve"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

func strptr(s string) *string { return &s }

func pub() rustdoc.Visibility {
	return rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}
}

func unitStruct(name string) *rustdoc.Item {
	return &rustdoc.Item{
		Name:       strptr(name),
		Visibility: pub(),
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindStruct, Struct: &rustdoc.Struct{
			Kind: rustdoc.StructKind{Unit: true},
		}},
	}
}

// pointCrate declares one public struct Point and one private struct
// Hidden at the crate root.
func pointCrate() *rustdoc.Crate {
	crate := &rustdoc.Crate{
		Root:          0,
		FormatVersion: rustdoc.FormatVersion,
		Index:         map[rustdoc.ID]*rustdoc.Item{},
		Paths: map[rustdoc.ID]rustdoc.ItemSummary{
			0: {Path: []string{"demo"}, Kind: "module"},
			1: {Path: []string{"demo", "Point"}, Kind: "struct"},
		},
	}
	crate.Index[0] = &rustdoc.Item{
		ID:         0,
		Name:       strptr("demo"),
		Visibility: pub(),
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{
			IsCrate: true,
			Items:   []rustdoc.ID{1, 2},
		}},
	}
	point := unitStruct("Point")
	point.ID = 1
	crate.Index[1] = point
	hidden := unitStruct("Hidden")
	hidden.ID = 2
	hidden.Visibility = rustdoc.Visibility{Kind: rustdoc.VisibilityDefault}
	crate.Index[2] = hidden
	return crate
}

// collisionCrate places two distinct structs named Point at the crate
// root: one defined there, one pulled in through a glob re-export of a
// private module.
func collisionCrate() *rustdoc.Crate {
	crate := &rustdoc.Crate{
		Root:          0,
		FormatVersion: rustdoc.FormatVersion,
		Index:         map[rustdoc.ID]*rustdoc.Item{},
		Paths: map[rustdoc.ID]rustdoc.ItemSummary{
			0:  {Path: []string{"demo"}, Kind: "module"},
			1:  {Path: []string{"demo", "Point"}, Kind: "struct"},
			10: {Path: []string{"demo", "inner"}, Kind: "module"},
			20: {Path: []string{"demo", "inner", "Point"}, Kind: "struct"},
		},
	}
	crate.Index[0] = &rustdoc.Item{
		ID:         0,
		Name:       strptr("demo"),
		Visibility: pub(),
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{
			IsCrate: true,
			Items:   []rustdoc.ID{1, 5, 10},
		}},
	}
	first := unitStruct("Point")
	first.ID = 1
	crate.Index[1] = first

	globTarget := rustdoc.ID(10)
	crate.Index[5] = &rustdoc.Item{
		ID:         5,
		Visibility: pub(),
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindUse, Use: &rustdoc.Use{
			Source: "inner",
			Name:   "inner",
			ID:     &globTarget,
			IsGlob: true,
		}},
	}
	crate.Index[10] = &rustdoc.Item{
		ID:         10,
		Name:       strptr("inner"),
		Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityDefault},
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{
			Items: []rustdoc.ID{20},
		}},
	}
	second := unitStruct("Point")
	second.ID = 20
	crate.Index[20] = second
	return crate
}

func newPlanner(t *testing.T, crate *rustdoc.Crate) *Planner {
	t.Helper()
	res := resolve.Resolve(crate, resolve.Options{})
	r := render.New(res, link.NewResolver(res, "/docs/api", nil), false)
	return NewPlanner(res, r, "docs/api")
}

func TestPlan_PerItem_OnePublicStruct(t *testing.T) {
	t.Parallel()
	units := newPlanner(t, pointCrate()).Plan(PerItem)

	var itemUnits []Unit
	for _, u := range units {
		if !strings.HasSuffix(u.Path, "index.md") {
			itemUnits = append(itemUnits, u)
		}
	}
	if len(itemUnits) != 1 {
		t.Fatalf("got %d item documents, want 1: %+v", len(itemUnits), units)
	}
	if itemUnits[0].Path != "docs/api/demo/struct.Point.md" {
		t.Errorf("path = %q", itemUnits[0].Path)
	}
	if !strings.Contains(itemUnits[0].Body, "title: \"Struct Point\"") {
		t.Errorf("body not titled Point:\n%s", itemUnits[0].Body)
	}
	for _, u := range units {
		if strings.Contains(u.Path, "Hidden") || strings.Contains(u.Body, "Hidden") {
			t.Errorf("private item leaked into %s", u.Path)
		}
	}
}

func TestPlan_CollisionGetsOrdinal(t *testing.T) {
	t.Parallel()
	units := newPlanner(t, collisionCrate()).Plan(PerItem)

	var paths []string
	for _, u := range units {
		if strings.Contains(u.Path, "struct.Point") {
			paths = append(paths, u.Path)
		}
	}
	if len(paths) != 2 {
		t.Fatalf("got %d Point documents, want 2: %v", len(paths), paths)
	}
	if paths[0] != "docs/api/demo/struct.Point.md" || paths[1] != "docs/api/demo/struct.Point.2.md" {
		t.Errorf("collision paths = %v", paths)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	t.Parallel()
	crate := collisionCrate()
	res := resolve.Resolve(crate, resolve.Options{})
	r := render.New(res, link.NewResolver(res, "/docs/api", nil), false)
	first := NewPlanner(res, r, "docs/api").Plan(PerItem)
	second := NewPlanner(res, r, "docs/api").Plan(PerItem)

	if len(first) != len(second) {
		t.Fatalf("unit counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Path != second[i].Path || first[i].Body != second[i].Body {
			t.Errorf("unit %d differs between runs (%s)", i, first[i].Path)
		}
	}
}

func TestPlan_PerModule(t *testing.T) {
	t.Parallel()
	units := newPlanner(t, pointCrate()).Plan(PerModule)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	u := units[0]
	if u.Path != "docs/api/demo/index.md" {
		t.Errorf("path = %q", u.Path)
	}
	if !strings.Contains(u.Body, "pub struct Point;") {
		t.Errorf("item body not inlined:\n%s", u.Body)
	}
	if strings.Count(u.Body, "---\ntitle") != 1 {
		t.Errorf("nested frontmatter left in aggregated body:\n%s", u.Body)
	}
}

func TestPlan_Single(t *testing.T) {
	t.Parallel()
	units := newPlanner(t, pointCrate()).Plan(Single)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	u := units[0]
	if u.Path != "docs/api/demo.md" {
		t.Errorf("path = %q", u.Path)
	}
	if !strings.Contains(u.Body, "- [Point](#demo-point)") {
		t.Errorf("toc entry missing:\n%s", u.Body)
	}
	if !strings.Contains(u.Body, "## demo::Point") {
		t.Errorf("item heading missing:\n%s", u.Body)
	}
}

func TestParseGranularity(t *testing.T) {
	t.Parallel()
	cases := map[string]Granularity{
		"single":     Single,
		"per-module": PerModule,
		"per-item":   PerItem,
		"multifile":  PerItem,
	}
	for in, want := range cases {
		got, err := ParseGranularity(in)
		if err != nil || got != want {
			t.Errorf("ParseGranularity(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseGranularity("sideways"); err == nil {
		t.Error("expected error for unknown granularity")
	}
}
