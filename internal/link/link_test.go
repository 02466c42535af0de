package link

import (
	"testing"

	"github.com/oxidoc/oxidoc/internal/resolve"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

func strptr(s string) *string { return &s }

func pub() rustdoc.Visibility {
	return rustdoc.Visibility{Kind: rustdoc.VisibilityPublic}
}

// fixtureResolution wires up a crate with a local struct and module plus
// summaries for items owned by other crates.
func fixtureResolution() *resolve.Resolution {
	crate := &rustdoc.Crate{
		Root:          0,
		FormatVersion: rustdoc.FormatVersion,
		Index: map[rustdoc.ID]*rustdoc.Item{
			0: {
				Name:       strptr("demo"),
				Visibility: pub(),
				Inner: rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{
					IsCrate: true,
					Items:   []rustdoc.ID{1, 2, 3},
				}},
			},
			1: {
				Name:       strptr("Point"),
				Visibility: pub(),
				Inner:      rustdoc.ItemInner{Kind: rustdoc.KindStruct, Struct: &rustdoc.Struct{}},
			},
			2: {
				Name:       strptr("shapes"),
				Visibility: pub(),
				Inner:      rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{}},
			},
			3: {
				Name:       strptr("Hidden"),
				Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityDefault},
				Inner:      rustdoc.ItemInner{Kind: rustdoc.KindStruct, Struct: &rustdoc.Struct{}},
			},
		},
		Paths: map[rustdoc.ID]rustdoc.ItemSummary{
			1: {CrateID: 0, Path: []string{"demo", "Point"}, Kind: "struct"},
			2: {CrateID: 0, Path: []string{"demo", "shapes"}, Kind: "module"},
			3: {CrateID: 0, Path: []string{"demo", "Hidden"}, Kind: "struct"},
			// Owned by a workspace sibling.
			50: {CrateID: 1, Path: []string{"geo_core", "Matrix"}, Kind: "struct"},
			// Owned by an unrelated dependency.
			60: {CrateID: 2, Path: []string{"serde", "de", "Deserialize"}, Kind: "trait"},
			// Standard library.
			70: {CrateID: 3, Path: []string{"std", "vec", "Vec"}, Kind: "struct"},
			71: {CrateID: 4, Path: []string{"core", "option", "Option"}, Kind: "enum"},
		},
		ExternalCrates: map[uint32]rustdoc.ExternalCrate{
			1: {Name: "geo_core", HTMLRootURL: "https://docs.rs/geo-core/0.3.0/"},
			2: {Name: "serde", HTMLRootURL: "https://docs.rs/serde/1.0.0/"},
			3: {Name: "std"},
			4: {Name: "core"},
		},
	}
	for id, item := range crate.Index {
		item.ID = id
	}
	return resolve.Resolve(crate, resolve.Options{})
}

func TestResolve_Internal(t *testing.T) {
	t.Parallel()

	r := NewResolver(fixtureResolution(), "/docs/api", []string{"geo-core"})

	got := r.Resolve(1)
	if got.Kind != Internal || got.Href != "/docs/api/demo/struct.Point" {
		t.Errorf("struct target = %+v", got)
	}

	// Modules map to directories.
	got = r.Resolve(2)
	if got.Kind != Internal || got.Href != "/docs/api/demo/shapes/" {
		t.Errorf("module target = %+v", got)
	}
}

func TestResolve_Sibling(t *testing.T) {
	t.Parallel()

	r := NewResolver(fixtureResolution(), "/docs/api", []string{"geo-core"})

	got := r.Resolve(50)
	if got.Kind != Sibling {
		t.Fatalf("kind = %v, want Sibling", got.Kind)
	}
	// The Cargo name from html_root_url wins over the lib name, and the
	// workspace match tolerates the hyphen/underscore difference.
	if got.Href != "/docs/api/geo-core/struct.Matrix" {
		t.Errorf("href = %q", got.Href)
	}
}

func TestResolve_External(t *testing.T) {
	t.Parallel()

	r := NewResolver(fixtureResolution(), "/docs/api", nil)

	got := r.Resolve(60)
	if got.Kind != External {
		t.Fatalf("kind = %v, want External", got.Kind)
	}
	if want := "https://docs.rs/serde/latest/serde/de/trait.Deserialize.html"; got.Href != want {
		t.Errorf("href = %q, want %q", got.Href, want)
	}
}

func TestResolve_StandardLibrary(t *testing.T) {
	t.Parallel()

	r := NewResolver(fixtureResolution(), "/docs/api", nil)

	got := r.Resolve(70)
	if want := "https://doc.rust-lang.org/std/vec/struct.Vec.html"; got.Kind != External || got.Href != want {
		t.Errorf("std target = %+v, want %q", got, want)
	}

	got = r.Resolve(71)
	if want := "https://doc.rust-lang.org/core/option/enum.Option.html"; got.Href != want {
		t.Errorf("core target href = %q, want %q", got.Href, want)
	}
}

func TestResolve_DanglingIsNoLink(t *testing.T) {
	t.Parallel()

	r := NewResolver(fixtureResolution(), "/docs/api", nil)

	got := r.Resolve(9999)
	if got.Kind != NoLink || got.Href != "" {
		t.Errorf("dangling target = %+v, want NoLink", got)
	}
}

func TestResolve_Memoised(t *testing.T) {
	t.Parallel()

	r := NewResolver(fixtureResolution(), "/docs/api", nil)
	for i := 0; i < 3; i++ {
		if got := r.Resolve(1); got.Href != "/docs/api/demo/struct.Point" {
			t.Fatalf("run %d: %+v", i, got)
		}
	}
}

func TestResolve_EmptyBasePath(t *testing.T) {
	t.Parallel()

	r := NewResolver(fixtureResolution(), "", nil)
	if got := r.Resolve(1); got.Href != "/demo/struct.Point" {
		t.Errorf("href = %q", got.Href)
	}
}

func TestKindPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind rustdoc.ItemKind
		want string
	}{
		{rustdoc.KindFunction, "fn."},
		{rustdoc.KindStruct, "struct."},
		{rustdoc.KindEnum, "enum."},
		{rustdoc.KindTrait, "trait."},
		{rustdoc.KindTypeAlias, "type."},
		{rustdoc.KindMacro, "macro."},
		{rustdoc.KindModule, ""},
		{rustdoc.ItemKind("widget"), "struct."},
	}
	for _, tt := range tests {
		if got := KindPrefix(tt.kind); got != tt.want {
			t.Errorf("KindPrefix(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestResolve_ExcludedLocalItemIsNoLink(t *testing.T) {
	t.Parallel()

	// Hidden is locally defined but private, so it has a summary yet no
	// placement and no document. It must never fall through to the
	// sibling branch (even when the crate's own name is in the workspace
	// list) or to a docs.rs URL for the local crate.
	for _, workspace := range [][]string{nil, {"demo"}} {
		r := NewResolver(fixtureResolution(), "/docs/api", workspace)
		if got := r.Resolve(3); got.Kind != NoLink || got.Href != "" {
			t.Errorf("workspace %v: excluded local item resolved to %+v, want NoLink", workspace, got)
		}
	}
}

func TestResolve_CollisionOrdinalInHref(t *testing.T) {
	t.Parallel()

	// Two distinct structs named Point share the crate root: one defined
	// there, one pulled in through a glob re-export of a private module.
	// Their hrefs must match the emitted file names, ordinal included.
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
	add := func(id rustdoc.ID, item *rustdoc.Item) {
		item.ID = id
		crate.Index[id] = item
	}
	add(0, &rustdoc.Item{
		Name:       strptr("demo"),
		Visibility: pub(),
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{
			IsCrate: true,
			Items:   []rustdoc.ID{1, 5, 10},
		}},
	})
	add(1, &rustdoc.Item{
		Name:       strptr("Point"),
		Visibility: pub(),
		Inner:      rustdoc.ItemInner{Kind: rustdoc.KindStruct, Struct: &rustdoc.Struct{}},
	})
	globTarget := rustdoc.ID(10)
	add(5, &rustdoc.Item{
		Visibility: pub(),
		Inner: rustdoc.ItemInner{Kind: rustdoc.KindUse, Use: &rustdoc.Use{
			Source: "inner",
			Name:   "inner",
			ID:     &globTarget,
			IsGlob: true,
		}},
	})
	add(10, &rustdoc.Item{
		Name:       strptr("inner"),
		Visibility: rustdoc.Visibility{Kind: rustdoc.VisibilityDefault},
		Inner:      rustdoc.ItemInner{Kind: rustdoc.KindModule, Module: &rustdoc.Module{Items: []rustdoc.ID{20}}},
	})
	add(20, &rustdoc.Item{
		Name:       strptr("Point"),
		Visibility: pub(),
		Inner:      rustdoc.ItemInner{Kind: rustdoc.KindStruct, Struct: &rustdoc.Struct{}},
	})

	res := resolve.Resolve(crate, resolve.Options{})
	r := NewResolver(res, "/docs/api", nil)

	if got := r.Resolve(1); got.Href != "/docs/api/demo/struct.Point" {
		t.Errorf("first Point href = %q", got.Href)
	}
	if got := r.Resolve(20); got.Href != "/docs/api/demo/struct.Point.2" {
		t.Errorf("second Point href = %q, want the ordinal document", got.Href)
	}
}
