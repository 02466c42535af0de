// Package impls partitions implementation blocks per target type and
// strips the ones that are rendering noise: compiler-synthesised impls,
// blanket impls of unbounded generics, and marker traits the compiler
// implements structurally.
package impls

import (
	"sort"

	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

// markerTraits are implemented by the compiler for nearly every type;
// listing them tells a reader nothing.
var markerTraits = map[string]bool{
	"StructuralPartialEq": true,
	"StructuralEq":        true,
	"Freeze":              true,
	"Unpin":               true,
	"RefUnwindSafe":       true,
	"UnwindSafe":          true,
}

// IsMarkerTrait reports whether a trait name is a compiler-internal
// marker suppressed from trait listings.
func IsMarkerTrait(name string) bool { return markerTraits[name] }

// TraitImpl is one `impl Trait for Type` block that survived filtering.
type TraitImpl struct {
	Item  *rustdoc.Item
	Impl  *rustdoc.Impl
	Trait *rustdoc.PathType

	// Methods are the member functions physically present in the block,
	// in declaration order.
	Methods []*rustdoc.Item

	// ProvidedDefaults names trait methods with a default body that this
	// block did not override. They are reported as available via default,
	// never synthesised with a fabricated signature.
	ProvidedDefaults []string
}

// Group is every implementation of one target type, noise removed.
type Group struct {
	TypeID   rustdoc.ID
	Inherent []*rustdoc.Item // impl blocks without a trait, by id
	Traits   []TraitImpl     // sorted by trait path, then id
}

// Classify collects the implementation blocks targeting typeID.
func Classify(crate *rustdoc.Crate, typeID rustdoc.ID) Group {
	g := Group{TypeID: typeID}

	ids := make([]rustdoc.ID, 0, len(crate.Index))
	for id := range crate.Index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		item := crate.Index[id]
		impl := item.Inner.Impl
		if impl == nil {
			continue
		}
		if impl.For.ResolvedPath == nil || impl.For.ResolvedPath.ID != typeID {
			continue
		}
		if impl.IsSynthetic || impl.BlanketImpl != nil {
			continue
		}
		if impl.Trait == nil {
			g.Inherent = append(g.Inherent, item)
			continue
		}
		g.Traits = append(g.Traits, classifyTraitImpl(crate, item, impl))
	}

	sort.SliceStable(g.Traits, func(i, j int) bool {
		a, b := g.Traits[i], g.Traits[j]
		if a.Trait.Path != b.Trait.Path {
			return a.Trait.Path < b.Trait.Path
		}
		return a.Item.ID < b.Item.ID
	})
	return g
}

func classifyTraitImpl(crate *rustdoc.Crate, item *rustdoc.Item, impl *rustdoc.Impl) TraitImpl {
	ti := TraitImpl{Item: item, Impl: impl, Trait: impl.Trait}

	present := make(map[string]bool)
	for _, memberID := range impl.Items {
		member, ok := crate.Index[memberID]
		if !ok || member.Inner.Function == nil || member.Name == nil {
			continue
		}
		ti.Methods = append(ti.Methods, member)
		present[*member.Name] = true
	}

	// Defaulted trait methods the block leaves alone.
	if traitItem, ok := crate.Index[impl.Trait.ID]; ok && traitItem.Inner.Trait != nil {
		for _, declID := range traitItem.Inner.Trait.Items {
			decl, ok := crate.Index[declID]
			if !ok || decl.Inner.Function == nil || decl.Name == nil {
				continue
			}
			if decl.Inner.Function.HasBody && !present[*decl.Name] {
				ti.ProvidedDefaults = append(ti.ProvidedDefaults, *decl.Name)
			}
		}
		sort.Strings(ti.ProvidedDefaults)
	}
	return ti
}

// Derives returns the trait impls with no member functions whose trait is
// not a compiler marker (the `#[derive(...)]`-style one-liners) and the
// remainder, preserving order.
func (g Group) Derives() (derives []TraitImpl, withMethods []TraitImpl) {
	for _, ti := range g.Traits {
		if IsMarkerTrait(ti.Trait.ShortName()) {
			continue
		}
		if len(ti.Methods) == 0 {
			derives = append(derives, ti)
		} else {
			withMethods = append(withMethods, ti)
		}
	}
	return derives, withMethods
}
