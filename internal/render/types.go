package render

import (
	"strings"

	"github.com/oxidoc/oxidoc/internal/link"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

// maxTypeDepth bounds recursion over nested type expressions. Real-world
// exports never get close; a pathological one degrades instead of
// overflowing the stack.
const maxTypeDepth = 50

// typeString renders a type expression as plain Rust syntax. When links
// is non-nil, every named type that resolves to a destination contributes
// a (name, href) pair. Unknown type variants render as "?".
func (r *Renderer) typeString(t *rustdoc.Type, depth int, links *[]Link) string {
	if t == nil {
		return "?"
	}
	if depth > maxTypeDepth {
		return "..."
	}
	switch {
	case t.ResolvedPath != nil:
		return r.pathString(t.ResolvedPath, depth, links)
	case t.Generic != nil:
		return *t.Generic
	case t.Primitive != nil:
		return *t.Primitive
	case t.DynTrait != nil:
		return r.dynTraitString(t.DynTrait, links)
	case t.Tuple != nil:
		parts := make([]string, len(t.Tuple))
		for i := range t.Tuple {
			parts[i] = r.typeString(&t.Tuple[i], depth+1, links)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case t.Slice != nil:
		return "[" + r.typeString(t.Slice, depth+1, links) + "]"
	case t.Array != nil:
		return "[" + r.typeString(&t.Array.Type, depth+1, links) + "; " + t.Array.Len + "]"
	case t.BorrowedRef != nil:
		return r.borrowedRefString(t.BorrowedRef, depth, links)
	case t.RawPointer != nil:
		if t.RawPointer.IsMutable {
			return "*mut " + r.typeString(&t.RawPointer.Type, depth+1, links)
		}
		return "*const " + r.typeString(&t.RawPointer.Type, depth+1, links)
	case t.QualifiedPath != nil:
		return r.qualifiedPathString(t.QualifiedPath, depth, links)
	case t.ImplTrait != nil:
		return "impl Trait"
	case t.FunctionPtr != nil:
		return "fn(...)"
	case t.Infer:
		return "_"
	}
	return "?"
}

func (r *Renderer) pathString(p *rustdoc.PathType, depth int, links *[]Link) string {
	name := p.ShortName()
	if name == "" {
		if summary, ok := r.res.Crate.Paths[p.ID]; ok && len(summary.Path) > 0 {
			name = summary.Path[len(summary.Path)-1]
		}
	}
	if name == "" {
		return "?"
	}
	r.collectLink(name, p.ID, links)
	return name + r.genericArgsString(p.Args, depth, links)
}

func (r *Renderer) collectLink(name string, id rustdoc.ID, links *[]Link) {
	if links == nil {
		return
	}
	if target := r.links.Resolve(id); target.Kind != link.NoLink {
		*links = append(*links, Link{Text: name, Href: target.Href})
	}
}

func (r *Renderer) genericArgsString(args *rustdoc.GenericArgs, depth int, links *[]Link) string {
	if args == nil || args.AngleBracketed == nil {
		return ""
	}
	var parts []string
	for i := range args.AngleBracketed.Args {
		arg := &args.AngleBracketed.Args[i]
		switch {
		case arg.Lifetime != nil:
			if !isSyntheticLifetime(*arg.Lifetime) {
				parts = append(parts, *arg.Lifetime)
			}
		case arg.Type != nil:
			parts = append(parts, r.typeString(arg.Type, depth+1, links))
		case arg.Infer:
			parts = append(parts, "_")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (r *Renderer) dynTraitString(dt *rustdoc.DynTrait, links *[]Link) string {
	if len(dt.Traits) == 0 {
		return "dyn Trait"
	}
	first := &dt.Traits[0].Trait
	name := first.ShortName()
	r.collectLink(name, first.ID, links)
	return "dyn " + name
}

func (r *Renderer) borrowedRefString(br *rustdoc.BorrowedRef, depth int, links *[]Link) string {
	out := "&"
	if br.Lifetime != nil && !isSyntheticLifetime(*br.Lifetime) {
		out += *br.Lifetime + " "
	}
	if br.IsMutable {
		out += "mut "
	}
	return out + r.typeString(&br.Type, depth+1, links)
}

func (r *Renderer) qualifiedPathString(qp *rustdoc.QualifiedPath, depth int, links *[]Link) string {
	selfType := r.typeString(&qp.SelfType, depth+1, links)
	if qp.Trait == nil {
		return selfType + "::" + qp.Name
	}
	traitName := qp.Trait.ShortName()
	r.collectLink(traitName, qp.Trait.ID, links)
	return "<" + selfType + " as " + traitName + ">::" + qp.Name
}

// isSyntheticLifetime reports whether a lifetime name was invented by the
// compiler or a proc macro ('_, '_N, 'lifeN, 'async_trait). These carry
// no information for a reader and are dropped from rendered declarations.
func isSyntheticLifetime(name string) bool {
	if name == "'_" || name == "'async_trait" {
		return true
	}
	if rest, ok := strings.CutPrefix(name, "'_"); ok {
		return allDigits(rest)
	}
	if rest, ok := strings.CutPrefix(name, "'life"); ok {
		return allDigits(rest)
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
