package render

import (
	"fmt"
	"strings"

	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

// Signature renders the canonical plain-text declaration of an item. It
// is total: every payload variant produces a string, and kinds unknown to
// this build produce a marked placeholder instead of aborting the run.
func (r *Renderer) Signature(item *rustdoc.Item) string {
	code, _ := r.definition(item, false)
	return code
}

// Definition renders the declaration shown in an item's code block,
// together with the link manifest for the named types it mentions.
func (r *Renderer) Definition(item *rustdoc.Item) (string, []Link) {
	return r.definition(item, true)
}

func (r *Renderer) definition(item *rustdoc.Item, linked bool) (string, []Link) {
	var links []Link
	var collect *[]Link
	if linked {
		collect = &links
	}

	name := ""
	if item.Name != nil {
		name = *item.Name
	}
	vis := item.Visibility.String()
	if vis != "" {
		vis += " "
	}

	switch item.Inner.Kind {
	case rustdoc.KindFunction:
		return r.fnSignature(name, item.Inner.Function, collect), links
	case rustdoc.KindStruct:
		return r.structDefinition(vis, name, item.Inner.Struct, collect), links
	case rustdoc.KindEnum:
		return r.enumDefinition(vis, name, item.Inner.Enum, collect), links
	case rustdoc.KindTrait:
		return r.traitDefinition(vis, name, item.Inner.Trait), links
	case rustdoc.KindTypeAlias:
		ta := item.Inner.TypeAlias
		if ta == nil {
			return vis + "type " + name + ";", links
		}
		generics := genericList(ta.Generics)
		return vis + "type " + name + generics + " = " + r.typeString(&ta.Type, 0, collect) + ";", links
	case rustdoc.KindConstant:
		c := item.Inner.Constant
		if c == nil {
			return vis + "const " + name + ";", links
		}
		return vis + "const " + name + ": " + r.typeString(&c.Type, 0, collect) + " = " + c.Const.Expr + ";", links
	case rustdoc.KindStatic:
		s := item.Inner.Static
		if s == nil {
			return vis + "static " + name + ";", links
		}
		mut := ""
		if s.IsMutable {
			mut = "mut "
		}
		out := vis + "static " + mut + name + ": " + r.typeString(&s.Type, 0, collect)
		if s.Expr != "" {
			out += " = " + s.Expr
		}
		return out + ";", links
	case rustdoc.KindMacro, rustdoc.KindProcMacro:
		if item.Inner.Macro != nil && *item.Inner.Macro != "" {
			return *item.Inner.Macro, links
		}
		return "macro_rules! " + name + " { /* ... */ }", links
	case rustdoc.KindPrimitive:
		return name, links
	case rustdoc.KindModule:
		return vis + "mod " + name, links
	case rustdoc.KindUse:
		u := item.Inner.Use
		if u == nil {
			return vis + "use " + name + ";", links
		}
		if u.IsGlob {
			return vis + "use " + u.Source + "::*;", links
		}
		return vis + "use " + u.Source + ";", links
	case rustdoc.KindStructField:
		return name + ": " + r.typeString(item.Inner.StructField, 0, collect), links
	}
	return fmt.Sprintf("// unsupported item kind: %s", item.Inner.Kind), links
}

// fnSignature renders a function or method declaration. Signatures with
// more than three parameters, or longer than 80 characters on one line,
// wrap one parameter per line like rustdoc does.
func (r *Renderer) fnSignature(name string, fn *rustdoc.Function, links *[]Link) string {
	if fn == nil {
		return "fn " + name + "(...)"
	}

	var b strings.Builder
	if fn.Header.IsConst {
		b.WriteString("const ")
	}
	if fn.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}
	if fn.Header.IsAsync {
		b.WriteString("async ")
	}

	generics := genericList(fn.Generics)

	params := make([]string, 0, len(fn.Sig.Inputs))
	for i := range fn.Sig.Inputs {
		in := &fn.Sig.Inputs[i]
		if in.Name == "self" {
			params = append(params, selfShorthand(&in.Type))
			continue
		}
		params = append(params, in.Name+": "+r.typeString(&in.Type, 0, links))
	}

	singleLine := "fn " + name + generics + "(" + strings.Join(params, ", ") + ")"
	b.WriteString("fn ")
	b.WriteString(name)
	b.WriteString(generics)
	if len(params) > 3 || len(singleLine) > 80 {
		b.WriteString("(\n")
		for i, p := range params {
			b.WriteString("    ")
			b.WriteString(p)
			if i < len(params)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(")")
	} else {
		b.WriteString("(")
		b.WriteString(strings.Join(params, ", "))
		b.WriteString(")")
	}

	if fn.Sig.Output != nil {
		b.WriteString(" -> ")
		b.WriteString(r.typeString(fn.Sig.Output, 0, links))
	}
	return b.String()
}

// selfShorthand renders a receiver in conventional form. The exporter
// spells receivers out as fully annotated types (&'life0 mut Self);
// readers expect &mut self.
func selfShorthand(t *rustdoc.Type) string {
	if t.BorrowedRef == nil {
		return "self"
	}
	out := "&"
	if lt := t.BorrowedRef.Lifetime; lt != nil && !isSyntheticLifetime(*lt) {
		out += *lt + " "
	}
	if t.BorrowedRef.IsMutable {
		out += "mut "
	}
	return out + "self"
}

func (r *Renderer) structDefinition(vis, name string, s *rustdoc.Struct, links *[]Link) string {
	if s == nil {
		return vis + "struct " + name + ";"
	}
	code := vis + "struct " + name + genericList(s.Generics)

	switch {
	case s.Kind.Plain != nil:
		fields := r.visibleFields(s.Kind.Plain.Fields)
		if len(fields) == 0 {
			return code + ";"
		}
		code += " {"
		for _, field := range fields {
			fieldVis := field.Visibility.String()
			if fieldVis != "" {
				fieldVis += " "
			}
			code += "\n    " + fieldVis + *field.Name + ": " + r.typeString(field.Inner.StructField, 0, links) + ","
		}
		return code + "\n}"
	case s.Kind.Tuple != nil:
		var types []string
		for _, field := range r.visibleTupleFields(s.Kind.Tuple) {
			fieldVis := field.Visibility.String()
			if fieldVis != "" {
				fieldVis += " "
			}
			types = append(types, fieldVis+r.typeString(field.Inner.StructField, 0, links))
		}
		return code + "(" + strings.Join(types, ", ") + ");"
	default:
		return code + ";"
	}
}

func (r *Renderer) enumDefinition(vis, name string, e *rustdoc.Enum, links *[]Link) string {
	if e == nil {
		return vis + "enum " + name + " {}"
	}
	code := vis + "enum " + name + genericList(e.Generics) + " {"
	for _, variantID := range e.Variants {
		variant, ok := r.res.Crate.Index[variantID]
		if !ok || variant.Name == nil {
			continue
		}
		code += "\n    " + *variant.Name + r.variantPayload(variant, links) + ","
	}
	return code + "\n}"
}

// variantPayload renders a variant's fields: nothing for plain variants,
// a positional type list for tuple variants, a brace block for struct
// variants.
func (r *Renderer) variantPayload(variant *rustdoc.Item, links *[]Link) string {
	v := variant.Inner.Variant
	if v == nil {
		return ""
	}
	switch {
	case v.Kind.Tuple != nil:
		var types []string
		for _, field := range r.visibleTupleFields(v.Kind.Tuple) {
			types = append(types, r.typeString(field.Inner.StructField, 0, links))
		}
		return "(" + strings.Join(types, ", ") + ")"
	case v.Kind.Struct != nil:
		var fields []string
		for _, field := range r.visibleFields(v.Kind.Struct.Fields) {
			fields = append(fields, *field.Name+": "+r.typeString(field.Inner.StructField, 0, links))
		}
		return " { " + strings.Join(fields, ", ") + " }"
	}
	return ""
}

func (r *Renderer) traitDefinition(vis, name string, t *rustdoc.Trait) string {
	code := vis
	if t != nil && t.IsUnsafe {
		code += "unsafe "
	}
	code += "trait " + name
	if t != nil {
		code += genericList(t.Generics)
	}
	return code + " { /* ... */ }"
}

// visibleFields filters named fields by the include-private policy.
func (r *Renderer) visibleFields(ids []rustdoc.ID) []*rustdoc.Item {
	var out []*rustdoc.Item
	for _, id := range ids {
		field, ok := r.res.Crate.Index[id]
		if !ok || field.Name == nil || field.Inner.StructField == nil {
			continue
		}
		if !field.Visibility.IsPublic() && !r.includePrivate {
			continue
		}
		out = append(out, field)
	}
	return out
}

// visibleTupleFields filters positional fields; stripped fields arrive as
// nil ids.
func (r *Renderer) visibleTupleFields(ids []*rustdoc.ID) []*rustdoc.Item {
	var out []*rustdoc.Item
	for _, id := range ids {
		if id == nil {
			continue
		}
		field, ok := r.res.Crate.Index[*id]
		if !ok || field.Inner.StructField == nil {
			continue
		}
		if !field.Visibility.IsPublic() && !r.includePrivate {
			continue
		}
		out = append(out, field)
	}
	return out
}

// genericList renders the declaration's generic parameters in declaration
// order, with compiler-invented lifetimes dropped.
func genericList(g rustdoc.Generics) string {
	var names []string
	for _, p := range g.Params {
		if p.Kind.Lifetime && isSyntheticLifetime(p.Name) {
			continue
		}
		if p.Kind.Const {
			names = append(names, "const "+p.Name)
			continue
		}
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return "<" + strings.Join(names, ", ") + ">"
}
