package render

import (
	"fmt"
	"strings"

	"github.com/oxidoc/oxidoc/internal/impls"
	"github.com/oxidoc/oxidoc/internal/link"
	"github.com/oxidoc/oxidoc/internal/resolve"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

const componentImports = "import RustCode from '@site/src/components/RustCode';\nimport Link from '@docusaurus/Link';\n\n"

// TypeLabel is the human label for an item kind ("Struct", "Function").
// Kinds unknown to this build get "Item".
func TypeLabel(kind rustdoc.ItemKind) string {
	switch kind {
	case rustdoc.KindFunction:
		return "Function"
	case rustdoc.KindStruct:
		return "Struct"
	case rustdoc.KindEnum:
		return "Enum"
	case rustdoc.KindTrait:
		return "Trait"
	case rustdoc.KindConstant:
		return "Constant"
	case rustdoc.KindStatic:
		return "Static"
	case rustdoc.KindTypeAlias:
		return "Type"
	case rustdoc.KindMacro, rustdoc.KindProcMacro:
		return "Macro"
	case rustdoc.KindPrimitive:
		return "Primitive"
	case rustdoc.KindModule:
		return "Module"
	}
	return "Item"
}

// ItemPage renders the standalone document of one item at the given
// display path. The returned manifest lists every link the body mentions.
func (r *Renderer) ItemPage(item *rustdoc.Item, path resolve.Path) (string, []Link) {
	var links []Link
	name := ""
	if item.Name != nil {
		name = *item.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: \"%s %s\"\n---\n\n", TypeLabel(item.Inner.Kind), name)
	b.WriteString(componentImports)
	fmt.Fprintf(&b, "**%s**\n\n", path.String())

	if dep := item.Deprecation; dep != nil {
		b.WriteString(deprecationNotice(dep))
	}

	switch item.Inner.Kind {
	case rustdoc.KindStruct:
		r.typeItemBody(&b, item, &links)
		r.structSections(&b, item, &links)
		r.implSections(&b, item, &links)
	case rustdoc.KindEnum:
		r.typeItemBody(&b, item, &links)
		r.enumSections(&b, item)
		r.implSections(&b, item, &links)
	case rustdoc.KindTrait:
		fmt.Fprintf(&b, "```rust\n%s\n```\n\n", r.Signature(item))
		if docs := r.docBody(item, &links); docs != "" {
			b.WriteString(docs + "\n\n")
		}
		r.traitSections(&b, item)
	default:
		fmt.Fprintf(&b, "*%s*\n\n", TypeLabel(item.Inner.Kind))
		if docs := r.docBody(item, &links); docs != "" {
			b.WriteString(docs + "\n\n")
		}
		code, codeLinks := r.Definition(item)
		links = append(links, codeLinks...)
		fmt.Fprintf(&b, "<RustCode code={`%s`} links={%s} />\n\n", code, linksJSON(codeLinks))
	}

	return b.String(), links
}

// typeItemBody writes the definition code block followed by the item's
// documentation and generic parameter list.
func (r *Renderer) typeItemBody(b *strings.Builder, item *rustdoc.Item, links *[]Link) {
	code, codeLinks := r.Definition(item)
	*links = append(*links, codeLinks...)
	fmt.Fprintf(b, "<RustCode code={`%s`} links={%s} />\n\n", code, linksJSON(codeLinks))

	if docs := r.docBody(item, links); docs != "" {
		b.WriteString(docs + "\n\n")
	}

	var g rustdoc.Generics
	switch item.Inner.Kind {
	case rustdoc.KindStruct:
		g = item.Inner.Struct.Generics
	case rustdoc.KindEnum:
		g = item.Inner.Enum.Generics
	}
	var params []string
	for _, p := range g.Params {
		if p.Kind.Lifetime && isSyntheticLifetime(p.Name) {
			continue
		}
		if p.Kind.Const {
			params = append(params, "const "+p.Name)
		} else {
			params = append(params, p.Name)
		}
	}
	if len(params) > 0 {
		b.WriteString("### Generic Parameters\n\n")
		for _, p := range params {
			fmt.Fprintf(b, "- %s\n", p)
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) structSections(b *strings.Builder, item *rustdoc.Item, links *[]Link) {
	s := item.Inner.Struct
	if s == nil {
		return
	}
	switch {
	case s.Kind.Plain != nil:
		fields := r.visibleFields(s.Kind.Plain.Fields)
		if len(fields) == 0 {
			return
		}
		b.WriteString("### Fields\n\n")
		for _, field := range fields {
			var fieldLinks []Link
			sig := *field.Name + ": " + r.typeString(field.Inner.StructField, 0, &fieldLinks)
			*links = append(*links, fieldLinks...)
			fmt.Fprintf(b, "<RustCode inline code={`%s`} links={%s} />\n\n", sig, linksJSON(fieldLinks))
			if doc := firstDocLine(field); doc != "" {
				fmt.Fprintf(b, "<div className=\"rust-field-doc\">%s</div>\n\n", doc)
			}
		}
	case s.Kind.Tuple != nil:
		var types []string
		for _, field := range r.visibleTupleFields(s.Kind.Tuple) {
			types = append(types, r.typeString(field.Inner.StructField, 0, nil))
		}
		fmt.Fprintf(b, "**Tuple Struct**: `(%s)`\n\n", strings.Join(types, ", "))
	default:
		b.WriteString("**Unit Struct**\n\n")
	}
}

func (r *Renderer) enumSections(b *strings.Builder, item *rustdoc.Item) {
	e := item.Inner.Enum
	if e == nil || len(e.Variants) == 0 {
		return
	}
	b.WriteString("### Variants\n\n")
	for _, variantID := range e.Variants {
		variant, ok := r.res.Crate.Index[variantID]
		if !ok || variant.Name == nil {
			continue
		}
		fmt.Fprintf(b, "- `%s%s`", *variant.Name, r.variantPayload(variant, nil))
		if doc := firstDocLine(variant); doc != "" {
			fmt.Fprintf(b, " - %s", doc)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// implSections writes the Methods, Traits and Trait Implementations
// sections from the classified implementation blocks of the item.
func (r *Renderer) implSections(b *strings.Builder, item *rustdoc.Item, links *[]Link) {
	group := impls.Classify(r.res.Crate, item.ID)

	if len(group.Inherent) > 0 {
		b.WriteString("### Methods\n\n")
		for _, block := range group.Inherent {
			r.writeImplMethods(b, block.Inner.Impl, links)
		}
	}

	derives, withMethods := group.Derives()
	if len(derives) > 0 {
		names := make([]string, len(derives))
		for i, d := range derives {
			names[i] = d.Trait.Path
		}
		fmt.Fprintf(b, "**Traits:** %s\n\n", strings.Join(names, ", "))
	}

	if len(withMethods) > 0 {
		b.WriteString("### Trait Implementations\n\n")
		for _, ti := range withMethods {
			fmt.Fprintf(b, "#### %s\n\n", ti.Trait.Path)
			for _, method := range ti.Methods {
				r.writeMethod(b, method, links)
			}
			if len(ti.ProvidedDefaults) > 0 {
				fmt.Fprintf(b, "*Provided via default: %s*\n\n", strings.Join(ti.ProvidedDefaults, ", "))
			}
		}
	}
}

func (r *Renderer) writeImplMethods(b *strings.Builder, impl *rustdoc.Impl, links *[]Link) {
	if impl == nil {
		return
	}
	for _, methodID := range impl.Items {
		method, ok := r.res.Crate.Index[methodID]
		if !ok || method.Inner.Function == nil || method.Name == nil {
			continue
		}
		r.writeMethod(b, method, links)
	}
}

func (r *Renderer) writeMethod(b *strings.Builder, method *rustdoc.Item, links *[]Link) {
	var sigLinks []Link
	sig := r.fnSignature(*method.Name, method.Inner.Function, &sigLinks)
	*links = append(*links, sigLinks...)
	fmt.Fprintf(b, "<RustCode inline code={`%s`} links={%s} />\n\n", sig, linksJSON(sigLinks))
	if doc := firstDocLine(method); doc != "" {
		b.WriteString(doc + "\n\n")
	}
	b.WriteString("---\n\n")
}

func (r *Renderer) traitSections(b *strings.Builder, item *rustdoc.Item) {
	t := item.Inner.Trait
	if t == nil || len(t.Items) == 0 {
		return
	}
	b.WriteString("### Methods\n\n")
	for _, methodID := range t.Items {
		method, ok := r.res.Crate.Index[methodID]
		if !ok || method.Name == nil {
			continue
		}
		fmt.Fprintf(b, "- `%s`", *method.Name)
		if doc := firstDocLine(method); doc != "" {
			fmt.Fprintf(b, ": %s", doc)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func deprecationNotice(dep *rustdoc.Deprecation) string {
	note := "Deprecated"
	if dep.Since != nil && *dep.Since != "" {
		note += " since " + *dep.Since
	}
	if dep.Note != nil && *dep.Note != "" {
		note += ": " + *dep.Note
	}
	return fmt.Sprintf(":::warning\n%s\n:::\n\n", note)
}

// kindSections is the fixed ordering of item listings on a module
// overview page.
var kindSections = []struct {
	label string
	class string
	kinds []rustdoc.ItemKind
}{
	{"Structs", "rust-struct", []rustdoc.ItemKind{rustdoc.KindStruct}},
	{"Enums", "rust-struct", []rustdoc.ItemKind{rustdoc.KindEnum}},
	{"Functions", "rust-fn", []rustdoc.ItemKind{rustdoc.KindFunction}},
	{"Traits", "rust-trait", []rustdoc.ItemKind{rustdoc.KindTrait}},
	{"Constants", "rust-constant", []rustdoc.ItemKind{rustdoc.KindConstant}},
	{"Statics", "rust-static", []rustdoc.ItemKind{rustdoc.KindStatic}},
	{"Type Aliases", "rust-type", []rustdoc.ItemKind{rustdoc.KindTypeAlias}},
	{"Macros", "rust-macro", []rustdoc.ItemKind{rustdoc.KindMacro, rustdoc.KindProcMacro}},
	{"Primitives", "rust-item", []rustdoc.ItemKind{rustdoc.KindPrimitive}},
}

// ModulePage renders a module overview: breadcrumb, module docs, the
// re-exports section, the submodule list, then one section per item kind
// in fixed order.
func (r *Renderer) ModulePage(mod *resolve.Module) (string, []Link) {
	var links []Link
	var b strings.Builder

	short := mod.Name()
	fmt.Fprintf(&b, "---\ntitle: %s\nsidebar_label: %s\n---\n\n", short, short)
	b.WriteString(componentImports)
	fmt.Fprintf(&b, "**%s**\n\n", mod.Path.String())
	fmt.Fprintf(&b, "# Module %s\n\n", short)

	if docs := r.docBody(mod.Item, &links); docs != "" {
		b.WriteString(docs + "\n\n")
	}

	r.reexportSection(&b, mod, &links)

	if len(mod.Children) > 0 {
		b.WriteString("## Modules\n\n")
		for _, child := range mod.Children {
			fmt.Fprintf(&b, "<div><Link to=\"%s/\" className=\"rust-mod\">%s</Link>", child.Name(), child.Name())
			if doc := firstDocLine(child.Item); doc != "" {
				fmt.Fprintf(&b, " - %s", doc)
			}
			b.WriteString("</div>\n\n")
		}
	}

	for _, section := range kindSections {
		var members []*rustdoc.Item
		for _, it := range mod.Items {
			for _, kind := range section.kinds {
				if it.Inner.Kind == kind {
					members = append(members, it)
					break
				}
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", section.label)
		for _, it := range members {
			href := link.KindPrefix(it.Inner.Kind) + *it.Name
			fmt.Fprintf(&b, "<div><Link to=\"%s\" className=\"%s\">%s</Link>", href, section.class, *it.Name)
			if doc := firstDocLine(it); doc != "" {
				fmt.Fprintf(&b, " - %s", doc)
			}
			b.WriteString("</div>\n\n")
		}
	}

	return b.String(), links
}

// reexportSection lists the module's `use` declarations whose source is
// itself visible, rustdoc style.
func (r *Renderer) reexportSection(b *strings.Builder, mod *resolve.Module, links *[]Link) {
	var visible []*rustdoc.Item
	for _, use := range mod.Reexports {
		decl := use.Inner.Use
		if decl == nil {
			continue
		}
		if decl.ID != nil {
			if target, ok := r.res.Crate.Index[*decl.ID]; ok && !target.Visibility.IsPublic() && !r.includePrivate {
				continue
			}
		}
		visible = append(visible, use)
	}
	if len(visible) == 0 {
		return
	}

	b.WriteString("## Re-exports\n\n")
	for _, use := range visible {
		decl := use.Inner.Use
		code := "pub use " + decl.Source + ";"
		if decl.IsGlob {
			code = "pub use " + decl.Source + "::*;"
		}
		var useLinks []Link
		if decl.ID != nil {
			if target := r.links.Resolve(*decl.ID); target.Kind != link.NoLink {
				name := decl.Source
				if i := strings.LastIndex(name, "::"); i >= 0 {
					name = name[i+2:]
				}
				useLinks = append(useLinks, Link{Text: name, Href: target.Href})
			}
		}
		*links = append(*links, useLinks...)
		fmt.Fprintf(b, "<RustCode inline code={`%s`} links={%s} />\n\n", code, linksJSON(useLinks))
	}
}
