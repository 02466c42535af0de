// Package emit decides which documents get written and where. Output
// granularity is configurable; in multi-file modes every item is emitted
// exactly once, at its canonical placement, with a kind-prefixed file
// name. Name collisions never overwrite: they get a deterministic
// ordinal instead.
package emit

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/oxidoc/oxidoc/internal/link"
	"github.com/oxidoc/oxidoc/internal/render"
	"github.com/oxidoc/oxidoc/internal/resolve"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

// Granularity selects the output layout.
type Granularity int

const (
	// Single aggregates the whole crate into one document.
	Single Granularity = iota
	// PerModule writes one document per module.
	PerModule
	// PerItem writes a module overview plus one document per item.
	PerItem
)

func (g Granularity) String() string {
	switch g {
	case Single:
		return "single"
	case PerModule:
		return "per-module"
	case PerItem:
		return "per-item"
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

// ParseGranularity maps a configuration string to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "single":
		return Single, nil
	case "per-module", "module":
		return PerModule, nil
	case "per-item", "item", "multifile":
		return PerItem, nil
	}
	return 0, fmt.Errorf("unknown granularity %q (want single, per-module or per-item)", s)
}

// Unit is one document to write: destination path, rendered body, and
// the link manifest of the body's cross-references.
type Unit struct {
	Path  string
	Body  string
	Links []render.Link
}

// Planner computes the output set for one resolved export.
type Planner struct {
	res      *resolve.Resolution
	renderer *render.Renderer
	root     string
}

// NewPlanner builds a Planner. The root is joined in front of every unit
// path.
func NewPlanner(res *resolve.Resolution, r *render.Renderer, root string) *Planner {
	return &Planner{res: res, renderer: r, root: root}
}

// Plan produces the ordered output set for the chosen granularity. The
// result is deterministic: the same resolution yields the same units in
// the same order.
func (p *Planner) Plan(g Granularity) []Unit {
	switch g {
	case Single:
		return []Unit{p.singleDocument()}
	case PerModule:
		return p.perModule()
	default:
		return p.perItem()
	}
}

// perItem emits an index.md per module plus one file per item placed at
// its canonical location.
func (p *Planner) perItem() []Unit {
	var units []Unit
	for _, mod := range p.res.SortedModules() {
		body, links := p.renderer.ModulePage(mod)
		units = append(units, Unit{
			Path:  path.Join(p.root, modDir(mod.Path), "index.md"),
			Body:  body,
			Links: links,
		})

		taken := map[string]int{}
		for _, item := range p.canonicalItems(mod) {
			body, links := p.renderer.ItemPage(item, mod.Path.Child(*item.Name))
			units = append(units, Unit{
				Path:  p.itemFile(mod, item, taken),
				Body:  body,
				Links: links,
			})
		}
	}
	return units
}

// perModule emits one document per module carrying the overview and the
// full body of every item placed there.
func (p *Planner) perModule() []Unit {
	var units []Unit
	for _, mod := range p.res.SortedModules() {
		body, links := p.renderer.ModulePage(mod)
		var b strings.Builder
		b.WriteString(body)
		for _, item := range p.canonicalItems(mod) {
			itemBody, itemLinks := p.renderer.ItemPage(item, mod.Path.Child(*item.Name))
			b.WriteString("\n---\n\n")
			b.WriteString(stripFrontmatter(itemBody))
			links = append(links, itemLinks...)
		}
		units = append(units, Unit{
			Path:  path.Join(p.root, modDir(mod.Path), "index.md"),
			Body:  b.String(),
			Links: links,
		})
	}
	return units
}

// singleDocument aggregates every module into one file with a table of
// contents up front.
func (p *Planner) singleDocument() Unit {
	var links []render.Link
	var toc, content strings.Builder

	for _, mod := range p.res.SortedModules() {
		fmt.Fprintf(&toc, "- **%s**\n", mod.Path.String())
		fmt.Fprintf(&content, "# Module: `%s`\n\n", mod.Path.String())
		for _, item := range p.canonicalItems(mod) {
			full := mod.Path.Child(*item.Name).String()
			anchor := strings.ToLower(strings.ReplaceAll(full, "::", "-"))
			fmt.Fprintf(&toc, "  - [%s](#%s)\n", *item.Name, anchor)

			body, itemLinks := p.renderer.ItemPage(item, mod.Path.Child(*item.Name))
			fmt.Fprintf(&content, "## %s\n\n%s\n", full, stripFrontmatter(body))
			links = append(links, itemLinks...)
		}
		content.WriteString("---\n\n")
	}

	return Unit{
		Path:  path.Join(p.root, p.res.Package+".md"),
		Body:  toc.String() + "\n" + content.String(),
		Links: links,
	}
}

// canonicalItems returns the module's items whose canonical placement is
// this module, in the module's display order. Re-exported items show up
// in several modules but are emitted only at their primary placement.
func (p *Planner) canonicalItems(mod *resolve.Module) []*rustdoc.Item {
	var out []*rustdoc.Item
	for _, item := range mod.Items {
		primary, ok := p.res.Primary(item.ID)
		if !ok {
			continue
		}
		if primary.String() == mod.Path.Child(*item.Name).String() {
			out = append(out, item)
		}
	}
	return out
}

// itemFile computes the kind-prefixed destination of an item, appending
// an ordinal when an earlier item of the same kind and name already took
// the base name. Items arrive in id order for equal names, so ordinals
// are stable across runs.
func (p *Planner) itemFile(mod *resolve.Module, item *rustdoc.Item, taken map[string]int) string {
	base := link.KindPrefix(item.Inner.Kind) + *item.Name
	n := taken[base]
	taken[base] = n + 1
	if n == 0 {
		return path.Join(p.root, modDir(mod.Path), base+".md")
	}
	return path.Join(p.root, modDir(mod.Path), fmt.Sprintf("%s.%d.md", base, n+1))
}

func modDir(p resolve.Path) string {
	return strings.Join(p, "/")
}

// stripFrontmatter removes the leading YAML block and component imports
// from a standalone page body so it can be nested inside an aggregated
// document.
func stripFrontmatter(body string) string {
	rest, ok := strings.CutPrefix(body, "---\n")
	if !ok {
		return body
	}
	_, rest, ok = strings.Cut(rest, "\n---\n")
	if !ok {
		return body
	}
	rest = strings.TrimPrefix(rest, "\n")
	for strings.HasPrefix(rest, "import ") {
		_, rest, _ = strings.Cut(rest, "\n")
	}
	return strings.TrimPrefix(rest, "\n")
}

// SortUnits orders units by path; collision ordinals aside, unit order is
// already deterministic, this is for callers that merge several plans.
func SortUnits(units []Unit) {
	sort.SliceStable(units, func(i, j int) bool { return units[i].Path < units[j].Path })
}
