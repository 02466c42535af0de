// Package link turns item identifiers into hrefs. Local items link into
// the generated tree, items owned by workspace siblings link into the
// sibling's tree, everything else falls back to the public registry.
// Dangling identifiers resolve to NoLink; they are expected in real
// exports and never fail the run.
package link

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/oxidoc/oxidoc/internal/resolve"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

// Kind classifies a resolved destination.
type Kind int

const (
	// NoLink means the identifier is present in neither index; render the
	// bare name as plain text.
	NoLink Kind = iota
	// Internal targets a document generated by this invocation.
	Internal
	// Sibling targets a document generated for a workspace sibling.
	Sibling
	// External targets registry-hosted documentation.
	External
)

// Target is a resolved destination.
type Target struct {
	Kind Kind
	Href string
}

// Resolver computes link targets. Resolution is memoised so the same
// identifier always yields the same target within a run.
type Resolver struct {
	res       *resolve.Resolution
	basePath  string
	workspace map[string]bool // normalised sibling package names
	cache     map[rustdoc.ID]Target
}

// NewResolver builds a Resolver. basePath prefixes every internal href
// ("" means relative-to-root linking); workspace lists sibling package
// names whose items resolve internally instead of externally.
func NewResolver(res *resolve.Resolution, basePath string, workspace []string) *Resolver {
	ws := make(map[string]bool, len(workspace))
	for _, name := range workspace {
		ws[normalizeCrateName(name)] = true
	}
	return &Resolver{
		res:       res,
		basePath:  strings.TrimSuffix(basePath, "/"),
		workspace: ws,
		cache:     make(map[rustdoc.ID]Target),
	}
}

// Resolve maps an identifier to its destination. See the package comment
// for the decision order. It never fails.
func (r *Resolver) Resolve(id rustdoc.ID) Target {
	if t, ok := r.cache[id]; ok {
		return t
	}
	t := r.resolve(id)
	r.cache[id] = t
	return t
}

func (r *Resolver) resolve(id rustdoc.ID) Target {
	if path, ok := r.res.Primary(id); ok {
		return Target{Kind: Internal, Href: r.internalHref(id, path)}
	}

	summary, ok := r.res.Crate.Paths[id]
	if !ok || len(summary.Path) == 0 {
		slog.Debug("dangling cross-reference", "id", id)
		return Target{Kind: NoLink}
	}

	// Local items without a placement were excluded from the output
	// (private, or reachable only through broken chains). They have no
	// document anywhere; only foreign summaries fall through to the
	// sibling and registry branches.
	if summary.CrateID == 0 {
		slog.Debug("excluded local item", "id", id, "path", strings.Join(summary.Path, "::"))
		return Target{Kind: NoLink}
	}

	crateName := summary.Path[0]
	if real := r.res.Crate.ExternalCrateName(summary.CrateID); real != "" {
		crateName = real
	}

	if r.workspace[normalizeCrateName(crateName)] {
		return Target{Kind: Sibling, Href: r.siblingHref(crateName, summary)}
	}
	return Target{Kind: External, Href: externalHref(crateName, summary)}
}

// internalHref builds the path of the document the item is emitted to,
// from its canonical placement, including the collision ordinal when an
// earlier same-kind, same-name item took the base name.
func (r *Resolver) internalHref(id rustdoc.ID, path resolve.Path) string {
	item := r.res.Crate.Index[id]
	if item != nil && item.Inner.Kind == rustdoc.KindModule {
		return r.basePath + "/" + strings.Join(path, "/") + "/"
	}
	segs := []string(path)
	dir := strings.Join(segs[:len(segs)-1], "/")
	name := segs[len(segs)-1]
	prefix := "struct."
	if item != nil {
		prefix = KindPrefix(item.Inner.Kind)
	}
	return fmt.Sprintf("%s/%s/%s%s%s", r.basePath, dir, prefix, name, r.collisionOrdinal(item, path))
}

// collisionOrdinal mirrors the emitter's file naming: among the items
// canonically placed under the same kind-prefixed name in one module,
// the first (lowest id, module display order) keeps the base name and
// the rest get ".2", ".3", ... suffixes.
func (r *Resolver) collisionOrdinal(item *rustdoc.Item, path resolve.Path) string {
	if item == nil || item.Name == nil {
		return ""
	}
	mod, ok := r.res.Module(resolve.Path(path[:len(path)-1]).String())
	if !ok {
		return ""
	}
	prefix := KindPrefix(item.Inner.Kind)
	n := 0
	for _, other := range mod.Items {
		if other.Name == nil || *other.Name != *item.Name || KindPrefix(other.Inner.Kind) != prefix {
			continue
		}
		if primary, ok := r.res.Primary(other.ID); !ok || primary.String() != path.String() {
			continue
		}
		if other.ID == item.ID {
			break
		}
		n++
	}
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(".%d", n+1)
}

// siblingHref builds an internal-style path under the sibling package's
// output root, from the external summary's path segments.
func (r *Resolver) siblingHref(crateName string, summary rustdoc.ItemSummary) string {
	name := summary.Path[len(summary.Path)-1]
	middle := summary.Path[1 : len(summary.Path)-1]
	prefix := summaryKindPrefix(summary.Kind)
	if len(middle) == 0 {
		return fmt.Sprintf("%s/%s/%s%s", r.basePath, crateName, prefix, name)
	}
	return fmt.Sprintf("%s/%s/%s/%s%s", r.basePath, crateName, strings.Join(middle, "/"), prefix, name)
}

// externalHref builds a registry URL: doc.rust-lang.org for the standard
// library crates, the docs.rs template otherwise. A version is never
// known for dependencies, so "latest" stands in; that is a valid value,
// not an error.
func externalHref(crateName string, summary rustdoc.ItemSummary) string {
	name := summary.Path[len(summary.Path)-1]
	middle := strings.Join(summary.Path[1:len(summary.Path)-1], "/")
	kind := summaryKind(summary.Kind)

	if crateName == "std" || crateName == "core" || crateName == "alloc" {
		if middle == "" {
			return fmt.Sprintf("https://doc.rust-lang.org/%s/%s.%s.html", crateName, kind, name)
		}
		return fmt.Sprintf("https://doc.rust-lang.org/%s/%s/%s.%s.html", crateName, middle, kind, name)
	}

	libName := normalizeCrateName(crateName)
	if middle == "" {
		return fmt.Sprintf("https://docs.rs/%s/latest/%s/%s.%s.html", crateName, libName, kind, name)
	}
	return fmt.Sprintf("https://docs.rs/%s/latest/%s/%s/%s.%s.html", crateName, libName, middle, kind, name)
}

// KindPrefix is the rustdoc-style file-name prefix for an item kind
// ("struct.", "fn.", ...). Modules have none; they map to directories.
func KindPrefix(kind rustdoc.ItemKind) string {
	switch kind {
	case rustdoc.KindFunction:
		return "fn."
	case rustdoc.KindStruct:
		return "struct."
	case rustdoc.KindEnum:
		return "enum."
	case rustdoc.KindTrait:
		return "trait."
	case rustdoc.KindConstant:
		return "constant."
	case rustdoc.KindStatic:
		return "static."
	case rustdoc.KindTypeAlias:
		return "type."
	case rustdoc.KindMacro, rustdoc.KindProcMacro:
		return "macro."
	case rustdoc.KindPrimitive:
		return "primitive."
	case rustdoc.KindModule:
		return ""
	}
	return "struct."
}

func summaryKindPrefix(kind string) string {
	if k := summaryKind(kind); k != "" {
		return k + "."
	}
	return "struct."
}

// summaryKind maps an ItemSummary kind to the URL segment rustdoc uses.
func summaryKind(kind string) string {
	switch kind {
	case "struct", "union":
		return "struct"
	case "enum":
		return "enum"
	case "trait":
		return "trait"
	case "function":
		return "fn"
	case "type_alias":
		return "type"
	case "constant":
		return "constant"
	case "static":
		return "static"
	case "macro", "proc_attribute", "proc_derive":
		return "macro"
	case "primitive":
		return "primitive"
	}
	return "struct"
}

// normalizeCrateName maps a Cargo package name to the Rust lib name.
// Cargo.toml uses hyphens where rustdoc paths use underscores.
func normalizeCrateName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
