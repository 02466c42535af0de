// Package markdown rewrites intra-doc link targets in documentation
// prose. rustdoc leaves link destinations as Rust paths ("Value::as_str",
// "crate::Error"); the export pairs each with an item id, and the caller
// supplies the resolved hrefs here.
package markdown

import (
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// Applied records one rewritten link, for the page's link manifest.
type Applied struct {
	Text string // the original destination / shortcut key
	Href string
}

// RewriteDocLinks replaces intra-doc destinations with resolved hrefs and
// reports which targets were actually applied. Three markdown forms are
// handled: inline links `[text](Target)`, reference definitions
// `[ref]: Target`, and shortcut references `[Target]` with no
// destination of their own. Targets absent from the prose are ignored.
func RewriteDocLinks(src string, targets map[string]string) (string, []Applied) {
	if len(targets) == 0 || src == "" {
		return src, nil
	}

	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	// Destinations the parser actually saw, so plain prose that merely
	// mentions a target string is left alone.
	applied := make(map[string]string)
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if l, ok := node.(*ast.Link); ok {
			dest := string(l.Destination)
			if href, ok := targets[dest]; ok {
				applied[dest] = href
			}
		}
		return ast.GoToNext
	})

	out := src
	for dest, href := range applied {
		out = strings.ReplaceAll(out, "]("+dest+")", "]("+href+")")
		out = rewriteReferenceDefs(out, dest, href)
	}

	// Shortcut references are plain text to the parser; resolve them by
	// scanning for bracketed targets with no following destination.
	for dest, href := range targets {
		if _, done := applied[dest]; done {
			continue
		}
		rewritten, changed := rewriteShortcuts(out, dest, href)
		if changed {
			out = rewritten
			applied[dest] = href
		}
	}

	if len(applied) == 0 {
		return src, nil
	}
	keys := make([]string, 0, len(applied))
	for k := range applied {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]Applied, 0, len(keys))
	for _, k := range keys {
		list = append(list, Applied{Text: k, Href: applied[k]})
	}
	return out, list
}

// rewriteReferenceDefs rewrites `[ref]: dest` definition lines.
func rewriteReferenceDefs(src, dest, href string) string {
	suffix := "]: " + dest
	if !strings.Contains(src, suffix) {
		return src
	}
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), suffix) {
			lines[i] = strings.Replace(line, suffix, "]: "+href, 1)
		}
	}
	return strings.Join(lines, "\n")
}

// rewriteShortcuts turns `[dest]` into `[dest](href)` wherever the
// bracket pair is not already part of an inline or reference link.
func rewriteShortcuts(src, dest, href string) (string, bool) {
	needle := "[" + dest + "]"
	var b strings.Builder
	changed := false
	rest := src
	for {
		idx := strings.Index(rest, needle)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		after := rest[idx+len(needle):]
		// Already `[dest](...)`, `[dest][ref]` or `[dest]:`. Leave it.
		if strings.HasPrefix(after, "(") || strings.HasPrefix(after, "[") || strings.HasPrefix(after, ":") {
			b.WriteString(needle)
		} else {
			b.WriteString(needle + "(" + href + ")")
			changed = true
		}
		rest = after
	}
	if !changed {
		return src, false
	}
	return b.String(), true
}
