package render

import (
	"strings"

	"github.com/oxidoc/oxidoc/internal/link"
	"github.com/oxidoc/oxidoc/internal/markdown"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

// mdxBlockTags are the HTML elements MDX insists on having on their own
// lines, separated from surrounding prose by blank lines.
var mdxBlockTags = map[string]bool{
	"details":    true,
	"summary":    true,
	"div":        true,
	"table":      true,
	"pre":        true,
	"blockquote": true,
}

// docBody renders an item's documentation prose: intra-doc link targets
// are resolved to hrefs and rewritten in place, then the result is
// sanitized for MDX. The rewritten pairs join the page's link manifest.
func (r *Renderer) docBody(item *rustdoc.Item, links *[]Link) string {
	docs := item.DocText()
	if docs == "" {
		return ""
	}
	if len(item.Links) > 0 {
		targets := make(map[string]string, len(item.Links))
		for text, id := range item.Links {
			if target := r.links.Resolve(id); target.Kind != link.NoLink {
				targets[text] = target.Href
			}
		}
		rewritten, applied := markdown.RewriteDocLinks(docs, targets)
		docs = rewritten
		if links != nil {
			for _, a := range applied {
				*links = append(*links, Link{Text: a.Text, Href: a.Href})
			}
		}
	}
	return sanitizeDocs(docs)
}

// sanitizeDocs prepares documentation prose for MDX, which is stricter
// than markdown about inline HTML: block-level tags must sit on their own
// lines with a blank line before and after the block. rustdoc comments
// routinely open with "<details><summary>..." on one line.
func sanitizeDocs(docs string) string {
	lines := strings.Split(docs, "\n")
	var out []string

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		tag := openingBlockTag(trimmed)
		if tag == "" {
			out = append(out, lines[i])
			continue
		}

		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, splitTags(trimmed)...)

		closing := "</" + tag + ">"
		for i+1 < len(lines) {
			i++
			next := strings.TrimSpace(lines[i])
			if strings.Contains(next, closing) {
				out = append(out, splitTags(next)...)
				break
			}
			out = append(out, next)
		}
		if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

// openingBlockTag returns the tag name when a line starts a block-level
// HTML element, "" otherwise.
func openingBlockTag(line string) string {
	if !strings.HasPrefix(line, "<") || strings.HasPrefix(line, "</") {
		return ""
	}
	end := strings.IndexAny(line, "> ")
	if end < 0 {
		return ""
	}
	tag := line[1:end]
	if !mdxBlockTags[tag] {
		return ""
	}
	return tag
}

// splitTags puts each HTML tag in a line on its own line, keeping text
// between tags.
func splitTags(line string) []string {
	var out []string
	rest := line
	for rest != "" {
		start := strings.Index(rest, "<")
		if start < 0 {
			if strings.TrimSpace(rest) != "" {
				out = append(out, rest)
			}
			break
		}
		if start > 0 {
			out = append(out, rest[:start])
		}
		end := strings.Index(rest[start:], ">")
		if end < 0 {
			out = append(out, rest[start:])
			break
		}
		out = append(out, rest[start:start+end+1])
		rest = rest[start+end+1:]
	}
	return out
}

// linksJSON serializes a link manifest as the JSX array literal the
// RustCode component takes in its links prop.
func linksJSON(links []Link) string {
	if len(links) == 0 {
		return "[]"
	}
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = `{"text": "` + escapeJSON(l.Text) + `", "href": "` + escapeJSON(l.Href) + `"}`
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// firstDocLine returns the first non-empty line of an item's docs, for
// one-line summaries in listings.
func firstDocLine(item *rustdoc.Item) string {
	for _, line := range strings.Split(item.DocText(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
