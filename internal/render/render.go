// Package render produces the canonical textual form of items: plain
// Rust declarations for signatures, and markdown page bodies for the
// emitted documents. Rendering is deterministic; the same item always
// yields the same string. Link destinations are collected alongside the
// text so pages can carry an interactive link manifest instead of
// embedding URLs in code blocks.
package render

import (
	"github.com/oxidoc/oxidoc/internal/link"
	"github.com/oxidoc/oxidoc/internal/resolve"
)

// Link pairs a rendered token with its resolved destination.
type Link struct {
	Text string
	Href string
}

// Renderer formats items of one resolved export.
type Renderer struct {
	res            *resolve.Resolution
	links          *link.Resolver
	includePrivate bool
}

// New builds a Renderer over a resolution and its link resolver.
func New(res *resolve.Resolution, links *link.Resolver, includePrivate bool) *Renderer {
	return &Renderer{res: res, links: links, includePrivate: includePrivate}
}
