package rustdoc

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// FormatVersion is the rustdoc JSON format version this build understands.
// Exports produced with any other version are rejected at load time.
const FormatVersion = 46

// ID identifies an item within a single export. IDs are not portable
// across exports.
type ID uint32

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// UnmarshalText lets IDs act as JSON map keys (the index and paths maps
// are keyed by stringified integers on the wire).
func (id *ID) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 10, 32)
	if err != nil {
		return fmt.Errorf("item id %q: %w", text, err)
	}
	*id = ID(v)
	return nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Crate is the top-level structure of a rustdoc JSON export.
type Crate struct {
	Root           ID                       `json:"root"`
	CrateVersion   *string                  `json:"crate_version"`
	IncludePrivate bool                     `json:"includes_private"`
	Index          map[ID]*Item             `json:"index"`
	Paths          map[ID]ItemSummary       `json:"paths"`
	ExternalCrates map[uint32]ExternalCrate `json:"external_crates"`
	FormatVersion  int                      `json:"format_version"`
}

// Name returns the crate name taken from the root module item.
func (c *Crate) Name() string {
	if root, ok := c.Index[c.Root]; ok && root.Name != nil {
		return *root.Name
	}
	return "unknown"
}

// Version returns the declared crate version, or "latest" when absent.
func (c *Crate) Version() string {
	if c.CrateVersion != nil && *c.CrateVersion != "" {
		return *c.CrateVersion
	}
	return "latest"
}

// docsRsCrateNameRe extracts the crate name from a docs.rs html_root_url,
// e.g. "https://docs.rs/tracing-core/0.1.36/x86_64-unknown-linux-gnu/".
var docsRsCrateNameRe = regexp.MustCompile(`^https?://docs\.rs/([^/]+)/`)

// ExternalCrateName looks up the Cargo package name for a dependency.
// The Name field carries the Rust lib name (underscores), which may differ
// from the Cargo name (hyphens); the html_root_url, when it points at
// docs.rs, carries the Cargo name, so it wins.
func (c *Crate) ExternalCrateName(crateID uint32) string {
	ext, ok := c.ExternalCrates[crateID]
	if !ok {
		return ""
	}
	if m := docsRsCrateNameRe.FindStringSubmatch(ext.HTMLRootURL); len(m) == 2 {
		return m[1]
	}
	return ext.Name
}

// ExternalCrate identifies a dependency crate.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// Item is a single documented declaration.
type Item struct {
	ID          ID            `json:"-"` // filled in by Load from the index key
	CrateID     uint32        `json:"crate_id"`
	Name        *string       `json:"name"`
	Visibility  Visibility    `json:"visibility"`
	Docs        *string       `json:"docs"`
	Deprecation *Deprecation  `json:"deprecation"`
	Links       map[string]ID `json:"links"` // intra-doc link text → target id
	Inner       ItemInner     `json:"inner"`
}

// DocText returns the item's documentation prose, or "".
func (it *Item) DocText() string {
	if it.Docs == nil {
		return ""
	}
	return *it.Docs
}

// ItemSummary gives the fully qualified path and kind for an item,
// including items defined in other crates.
type ItemSummary struct {
	CrateID uint32   `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Deprecation carries an item's deprecation attribute.
type Deprecation struct {
	Since *string `json:"since"`
	Note  *string `json:"note"`
}

// Visibility of an item. Restricted visibility keeps the restriction path
// (e.g. "crate::detail") for display.
type Visibility struct {
	Kind           VisibilityKind
	RestrictedPath string
}

type VisibilityKind int

const (
	VisibilityDefault VisibilityKind = iota
	VisibilityPublic
	VisibilityCrate
	VisibilityRestricted
)

func (v Visibility) IsPublic() bool { return v.Kind == VisibilityPublic }

func (v *Visibility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "public":
			v.Kind = VisibilityPublic
		case "crate":
			v.Kind = VisibilityCrate
		case "default":
			v.Kind = VisibilityDefault
		default:
			return fmt.Errorf("unknown visibility %q", s)
		}
		return nil
	}
	var restricted struct {
		Restricted struct {
			Parent ID     `json:"parent"`
			Path   string `json:"path"`
		} `json:"restricted"`
	}
	if err := json.Unmarshal(data, &restricted); err != nil {
		return fmt.Errorf("decoding visibility: %w", err)
	}
	v.Kind = VisibilityRestricted
	v.RestrictedPath = restricted.Restricted.Path
	return nil
}

func (v Visibility) String() string {
	switch v.Kind {
	case VisibilityPublic:
		return "pub"
	case VisibilityCrate:
		return "pub(crate)"
	case VisibilityRestricted:
		return fmt.Sprintf("pub(in %s)", v.RestrictedPath)
	default:
		return ""
	}
}
