package rustdoc

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// SchemaError reports a structurally unusable export: malformed JSON or a
// format version this build does not understand. Schema errors are always
// fatal; no output is produced.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema error in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// VersionError reports a format-version mismatch, naming both versions.
type VersionError struct {
	Found     int
	Supported int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported rustdoc format version %d (this build supports version %d)", e.Found, e.Supported)
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Load decodes a rustdoc JSON export and gates it on the supported format
// version. There is no recovery for malformed input.
func Load(r io.Reader) (*Crate, error) {
	var crate Crate
	dec := json.NewDecoder(r)
	if err := dec.Decode(&crate); err != nil {
		return nil, &SchemaError{Err: fmt.Errorf("decoding rustdoc JSON: %w", err)}
	}
	if crate.FormatVersion != FormatVersion {
		return nil, &SchemaError{Err: &VersionError{Found: crate.FormatVersion, Supported: FormatVersion}}
	}
	if _, ok := crate.Index[crate.Root]; !ok {
		return nil, &SchemaError{Err: fmt.Errorf("root item %s not present in index", crate.Root)}
	}
	// The wire format does not repeat an item's id inside the item.
	for id, item := range crate.Index {
		item.ID = id
	}
	return &crate, nil
}

// LoadFile loads an export from disk. Zstd- and gzip-compressed exports
// are detected by magic number and decompressed transparently; workspace
// exports are routinely shipped compressed.
func LoadFile(path string) (*Crate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}

	var r io.Reader = br
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, &SchemaError{Path: path, Err: fmt.Errorf("opening zstd stream: %w", err)}
		}
		defer zr.Close()
		r = zr
	case bytes.HasPrefix(head, []byte{0x1f, 0x8b}):
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, &SchemaError{Path: path, Err: fmt.Errorf("opening gzip stream: %w", err)}
		}
		defer gr.Close()
		r = gr
	}

	crate, err := Load(r)
	if err != nil {
		if se, ok := err.(*SchemaError); ok {
			se.Path = path
		}
		return nil, err
	}
	return crate, nil
}
