package rustdoc

import (
	"encoding/json"
	"fmt"
)

// Type is the rustdoc type expression sum. Exactly one field is set for
// known variants; unknown variants keep only the tag so formatting can
// fall back to a placeholder instead of failing the run.
type Type struct {
	Tag string

	ResolvedPath  *PathType
	DynTrait      *DynTrait
	Generic       *string
	Primitive     *string
	Tuple         []Type
	Slice         *Type
	Array         *ArrayType
	BorrowedRef   *BorrowedRef
	RawPointer    *RawPointer
	QualifiedPath *QualifiedPath
	ImplTrait     json.RawMessage // bounds, rendered opaquely
	FunctionPtr   json.RawMessage // rendered opaquely
	Infer         bool
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		// Only "infer" is encoded as a bare string.
		t.Tag = s
		t.Infer = s == "infer"
		return nil
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding type: %w", err)
	}
	for tag, payload := range tagged {
		t.Tag = tag
		var dst any
		switch tag {
		case "resolved_path":
			t.ResolvedPath = &PathType{}
			dst = t.ResolvedPath
		case "dyn_trait":
			t.DynTrait = &DynTrait{}
			dst = t.DynTrait
		case "generic":
			t.Generic = new(string)
			dst = t.Generic
		case "primitive":
			t.Primitive = new(string)
			dst = t.Primitive
		case "tuple":
			dst = &t.Tuple
		case "slice":
			t.Slice = &Type{}
			dst = t.Slice
		case "array":
			t.Array = &ArrayType{}
			dst = t.Array
		case "borrowed_ref":
			t.BorrowedRef = &BorrowedRef{}
			dst = t.BorrowedRef
		case "raw_pointer":
			t.RawPointer = &RawPointer{}
			dst = t.RawPointer
		case "qualified_path":
			t.QualifiedPath = &QualifiedPath{}
			dst = t.QualifiedPath
		case "impl_trait":
			t.ImplTrait = payload
			return nil
		case "function_pointer":
			t.FunctionPtr = payload
			return nil
		default:
			return nil
		}
		if err := json.Unmarshal(payload, dst); err != nil {
			return fmt.Errorf("decoding %s type: %w", tag, err)
		}
		return nil
	}
	return fmt.Errorf("type has no variant tag")
}

// PathType is a reference to a named item, optionally with generic args.
type PathType struct {
	Path string       `json:"path"`
	ID   ID           `json:"id"`
	Args *GenericArgs `json:"args"`
}

// ShortName returns the last path segment.
func (p *PathType) ShortName() string {
	name := p.Path
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == ':' && name[i-1] == ':' {
			return name[i+1:]
		}
	}
	return name
}

// DynTrait is a `dyn Trait [+ Trait2] [+ 'lifetime]` object type.
type DynTrait struct {
	Traits []struct {
		Trait PathType `json:"trait"`
	} `json:"traits"`
	Lifetime *string `json:"lifetime"`
}

type ArrayType struct {
	Type Type   `json:"type"`
	Len  string `json:"len"`
}

type BorrowedRef struct {
	Lifetime  *string `json:"lifetime"`
	IsMutable bool    `json:"is_mutable"`
	Type      Type    `json:"type"`
}

type RawPointer struct {
	IsMutable bool `json:"is_mutable"`
	Type      Type `json:"type"`
}

type QualifiedPath struct {
	Name     string    `json:"name"`
	SelfType Type      `json:"self_type"`
	Trait    *PathType `json:"trait"`
}

// GenericArgs for a path: angle-bracketed (`<T, 'a>`) or parenthesized
// (`Fn(A) -> B`). Parenthesized args are kept raw and rendered opaquely.
type GenericArgs struct {
	AngleBracketed *AngleBracketedArgs `json:"angle_bracketed"`
	Parenthesized  json.RawMessage     `json:"parenthesized"`
}

type AngleBracketedArgs struct {
	Args        []GenericArg    `json:"args"`
	Constraints json.RawMessage `json:"constraints"`
}

// GenericArg is one argument inside angle brackets.
type GenericArg struct {
	Lifetime *string
	Type     *Type
	Infer    bool
}

func (a *GenericArg) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Infer = s == "infer"
		return nil
	}
	var tagged struct {
		Lifetime *string         `json:"lifetime"`
		Type     *Type           `json:"type"`
		Const    json.RawMessage `json:"const"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding generic arg: %w", err)
	}
	a.Lifetime = tagged.Lifetime
	a.Type = tagged.Type
	return nil
}
