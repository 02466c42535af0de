package rustdoc

import (
	"encoding/json"
	"fmt"
)

// ItemKind names an item payload variant. It matches the tag used on the
// wire ("struct", "enum", "use", ...). Kinds not listed here can still
// appear in an export produced by a newer toolchain; they decode with Kind
// set and no payload, and downstream rendering degrades to a placeholder.
type ItemKind string

const (
	KindModule      ItemKind = "module"
	KindExternCrate ItemKind = "extern_crate"
	KindUse         ItemKind = "use"
	KindStruct      ItemKind = "struct"
	KindStructField ItemKind = "struct_field"
	KindEnum        ItemKind = "enum"
	KindVariant     ItemKind = "variant"
	KindFunction    ItemKind = "function"
	KindTrait       ItemKind = "trait"
	KindImpl        ItemKind = "impl"
	KindTypeAlias   ItemKind = "type_alias"
	KindConstant    ItemKind = "constant"
	KindStatic      ItemKind = "static"
	KindMacro       ItemKind = "macro"
	KindProcMacro   ItemKind = "proc_macro"
	KindPrimitive   ItemKind = "primitive"
	KindAssocConst  ItemKind = "assoc_const"
	KindAssocType   ItemKind = "assoc_type"
)

// ItemInner is the kind-specific payload of an item. Exactly one payload
// pointer is set for known kinds; for kinds unknown to this build only
// Kind is set.
type ItemInner struct {
	Kind ItemKind

	Module      *Module
	Use         *Use
	Struct      *Struct
	StructField *Type
	Enum        *Enum
	Variant     *Variant
	Function    *Function
	Trait       *Trait
	Impl        *Impl
	TypeAlias   *TypeAlias
	Constant    *ConstantItem
	Static      *Static
	Macro       *string
	Primitive   *Primitive
	AssocConst  *AssocConst
	AssocType   *AssocType
}

func (in *ItemInner) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding item payload: %w", err)
	}
	for tag, payload := range tagged {
		in.Kind = ItemKind(tag)
		var dst any
		switch in.Kind {
		case KindModule:
			in.Module = &Module{}
			dst = in.Module
		case KindUse:
			in.Use = &Use{}
			dst = in.Use
		case KindStruct:
			in.Struct = &Struct{}
			dst = in.Struct
		case KindStructField:
			in.StructField = &Type{}
			dst = in.StructField
		case KindEnum:
			in.Enum = &Enum{}
			dst = in.Enum
		case KindVariant:
			in.Variant = &Variant{}
			dst = in.Variant
		case KindFunction:
			in.Function = &Function{}
			dst = in.Function
		case KindTrait:
			in.Trait = &Trait{}
			dst = in.Trait
		case KindImpl:
			in.Impl = &Impl{}
			dst = in.Impl
		case KindTypeAlias:
			in.TypeAlias = &TypeAlias{}
			dst = in.TypeAlias
		case KindConstant:
			in.Constant = &ConstantItem{}
			dst = in.Constant
		case KindStatic:
			in.Static = &Static{}
			dst = in.Static
		case KindMacro:
			in.Macro = new(string)
			dst = in.Macro
		case KindPrimitive:
			in.Primitive = &Primitive{}
			dst = in.Primitive
		case KindAssocConst:
			in.AssocConst = &AssocConst{}
			dst = in.AssocConst
		case KindAssocType:
			in.AssocType = &AssocType{}
			dst = in.AssocType
		default:
			// Forward compatibility: keep the tag, drop the payload.
			return nil
		}
		if err := json.Unmarshal(payload, dst); err != nil {
			return fmt.Errorf("decoding %s payload: %w", tag, err)
		}
		return nil
	}
	return fmt.Errorf("item payload has no variant tag")
}

// Module is a collection of items.
type Module struct {
	IsCrate    bool `json:"is_crate"`
	Items      []ID `json:"items"`
	IsStripped bool `json:"is_stripped"`
}

// Use is a `use` declaration, possibly re-exporting its target.
type Use struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     *ID    `json:"id"`
	IsGlob bool   `json:"is_glob"`
}

// Struct declaration.
type Struct struct {
	Kind     StructKind `json:"kind"`
	Generics Generics   `json:"generics"`
	Impls    []ID       `json:"impls"`
}

// StructKind distinguishes unit, tuple and named-field structs.
type StructKind struct {
	Unit  bool
	Tuple []*ID // nil entries are stripped (private) fields
	Plain *PlainStruct
}

type PlainStruct struct {
	Fields            []ID `json:"fields"`
	HasStrippedFields bool `json:"has_stripped_fields"`
}

func (k *StructKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "unit" {
			return fmt.Errorf("unknown struct kind %q", s)
		}
		k.Unit = true
		return nil
	}
	var tagged struct {
		Tuple []*ID        `json:"tuple"`
		Plain *PlainStruct `json:"plain"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding struct kind: %w", err)
	}
	k.Tuple = tagged.Tuple
	k.Plain = tagged.Plain
	if k.Tuple == nil && k.Plain == nil {
		return fmt.Errorf("struct kind has no variant tag")
	}
	return nil
}

// Enum declaration.
type Enum struct {
	Generics Generics `json:"generics"`
	Variants []ID     `json:"variants"`
	Impls    []ID     `json:"impls"`
}

// Variant of an enum.
type Variant struct {
	Kind         VariantKind   `json:"kind"`
	Discriminant *Discriminant `json:"discriminant"`
}

type Discriminant struct {
	Expr  string `json:"expr"`
	Value string `json:"value"`
}

// VariantKind mirrors StructKind for enum variants.
type VariantKind struct {
	Plain  bool
	Tuple  []*ID
	Struct *PlainStruct
}

func (k *VariantKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "plain" {
			return fmt.Errorf("unknown variant kind %q", s)
		}
		k.Plain = true
		return nil
	}
	var tagged struct {
		Tuple  []*ID        `json:"tuple"`
		Struct *PlainStruct `json:"struct"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding variant kind: %w", err)
	}
	k.Tuple = tagged.Tuple
	k.Struct = tagged.Struct
	if k.Tuple == nil && k.Struct == nil {
		return fmt.Errorf("variant kind has no variant tag")
	}
	return nil
}

// Function declaration or method.
type Function struct {
	Sig      FnSig    `json:"sig"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
	HasBody  bool     `json:"has_body"`
}

type FnHeader struct {
	IsConst  bool `json:"is_const"`
	IsUnsafe bool `json:"is_unsafe"`
	IsAsync  bool `json:"is_async"`
}

type FnSig struct {
	Inputs      []FnInput `json:"inputs"`
	Output      *Type     `json:"output"`
	IsCVariadic bool      `json:"is_c_variadic"`
}

// FnInput is one function parameter. On the wire it is a two-element
// [name, type] array.
type FnInput struct {
	Name string
	Type Type
}

func (in *FnInput) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decoding function input: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("function input has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &in.Name); err != nil {
		return fmt.Errorf("decoding parameter name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &in.Type); err != nil {
		return fmt.Errorf("decoding parameter type: %w", err)
	}
	return nil
}

// Trait declaration.
type Trait struct {
	IsAuto          bool            `json:"is_auto"`
	IsUnsafe        bool            `json:"is_unsafe"`
	Items           []ID            `json:"items"`
	Generics        Generics        `json:"generics"`
	Implementations []ID            `json:"implementations"`
	Bounds          json.RawMessage `json:"bounds"` // not rendered
}

// Impl is an implementation block.
type Impl struct {
	IsUnsafe    bool      `json:"is_unsafe"`
	Generics    Generics  `json:"generics"`
	Trait       *PathType `json:"trait"`
	For         Type      `json:"for"`
	Items       []ID      `json:"items"`
	IsNegative  bool      `json:"is_negative"`
	IsSynthetic bool      `json:"is_synthetic"`
	BlanketImpl *Type     `json:"blanket_impl"`
}

// TypeAlias declaration.
type TypeAlias struct {
	Type     Type     `json:"type"`
	Generics Generics `json:"generics"`
}

// ConstantItem is a free or associated `const` with its initializer.
type ConstantItem struct {
	Type  Type     `json:"type"`
	Const Constant `json:"const"`
}

// Constant carries the stringified initializer expression. The value is
// never re-evaluated here.
type Constant struct {
	Expr      string  `json:"expr"`
	Value     *string `json:"value"`
	IsLiteral bool    `json:"is_literal"`
}

// Static declaration.
type Static struct {
	Type      Type   `json:"type"`
	IsMutable bool   `json:"is_mutable"`
	Expr      string `json:"expr"`
}

// Primitive type documentation stub.
type Primitive struct {
	Name  string `json:"name"`
	Impls []ID   `json:"impls"`
}

// AssocConst is an associated constant inside a trait or impl.
type AssocConst struct {
	Type  Type    `json:"type"`
	Value *string `json:"value"`
}

// AssocType is an associated type inside a trait or impl.
type AssocType struct {
	Generics Generics `json:"generics"`
	Type     *Type    `json:"type"`
}

// Generics lists the generic parameters of a declaration in declaration
// order. Where-predicates are carried but not rendered.
type Generics struct {
	Params          []GenericParamDef `json:"params"`
	WherePredicates json.RawMessage   `json:"where_predicates"`
}

type GenericParamDef struct {
	Name string           `json:"name"`
	Kind GenericParamKind `json:"kind"`
}

// GenericParamKind: lifetime, type or const parameter.
type GenericParamKind struct {
	Lifetime bool
	Type     bool
	Const    bool
}

func (k *GenericParamKind) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding generic param kind: %w", err)
	}
	for tag := range tagged {
		switch tag {
		case "lifetime":
			k.Lifetime = true
		case "type":
			k.Type = true
		case "const":
			k.Const = true
		default:
			return fmt.Errorf("unknown generic param kind %q", tag)
		}
		return nil
	}
	return fmt.Errorf("generic param kind has no variant tag")
}
