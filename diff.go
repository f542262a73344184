package zipview

import (
	"fmt"
	"strings"
)

// DiffKind is one way in which the two sides of a compared pathname differ.
type DiffKind uint8

// Difference kinds, in report order.
const (
	OnlyInFirst DiffKind = 1 << iota
	OnlyInSecond
	TimestampDiffers
	SizeDiffers
	CRCDiffers
)

var diffKindInfo = []struct {
	kind DiffKind
	key  byte
	text string
}{
	{OnlyInFirst, '1', "Only in first archive"},
	{OnlyInSecond, '2', "Only in second archive"},
	{TimestampDiffers, 'T', "Timestamps differ"},
	{SizeDiffers, 'S', "Sizes differ"},
	{CRCDiffers, 'C', "CRCs differ"},
}

// Key returns the single-character report code of k.
func (k DiffKind) Key() byte {
	for _, info := range diffKindInfo {
		if info.kind == k {
			return info.key
		}
	}
	return '?'
}

func (k DiffKind) String() string {
	for _, info := range diffKindInfo {
		if info.kind == k {
			return info.text
		}
	}
	return fmt.Sprintf("DiffKind(%d)", uint8(k))
}

// DiffKinds is a set of DiffKind values.
type DiffKinds uint8

// Has reports whether k is in the set.
func (s DiffKinds) Has(k DiffKind) bool {
	return s&DiffKinds(k) != 0
}

// With returns the set with k added.
func (s DiffKinds) With(k DiffKind) DiffKinds {
	return s | DiffKinds(k)
}

// Empty reports whether the set has no members.
func (s DiffKinds) Empty() bool {
	return s == 0
}

// Kinds returns the members of the set in report order.
func (s DiffKinds) Kinds() []DiffKind {
	var out []DiffKind
	for _, info := range diffKindInfo {
		if s.Has(info.kind) {
			out = append(out, info.kind)
		}
	}
	return out
}

// Code returns the fixed-width report code of the set: one column per
// kind in the order 1 2 T S C, with a space for each absent kind.
func (s DiffKinds) Code() string {
	b := make([]byte, len(diffKindInfo))
	for i, info := range diffKindInfo {
		if s.Has(info.kind) {
			b[i] = info.key
		} else {
			b[i] = ' '
		}
	}
	return string(b)
}

func (s DiffKinds) String() string {
	kinds := s.Kinds()
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// Difference reports how a pathname differs between two archives.
type Difference struct {
	Kinds DiffKinds
	Path  string
}

// Field is an entry attribute that Compare can check.
type Field uint8

// Comparable fields.
const (
	FieldTimestamp Field = iota
	FieldSize
	FieldCRC
)

var fieldInfo = [...]struct {
	key    string
	text   string
	kind   DiffKind
	differ func(a, b Entry) bool
}{
	FieldTimestamp: {"timestamp", "Timestamp", TimestampDiffers, func(a, b Entry) bool { return a.ModTime != b.ModTime }},
	FieldSize:      {"size", "Size", SizeDiffers, func(a, b Entry) bool { return a.Size != b.Size }},
	FieldCRC:       {"crc", "CRC", CRCDiffers, func(a, b Entry) bool { return a.CRC32 != b.CRC32 }},
}

// Fields returns all comparable fields.
func Fields() []Field {
	return []Field{FieldTimestamp, FieldSize, FieldCRC}
}

func (f Field) valid() bool {
	return int(f) < len(fieldInfo)
}

// Key returns the persistent key of f.
func (f Field) Key() string {
	if !f.valid() {
		return ""
	}
	return fieldInfo[f].key
}

// DiffKind returns the difference reported when f differs.
func (f Field) DiffKind() DiffKind {
	if !f.valid() {
		return 0
	}
	return fieldInfo[f].kind
}

func (f Field) String() string {
	if !f.valid() {
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
	return fieldInfo[f].text
}

// Differs reports whether a and b differ in f.
func (f Field) Differs(a, b Entry) bool {
	if !f.valid() {
		return false
	}
	return fieldInfo[f].differ(a, b)
}

// ParseField returns the field with the given key.
func ParseField(key string) (Field, error) {
	for i, info := range fieldInfo {
		if info.key == key {
			return Field(i), nil //nolint:gosec // i < len(fieldInfo)
		}
	}
	return 0, fmt.Errorf("zipview: unknown field %q", key)
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("zipview: invalid field %d", uint8(f))
	}
	return []byte(f.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	v, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// FieldSet is a set of fields.
type FieldSet uint8

// NewFieldSet returns the set of the given fields.
func NewFieldSet(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

// AllFields returns the set of every comparable field.
func AllFields() FieldSet {
	return NewFieldSet(Fields()...)
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	return f.valid() && s&(1<<f) != 0
}

// With returns the set with f added.
func (s FieldSet) With(f Field) FieldSet {
	if !f.valid() {
		return s
	}
	return s | 1<<f
}

// Fields returns the members of the set in declaration order.
func (s FieldSet) Fields() []Field {
	var out []Field
	for _, f := range Fields() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
