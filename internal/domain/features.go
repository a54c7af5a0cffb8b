package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type FeatureKind int

const (
	FeatureList FeatureKind = iota
	FeatureMap
)

type FeaturePair struct {
	Key   string
	Value string
}

// FeatureSet is either an ordered list of strings or an ordered key/value
// mapping. The shape is fixed when the set is decoded; the zero value is an
// empty list.
type FeatureSet struct {
	kind  FeatureKind
	list  []string
	pairs []FeaturePair
}

func NewFeatureList(items ...string) FeatureSet {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return FeatureSet{kind: FeatureList, list: out}
}

func NewFeatureMap(pairs ...FeaturePair) FeatureSet {
	fs := FeatureSet{kind: FeatureMap}
	for _, p := range pairs {
		fs.set(p.Key, p.Value)
	}
	return fs
}

func (f *FeatureSet) set(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	for i := range f.pairs {
		if f.pairs[i].Key == key {
			f.pairs[i].Value = value
			return
		}
	}
	f.pairs = append(f.pairs, FeaturePair{Key: key, Value: value})
}

func (f FeatureSet) Kind() FeatureKind { return f.kind }

func (f FeatureSet) Len() int {
	if f.kind == FeatureMap {
		return len(f.pairs)
	}
	return len(f.list)
}

func (f FeatureSet) IsEmpty() bool { return f.Len() == 0 }

// List returns the entries of a list-shaped set, nil for maps.
func (f FeatureSet) List() []string {
	if f.kind != FeatureList {
		return nil
	}
	return append([]string(nil), f.list...)
}

// Pairs returns the entries of a map-shaped set, nil for lists.
func (f FeatureSet) Pairs() []FeaturePair {
	if f.kind != FeatureMap {
		return nil
	}
	return append([]FeaturePair(nil), f.pairs...)
}

// Strings enumerates the set as plain strings: list items, or keys and
// values of a map.
func (f FeatureSet) Strings() []string {
	if f.kind == FeatureList {
		return f.List()
	}
	out := make([]string, 0, 2*len(f.pairs))
	for _, p := range f.pairs {
		out = append(out, p.Key)
		if p.Value != "" {
			out = append(out, p.Value)
		}
	}
	return out
}

// Lines renders each entry on one line ("key: value" for maps).
func (f FeatureSet) Lines() []string {
	if f.kind == FeatureList {
		return f.List()
	}
	out := make([]string, 0, len(f.pairs))
	for _, p := range f.pairs {
		if p.Value == "" {
			out = append(out, p.Key)
			continue
		}
		out = append(out, p.Key+": "+p.Value)
	}
	return out
}

func (f FeatureSet) MarshalJSON() ([]byte, error) {
	if f.kind == FeatureList {
		if f.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(f.list)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range f.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *FeatureSet) UnmarshalJSON(b []byte) error {
	fs, err := ParseFeatures(b)
	if err != nil {
		return err
	}
	*f = fs
	return nil
}

// Value stores the set as JSON text.
func (f FeatureSet) Value() (driver.Value, error) {
	b, err := f.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FeatureSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = FeatureSet{}
		return nil
	case []byte:
		return f.UnmarshalJSON(v)
	case string:
		return f.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("features: unsupported column type %T", src)
}

// ParseFeatures decodes any of the stored feature shapes: a JSON array, a
// JSON object, a JSON string holding either of those, or a bare string
// (single entry list).
func ParseFeatures(raw []byte) (FeatureSet, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return FeatureSet{}, nil
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return FeatureSet{}, fmt.Errorf("features: %w", err)
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, scalarString(it))
		}
		return NewFeatureList(out...), nil
	case '{':
		return parseFeatureObject(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return FeatureSet{}, fmt.Errorf("features: %w", err)
		}
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
			return ParseFeatures([]byte(s))
		}
		return NewFeatureList(s), nil
	}
	return FeatureSet{}, Invalid("features", "expected a list or an object")
}

func parseFeatureObject(raw []byte) (FeatureSet, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return FeatureSet{}, fmt.Errorf("features: %w", err)
	}
	fs := FeatureSet{kind: FeatureMap}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return FeatureSet{}, fmt.Errorf("features: %w", err)
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return FeatureSet{}, fmt.Errorf("features: %w", err)
		}
		fs.set(key, scalarString(v))
	}
	return fs, nil
}

func scalarString(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return string(v)
}
