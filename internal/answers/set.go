package answers

import (
	"sort"
	"strings"
)

// Value is one resolved answer: either a single string (free text or a
// single-choice token) or a list of selected tokens.
type Value struct {
	text   string
	list   []string
	isList bool
}

func Scalar(s string) Value {
	return Value{text: s}
}

func List(items ...string) Value {
	out := make([]string, len(items))
	copy(out, items)
	return Value{list: out, isList: true}
}

func (v Value) IsList() bool { return v.isList }

// String returns the scalar value, or the list joined with commas.
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ",")
	}
	return v.text
}

// Items returns a copy of the selected tokens. Scalars yield a one-element
// slice unless empty.
func (v Value) Items() []string {
	if !v.isList {
		if v.text == "" {
			return nil
		}
		return []string{v.text}
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// Contains reports whether token is one of the selected values.
func (v Value) Contains(token string) bool {
	if !v.isList {
		return v.text == token
	}
	for _, item := range v.list {
		if item == token {
			return true
		}
	}
	return false
}

// Set is the immutable Answer Set produced once per run. All accessors copy.
type Set struct {
	values map[string]Value
}

func New(values map[string]Value) Set {
	s := Set{values: make(map[string]Value, len(values))}
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		s.values[k] = copyValue(v)
	}
	return s
}

func (s Set) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	if !ok {
		return Value{}, false
	}
	return copyValue(v), true
}

func (s Set) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// String returns the scalar answer for key, or "" when absent.
func (s Set) String(key string) string {
	return s.values[key].String()
}

func (s Set) Items(key string) []string {
	return s.values[key].Items()
}

func (s Set) Len() int { return len(s.values) }

func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of the set with key replaced.
func (s Set) With(key string, v Value) Set {
	next := make(map[string]Value, len(s.values)+1)
	for k, val := range s.values {
		next[k] = val
	}
	next[key] = v
	return New(next)
}

// Merge returns a copy of s overlaid with every value in other.
func (s Set) Merge(other Set) Set {
	next := make(map[string]Value, len(s.values)+len(other.values))
	for k, v := range s.values {
		next[k] = v
	}
	for k, v := range other.values {
		next[k] = v
	}
	return New(next)
}

func copyValue(v Value) Value {
	if !v.isList {
		return v
	}
	return List(v.list...)
}

// Builder accumulates values before freezing them into a Set.
type Builder struct {
	values map[string]Value
}

func NewBuilder() *Builder {
	return &Builder{values: make(map[string]Value)}
}

func (b *Builder) Set(key, value string) *Builder {
	b.values[key] = Scalar(value)
	return b
}

func (b *Builder) Add(key string, items ...string) *Builder {
	prev := b.values[key]
	b.values[key] = List(append(prev.Items(), items...)...)
	return b
}

func (b *Builder) Build() Set {
	return New(b.values)
}
