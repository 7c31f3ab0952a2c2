package runtime

import "sort"

// Iterator is the shape `context.forIn(obj)` and `yieldAll`'s delegate
// both return: GetNext reports the next element (or ok=false once
// exhausted), matching the `getNext()` contract from spec §4.4.i.
type Iterator interface {
	GetNext() (value any, ok bool)
}

// Keyed is implemented by host values that want to control their own
// for-in enumeration order (object literals, ordered maps). Values that
// don't implement it fall back to a deterministic sorted-key view when
// they are a map[string]any, which is the common case in tests.
type Keyed interface {
	Keys() []string
}

type sliceIterator struct {
	items []any
	pos   int
}

func (s *sliceIterator) GetNext() (any, bool) {
	if s.pos >= len(s.items) {
		return nil, false
	}
	v := s.items[s.pos]
	s.pos++
	return v, true
}

// SliceIterator adapts a plain slice into an Iterator, for example as
// the delegate handed to YieldAll. (ForIn's array case enumerates
// indices through its own sliceIterator, not through this function.)
func SliceIterator(items []any) Iterator { return &sliceIterator{items: items} }

func newForInIterator(obj any) Iterator {
	switch v := obj.(type) {
	case Keyed:
		keys := v.Keys()
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return &sliceIterator{items: items}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return &sliceIterator{items: items}
	case []any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = i
		}
		return &sliceIterator{items: items}
	default:
		return &sliceIterator{}
	}
}

// OrderedObject is a Keyed value that preserves insertion order, the
// Go stand-in for the source language's own insertion-ordered object
// enumeration (Go maps have none).
type OrderedObject struct {
	keys   []string
	values map[string]any
}

// NewOrderedObject builds an OrderedObject from keys in the given
// order, paired positionally with values.
func NewOrderedObject(keys []string, values []any) *OrderedObject {
	o := &OrderedObject{keys: append([]string(nil), keys...), values: map[string]any{}}
	for i, k := range o.keys {
		if i < len(values) {
			o.values[k] = values[i]
		}
	}
	return o
}

func (o *OrderedObject) Keys() []string { return o.keys }

func (o *OrderedObject) Get(key string) any { return o.values[key] }
