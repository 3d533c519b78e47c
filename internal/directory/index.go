package directory

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
)

// Index resolves references by id or by display name. Names match
// case-insensitively first, then by slug so "cash in hand" finds
// "Cash-in-Hand". Slugs shared by more than one record never resolve.
type Index[T any] struct {
	byID   map[snowflake.ID]T
	byName map[string]T
	bySlug map[string]T
}

func NewIndex[T any](items []T, idOf func(T) snowflake.ID, nameOf func(T) string) Index[T] {
	idx := Index[T]{
		byID:   make(map[snowflake.ID]T, len(items)),
		byName: make(map[string]T, len(items)),
		bySlug: make(map[string]T, len(items)),
	}
	ambiguous := map[string]bool{}
	for _, item := range items {
		idx.byID[idOf(item)] = item
		name := strings.ToLower(strings.TrimSpace(nameOf(item)))
		if _, seen := idx.byName[name]; !seen {
			idx.byName[name] = item
		}
		key := slug.Make(name)
		if _, seen := idx.bySlug[key]; seen {
			ambiguous[key] = true
			continue
		}
		idx.bySlug[key] = item
	}
	for key := range ambiguous {
		delete(idx.bySlug, key)
	}
	return idx
}

// Resolve prefers a non-zero id; the name is only consulted when id is zero.
func (i Index[T]) Resolve(id snowflake.ID, name string) (T, bool) {
	if id != 0 {
		item, ok := i.byID[id]
		return item, ok
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		var zero T
		return zero, false
	}
	if item, ok := i.byName[name]; ok {
		return item, true
	}
	item, ok := i.bySlug[slug.Make(name)]
	return item, ok
}

func (i Index[T]) Len() int { return len(i.byID) }

func NewLedgerIndex(refs []LedgerRef) Index[LedgerRef] {
	return NewIndex(refs,
		func(r LedgerRef) snowflake.ID { return r.ID },
		func(r LedgerRef) string { return r.Name },
	)
}

func NewProductIndex(refs []ProductRef) Index[ProductRef] {
	return NewIndex(refs,
		func(r ProductRef) snowflake.ID { return r.ID },
		func(r ProductRef) string { return r.Name },
	)
}
