// Package listview implements the listing-screen view-model: an authoritative
// fetched list plus a derived projection filtered by a free-text search and
// exact-match column filters, sorted by one locale-aware column.
package listview

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortDirection orders a sorted column.
type SortDirection int

const (
	// Ascending sorts A to Z.
	Ascending SortDirection = iota
	// Descending sorts Z to A.
	Descending
)

// SortConfig names the sorted column and its direction. A zero Key means
// the list keeps the backend's order.
type SortConfig struct {
	Key       string
	Direction SortDirection
}

// Field maps a column key to its string value on an entity.
type Field[T any] struct {
	Key   string
	Value func(T) string
}

// Model derives the visible projection of one listing screen.
type Model[T any] struct {
	fields    []Field[T]
	searchKey string
	collator  *collate.Collator

	items   []T
	search  string
	filters map[string]string
	sort    SortConfig

	projection []T
	options    map[string][]string
}

// New creates a Model. searchKey designates the display field the free-text
// search matches against; locale selects the collation for sorting.
func New[T any](locale, searchKey string, fields ...Field[T]) *Model[T] {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}

	return &Model[T]{
		fields:    fields,
		searchKey: searchKey,
		collator:  collate.New(tag, collate.IgnoreCase),
		filters:   make(map[string]string),
		options:   make(map[string][]string),
	}
}

func (m *Model[T]) field(key string) (Field[T], bool) {
	for _, f := range m.fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

// SetItems replaces the authoritative list and recomputes the projection and
// the filter option lists.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.recomputeOptions()
	m.recompute()
}

// Items returns the current projection.
func (m *Model[T]) Items() []T {
	return m.projection
}

// Len returns the size of the current projection.
func (m *Model[T]) Len() int {
	return len(m.projection)
}

// Total returns the size of the authoritative list.
func (m *Model[T]) Total() int {
	return len(m.items)
}

// SetSearch updates the free-text search term.
func (m *Model[T]) SetSearch(term string) {
	m.search = term
	m.recompute()
}

// Search returns the current search term.
func (m *Model[T]) Search() string {
	return m.search
}

// SetFilter sets one exact-match column filter; an empty value clears it.
func (m *Model[T]) SetFilter(key, value string) {
	if value == "" {
		delete(m.filters, key)
	} else {
		m.filters[key] = value
	}
	m.recompute()
}

// ClearFilters removes every column filter.
func (m *Model[T]) ClearFilters() {
	m.filters = make(map[string]string)
	m.recompute()
}

// Options returns the distinct values present in the loaded data for one
// column, collation-sorted. Recomputed on every SetItems.
func (m *Model[T]) Options(key string) []string {
	return m.options[key]
}

// ToggleSort sorts by the given column. Selecting the sorted column again
// flips the direction; selecting a new column resets to ascending.
func (m *Model[T]) ToggleSort(key string) {
	if m.sort.Key == key {
		if m.sort.Direction == Ascending {
			m.sort.Direction = Descending
		} else {
			m.sort.Direction = Ascending
		}
	} else {
		m.sort = SortConfig{Key: key, Direction: Ascending}
	}
	m.recompute()
}

// Sort returns the current sort configuration.
func (m *Model[T]) Sort() SortConfig {
	return m.sort
}

func (m *Model[T]) recomputeOptions() {
	m.options = make(map[string][]string, len(m.fields))
	for _, f := range m.fields {
		seen := make(map[string]struct{})
		var values []string
		for _, item := range m.items {
			v := f.Value(item)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		m.collator.SortStrings(values)
		m.options[f.Key] = values
	}
}

func (m *Model[T]) recompute() {
	projection := make([]T, 0, len(m.items))

	term := strings.ToLower(m.search)
	searchField, hasSearchField := m.field(m.searchKey)

	for _, item := range m.items {
		if term != "" && hasSearchField &&
			!strings.Contains(strings.ToLower(searchField.Value(item)), term) {
			continue
		}
		if !m.matchesFilters(item) {
			continue
		}
		projection = append(projection, item)
	}

	if f, ok := m.field(m.sort.Key); ok {
		desc := m.sort.Direction == Descending
		sort.SliceStable(projection, func(i, j int) bool {
			cmp := m.collator.CompareString(f.Value(projection[i]), f.Value(projection[j]))
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	m.projection = projection
}

func (m *Model[T]) matchesFilters(item T) bool {
	for key, want := range m.filters {
		f, ok := m.field(key)
		if !ok {
			return false
		}
		if f.Value(item) != want {
			return false
		}
	}
	return true
}
