package filterbox

import "sort"

// Canonical keys used for time controls in persisted selection state.
const (
	KeyTimeRange   = "__time_range"
	KeyTimeColumn  = "__time_col"
	KeyTimeGrain   = "__time_grain"
	KeyTimeOrigin  = "__time_origin"
	KeyGranularity = "__granularity"
)

// KeyMap translates semantic control names into the canonical keys stored in
// a selection map. The zero value maps every key to itself.
type KeyMap struct {
	table map[string]string
}

// NewKeyMap builds an immutable KeyMap from table. The input is copied.
func NewKeyMap(table map[string]string) KeyMap {
	if len(table) == 0 {
		return KeyMap{}
	}
	copied := make(map[string]string, len(table))
	for semantic, canonical := range table {
		if semantic == "" || canonical == "" {
			continue
		}
		copied[semantic] = canonical
	}
	return KeyMap{table: copied}
}

// DefaultKeyMap returns the time control table used by dashboard filter boxes.
func DefaultKeyMap() KeyMap {
	return NewKeyMap(map[string]string{
		"time_range":        KeyTimeRange,
		"granularity_sqla":  KeyTimeColumn,
		"time_grain_sqla":   KeyTimeGrain,
		"druid_time_origin": KeyTimeOrigin,
		"granularity":       KeyGranularity,
	})
}

// Canonicalize returns the canonical key for semantic, or semantic itself
// when the table has no entry for it.
func (m KeyMap) Canonicalize(semantic string) string {
	if canonical, ok := m.table[semantic]; ok {
		return canonical
	}
	return semantic
}

// Len reports the number of entries in the table.
func (m KeyMap) Len() int {
	return len(m.table)
}

// Entries returns a copy of the table.
func (m KeyMap) Entries() map[string]string {
	out := make(map[string]string, len(m.table))
	for semantic, canonical := range m.table {
		out[semantic] = canonical
	}
	return out
}

// SemanticKeys returns the mapped semantic names sorted alphabetically.
func (m KeyMap) SemanticKeys() []string {
	keys := make([]string, 0, len(m.table))
	for semantic := range m.table {
		keys = append(keys, semantic)
	}
	sort.Strings(keys)
	return keys
}
