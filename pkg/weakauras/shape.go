package weakauras

import (
	"sort"
	"strconv"
)

// Shape resolution turns the raw entries of a table-like construct into
// exactly one of Array, Table or MixedTable:
//
//   - only implicit elements, or explicit numeric keys forming a
//     contiguous 1..n: Array
//   - non-contiguous numeric keys with no string companions: Table with
//     stringified decimal keys
//   - numeric keys alongside string keys: MixedTable when the numerics
//     fill a 1..k prefix (gaps become explicit Nil holes), otherwise the
//     numerics fold into the hash as strings
//   - anything empty: Table
//
// Both the SavedVariables parser and the import-string decoder feed
// through here, so a value classifies the same regardless of which wire
// it arrived on.

type numericEntry struct {
	index int64
	value LuaValue
}

// resolveTableShape builds the final value from a construct's implicit
// elements, explicit positive-integer-keyed entries and string-keyed
// entries. Explicit numeric entries may overwrite or extend the implicit
// prefix. The hash map is taken over, not copied; it may be nil.
func resolveTableShape(implicit []LuaValue, numeric []numericEntry, hash map[string]LuaValue) LuaValue {
	hasImplicit := len(implicit) > 0
	hasNumeric := len(numeric) > 0
	hasHash := len(hash) > 0

	switch {
	case hasImplicit && !hasNumeric && !hasHash:
		return ArrayOf(implicit)

	case !hasImplicit && hasNumeric && !hasHash:
		sortNumeric(numeric)
		if contiguousFromOne(numeric) {
			return ArrayOf(values(numeric))
		}
		// Sparse numeric keys demote to stringified hash keys.
		table := make(map[string]LuaValue, len(numeric))
		for _, e := range numeric {
			table[strconv.FormatInt(e.index, 10)] = e.value
		}
		return Table(table)

	case hasImplicit || hasNumeric:
		array := implicit
		if hasNumeric {
			sortNumeric(numeric)
			for _, e := range numeric {
				switch idx := e.index; {
				case idx <= int64(len(array)):
					array[idx-1] = e.value
				case idx == int64(len(array))+1:
					array = append(array, e.value)
				default:
					for int64(len(array)) < idx-1 {
						array = append(array, Nil())
					}
					array = append(array, e.value)
				}
			}
		}
		switch {
		case len(array) == 0:
			return Table(hash)
		case len(hash) == 0:
			return ArrayOf(array)
		default:
			return Mixed(array, hash)
		}

	default:
		return Table(hash)
	}
}

func sortNumeric(entries []numericEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})
}

func contiguousFromOne(sorted []numericEntry) bool {
	for i, e := range sorted {
		if e.index != int64(i)+1 {
			return false
		}
	}
	return len(sorted) > 0
}

func values(entries []numericEntry) []LuaValue {
	out := make([]LuaValue, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}
