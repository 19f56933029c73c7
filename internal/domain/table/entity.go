package table

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

var ErrNoCompatibleTables = errors.New("no compatible tables for merge")

// Table is a physical restaurant table. Tables sharing a non-empty merge
// group are adjacent and may be joined into a table set.
type Table struct {
	ID              uuid.UUID
	RestaurantID    uuid.UUID
	SectionID       *uuid.UUID
	SeatingCapacity int
	MergeGroup      *string
	IsActive        bool
}

// SortBySmallestFit orders candidates by ascending capacity then by id, so
// the smallest sufficient table wins deterministically.
func SortBySmallestFit(tables []Table) {
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].SeatingCapacity != tables[j].SeatingCapacity {
			return tables[i].SeatingCapacity < tables[j].SeatingCapacity
		}
		return tables[i].ID.String() < tables[j].ID.String()
	})
}

// SortByLargestFirst orders the fallback pass, preferring larger tables.
func SortByLargestFirst(tables []Table) {
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].SeatingCapacity != tables[j].SeatingCapacity {
			return tables[i].SeatingCapacity > tables[j].SeatingCapacity
		}
		return tables[i].ID.String() < tables[j].ID.String()
	})
}

// SelectMergeCandidates picks the smallest combination of tables from one
// merge group whose summed capacity covers the party. Tables are consumed
// smallest-first within the group; the first group that can cover the party
// wins. Returns ErrNoCompatibleTables when no group can seat the party.
func SelectMergeCandidates(tables []Table, partySize int) ([]Table, error) {
	groups := make(map[string][]Table)
	for _, t := range tables {
		if !t.IsActive || t.MergeGroup == nil || *t.MergeGroup == "" {
			continue
		}
		groups[*t.MergeGroup] = append(groups[*t.MergeGroup], t)
	}

	groupKeys := make([]string, 0, len(groups))
	for k := range groups {
		groupKeys = append(groupKeys, k)
	}
	sort.Strings(groupKeys)

	for _, k := range groupKeys {
		members := groups[k]
		SortBySmallestFit(members)

		var picked []Table
		total := 0
		for _, t := range members {
			picked = append(picked, t)
			total += t.SeatingCapacity
			if total >= partySize {
				return picked, nil
			}
		}
	}
	return nil, ErrNoCompatibleTables
}
