package spend

import (
	"fmt"
	"slices"
	"strings"
)

// SortField is a sortable record field.
type SortField string

const (
	SortByDate SortField = "date"
	SortByCost SortField = "cost"
)

// SortDir is a sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// SortSpec is a (field, direction) pair. The zero value leaves order untouched.
type SortSpec struct {
	Field SortField
	Dir   SortDir
}

// DefaultSort is newest first.
var DefaultSort = SortSpec{Field: SortByDate, Dir: Desc}

// SortOptions lists the specs offered by the sort control, in cycle order.
var SortOptions = []SortSpec{
	{SortByDate, Desc},
	{SortByDate, Asc},
	{SortByCost, Desc},
	{SortByCost, Asc},
}

// ParseSortSpec accepts "field|dir", "field:dir" or a bare field (descending).
func ParseSortSpec(s string) (SortSpec, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSort, nil
	}
	field, dir, found := strings.Cut(s, "|")
	if !found {
		field, dir, found = strings.Cut(s, ":")
	}
	if !found {
		dir = string(Desc)
	}

	spec := SortSpec{Field: SortField(field), Dir: SortDir(dir)}
	switch spec.Field {
	case SortByDate, SortByCost:
	default:
		return SortSpec{}, fmt.Errorf("unknown sort field %q", field)
	}
	switch spec.Dir {
	case Asc, Desc:
	default:
		return SortSpec{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return spec, nil
}

func (s SortSpec) String() string {
	return string(s.Field) + "|" + string(s.Dir)
}

// Label is the human-readable form shown in the filters bar.
func (s SortSpec) Label() string {
	var field string
	switch s.Field {
	case SortByDate:
		field = "Date"
	case SortByCost:
		field = "Cost"
	default:
		return "Unsorted"
	}
	if s.Dir == Asc {
		return field + " ascending"
	}
	return field + " descending"
}

// Next returns the following option in SortOptions.
func (s SortSpec) Next() SortSpec {
	for i, o := range SortOptions {
		if o == s {
			return SortOptions[(i+1)%len(SortOptions)]
		}
	}
	return SortOptions[0]
}

// Sort returns a stably sorted copy; ties keep their original order.
func Sort(records []Record, spec SortSpec) []Record {
	out := slices.Clone(records)
	if spec.Field == "" {
		return out
	}

	sign := -1
	if spec.Dir == Asc {
		sign = 1
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		switch spec.Field {
		case SortByCost:
			return sign * a.CostUSD.Cmp(b.CostUSD)
		case SortByDate:
			return sign * a.Time().Compare(b.Time())
		}
		return 0
	})
	return out
}
