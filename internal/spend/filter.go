package spend

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// FilterKey names one filterable field.
type FilterKey string

const (
	FilterCloud FilterKey = "cloud"
	FilterTeam  FilterKey = "team"
	FilterEnv   FilterKey = "env"
	FilterDate  FilterKey = "date"
)

// ParseFilterKey accepts the filter names used by the CLI. "month" is an
// alias for date.
func ParseFilterKey(s string) (FilterKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cloud", "provider":
		return FilterCloud, nil
	case "team":
		return FilterTeam, nil
	case "env":
		return FilterEnv, nil
	case "date", "month":
		return FilterDate, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Choices offered by the filter controls. The empty string means "all".
var (
	CloudChoices = []string{"", ProviderAWS, ProviderGCP}
	TeamChoices  = []string{"", "Web", "Data", "Core"}
	EnvChoices   = []string{"", "prod", "staging", "dev"}
)

// TeamChoicesFor lists "" and then the distinct teams present in records,
// sorted case-insensitively. Records without a team are skipped since the
// team filter cannot select them. With no teams it returns TeamChoices.
func TeamChoicesFor(records []Record) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, r := range records {
		t := strings.TrimSpace(r.Team)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		teams = append(teams, t)
	}
	if len(teams) == 0 {
		return TeamChoices
	}
	slices.SortFunc(teams, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return append([]string{""}, teams...)
}

// Cycle returns the choice after current, wrapping around. Unknown values
// restart at the first choice.
func Cycle(choices []string, current string) string {
	for i, c := range choices {
		if strings.EqualFold(c, current) {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

// Criteria is a sparse set of filters; an empty field imposes no constraint.
type Criteria struct {
	Cloud string
	Team  string
	Env   string
	Date  string
}

// IsZero reports whether no filter is set.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Get returns the value of one filter.
func (c Criteria) Get(key FilterKey) string {
	switch key {
	case FilterCloud:
		return c.Cloud
	case FilterTeam:
		return c.Team
	case FilterEnv:
		return c.Env
	case FilterDate:
		return c.Date
	}
	return ""
}

// With returns a copy with one filter set; an empty value removes it.
func (c Criteria) With(key FilterKey, value string) Criteria {
	value = strings.TrimSpace(value)
	switch key {
	case FilterCloud:
		c.Cloud = strings.ToUpper(value)
	case FilterTeam:
		c.Team = value
	case FilterEnv:
		c.Env = value
	case FilterDate:
		c.Date = value
	}
	return c
}

// Match reports whether r satisfies every set filter.
func (c Criteria) Match(r Record) bool {
	if c.Cloud != "" && !strings.EqualFold(r.Provider(), c.Cloud) {
		return false
	}
	if c.Team != "" && !strings.EqualFold(strings.TrimSpace(r.Team), c.Team) {
		return false
	}
	if c.Env != "" && !strings.EqualFold(strings.TrimSpace(r.Env), c.Env) {
		return false
	}
	if c.Date != "" && !matchDate(r.Date, c.Date) {
		return false
	}
	return true
}

// matchDate compares by granularity: a full date (10 chars) must equal the
// record's calendar day, shorter targets (year, year-month) match by prefix.
func matchDate(recordDate, target string) bool {
	if len(target) >= 10 {
		day := recordDate
		if len(day) > 10 {
			day = day[:10]
		}
		return day == target
	}
	return strings.HasPrefix(recordDate, target)
}

// Filter returns the records matching c, in their original order.
func Filter(records []Record, c Criteria) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// MinFilterYear is the earliest year the date filter accepts.
const MinFilterYear = 2000

// SanitizeDateInput keeps digits and hyphens and reshapes bare digits:
// YYYYMM becomes YYYY-MM and YYYYMMDD becomes YYYY-MM-DD.
func SanitizeDateInput(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	var out string
	switch {
	case len(d) <= 4:
		out = d
	case len(d) <= 6:
		out = d[:4] + "-" + d[4:]
	default:
		end := min(len(d), 8)
		out = d[:4] + "-" + d[4:6] + "-" + d[6:end]
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

var dateInputPattern = regexp.MustCompile(`^(\d{4})(?:-(\d{1,2})(?:-(\d{1,2}))?)?$`)

// ValidateDateInput checks a sanitized date filter and returns it zero-padded.
// Empty input is valid and means "no filter".
func ValidateDateInput(s string, maxYear int) (string, bool) {
	if s == "" {
		return "", true
	}
	m := dateInputPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	year, _ := strconv.Atoi(m[1])
	if year < MinFilterYear || year > maxYear {
		return "", false
	}
	out := m[1]

	if m[2] != "" {
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return "", false
		}
		out += fmt.Sprintf("-%02d", month)

		if m[3] != "" {
			day, _ := strconv.Atoi(m[3])
			if day < 1 || day > 31 {
				return "", false
			}
			out += fmt.Sprintf("-%02d", day)
		}
	}
	return out, true
}

// ParseDateInput sanitizes then validates raw user input.
func ParseDateInput(raw string, maxYear int) (string, error) {
	v, ok := ValidateDateInput(SanitizeDateInput(raw), maxYear)
	if !ok {
		return "", fmt.Errorf("invalid date %q: want YYYY, YYYY-MM or YYYY-MM-DD between %d and %d", raw, MinFilterYear, maxYear)
	}
	return v, nil
}
