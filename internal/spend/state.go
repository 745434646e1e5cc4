package spend

// State is the dashboard's view state over one loaded record set. Any change
// to the filters, the sort, or the page size returns to the first page.
type State struct {
	records     []Record
	criteria    Criteria
	sort        SortSpec
	defaultSort SortSpec
	page        int
	pageSize    int
}

// Derived is everything the presentation needs, recomputed from State.
type Derived struct {
	// Filtered is the filtered and sorted sequence.
	Filtered   []Record
	Page       Page
	Aggregates Aggregates
	Daily      []DailyTotal
	Loaded     int
}

// NewState creates an empty state. Invalid page sizes fall back to the
// default; a zero sort falls back to DefaultSort.
func NewState(pageSize int, sort SortSpec) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if sort.Field == "" {
		sort = DefaultSort
	}
	return &State{
		sort:        sort,
		defaultSort: sort,
		page:        1,
		pageSize:    pageSize,
	}
}

// SetRecords replaces the loaded records. The page is kept, clamped to the
// new last page, so a refresh does not jump back to the first page.
func (s *State) SetRecords(records []Record) {
	s.records = records
	s.page = min(s.page, s.totalPages())
}

func (s *State) totalPages() int {
	return TotalPages(len(Filter(s.records, s.criteria)), s.pageSize)
}

func (s *State) Records() []Record  { return s.records }
func (s *State) Criteria() Criteria { return s.criteria }
func (s *State) Sort() SortSpec     { return s.sort }
func (s *State) PageSize() int      { return s.pageSize }

// PageNumber is the current 1-based page, clamped to the filtered rows.
func (s *State) PageNumber() int {
	return min(s.page, s.totalPages())
}

// SetFilter sets one filter; an empty value removes it.
func (s *State) SetFilter(key FilterKey, value string) {
	s.criteria = s.criteria.With(key, value)
	s.page = 1
}

// SetCriteria replaces every filter at once.
func (s *State) SetCriteria(c Criteria) {
	s.criteria = c
	s.page = 1
}

func (s *State) SetSort(spec SortSpec) {
	s.sort = spec
	s.page = 1
}

func (s *State) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	s.pageSize = size
	s.page = 1
}

// SetPage moves to page n; it is clamped when derived.
func (s *State) SetPage(n int) {
	s.page = max(n, 1)
}

// NextPage advances one page, stopping at the last.
func (s *State) NextPage() {
	total := s.totalPages()
	s.page = min(s.page, total)
	if s.page < total {
		s.page++
	}
}

// PrevPage goes back one page, stopping at the first.
func (s *State) PrevPage() {
	s.page = min(s.page, s.totalPages())
	if s.page > 1 {
		s.page--
	}
}

// Reset clears the filters and restores the default sort.
func (s *State) Reset() {
	s.criteria = Criteria{}
	s.sort = s.defaultSort
	s.page = 1
}

// Derive runs the filter, sort and paginate pipeline and aggregates the
// filtered rows.
func (s *State) Derive() Derived {
	filtered := Sort(Filter(s.records, s.criteria), s.sort)
	page := Paginate(filtered, s.page, s.pageSize)
	return Derived{
		Filtered:   filtered,
		Page:       page,
		Aggregates: Aggregate(filtered),
		Daily:      DailyTotals(filtered),
		Loaded:     len(s.records),
	}
}
