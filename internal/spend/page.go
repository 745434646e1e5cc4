package spend

import "fmt"

// PageSizes are the page sizes offered by the table.
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Page is one fixed-size window over a record sequence. Number is 1-based.
type Page struct {
	Number     int
	Size       int
	TotalPages int
	TotalRows  int
	// Start and End index the window in the full sequence, End exclusive.
	Start int
	End   int
	Rows  []Record
}

// TotalPages returns ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (n + size - 1) / size
	return max(pages, 1)
}

// Paginate returns page number (1-based) of records. Out-of-range page
// numbers are clamped.
func Paginate(records []Record, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(records), size)
	number = min(max(number, 1), total)

	start := min((number-1)*size, len(records))
	end := min(start+size, len(records))

	return Page{
		Number:     number,
		Size:       size,
		TotalPages: total,
		TotalRows:  len(records),
		Start:      start,
		End:        end,
		Rows:       records[start:end],
	}
}

// Showing renders "Showing 1-10 of 42 rows".
func (p Page) Showing() string {
	if p.TotalRows == 0 {
		return "Showing 0 rows"
	}
	return fmt.Sprintf("Showing %d-%d of %d rows", p.Start+1, p.End, p.TotalRows)
}

// Status renders "Page 1/5", empty for a single page.
func (p Page) Status() string {
	if p.TotalPages <= 1 {
		return ""
	}
	return fmt.Sprintf("Page %d/%d", p.Number, p.TotalPages)
}

// NextPageSize cycles through PageSizes.
func NextPageSize(size int) int {
	for i, s := range PageSizes {
		if s == size {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return PageSizes[0]
}
