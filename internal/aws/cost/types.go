package cost

const (
	metricName = "UnblendedCost"

	// DefaultMonths covers the current and the previous month.
	DefaultMonths = 2
)

// Query selects the Cost Explorer window and grouping.
type Query struct {
	// Months is the number of calendar months to load, the current one included.
	Months int
	// TeamTag is the cost allocation tag holding the team name. Empty skips
	// team grouping.
	TeamTag string
}
