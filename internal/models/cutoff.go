package models

// Defaults applied to cutoff rows whose source omits the value.
const (
	DefaultTotalSeats = 60
	DefaultFee        = 50000
	DefaultDuration   = "4 years"
)

// MaxRankCutoff is the exclusive sanity bound for rank values. Rows with a
// rank of 0, negative, or at/above this bound are discarded, never zeroed.
const MaxRankCutoff = 100000

// CutoffRecord is one historical data point: the lowest qualifying rank
// admitted to an institution/course/category in a given year.
type CutoffRecord struct {
	ID              string `json:"id,omitempty"`
	Year            int    `json:"year"`
	InstitutionCode string `json:"institutionCode,omitempty"`
	InstitutionName string `json:"institutionName"`
	CourseName      string `json:"courseName"`
	Category        string `json:"category"`
	RankCutoff      int    `json:"rankCutoff"`
	TotalSeats      int    `json:"totalSeats"`
	Fee             int    `json:"fee"`
	Duration        string `json:"duration"`
}

// ValidRank reports whether a candidate rank value passes the sanity bound.
func ValidRank(rank int) bool {
	return rank > 0 && rank < MaxRankCutoff
}
