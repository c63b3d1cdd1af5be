package models

// Trend labels the direction of a group's cutoff movement between older and
// recent years.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Prediction is one scored admission recommendation for an applicant.
type Prediction struct {
	InstitutionName string `json:"institutionName"`
	CourseName      string `json:"courseName"`
	Category        string `json:"category"`
	Confidence      int    `json:"confidence"` // 0-100, clamped
	AverageCutoff   int    `json:"averageCutoff"`
	Trend           Trend  `json:"trend"`
}

// PredictionResult buckets predictions into three confidence tiers, each
// sorted descending by confidence.
type PredictionResult struct {
	High     []Prediction `json:"high"`
	Medium   []Prediction `json:"medium"`
	Low      []Prediction `json:"low"`
	Analysis string       `json:"analysis"`
}

// Total returns the number of predictions across all buckets.
func (r *PredictionResult) Total() int {
	return len(r.High) + len(r.Medium) + len(r.Low)
}
