package models

// Institution represents one normalized institution record extracted from an
// uploaded data dump. Name and Code are required; the extraction layer derives
// Code, Type, Description and Rating when the source omits them.
type Institution struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Type        string   `json:"type,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Courses     []string `json:"courses,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	TotalSeats  int      `json:"totalSeats,omitempty"`
	FeeRange    string   `json:"feeRange,omitempty"`
	Placement   int      `json:"placement,omitempty"` // percentage of placed graduates
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	Website     string   `json:"website,omitempty"`
	Established int      `json:"established,omitempty"`
	Affiliation string   `json:"affiliation,omitempty"`
}

// Valid reports whether the record satisfies the acceptance invariant:
// both name and code must be non-empty after derivation.
func (i *Institution) Valid() bool {
	return i.Name != "" && i.Code != ""
}
