package domain

import "strings"

// Criteria is the matching input shared by the profile-based and the ad-hoc paths.
type Criteria struct {
	Education string   `json:"education"`
	Skills    []string `json:"skills"`
	Interests string   `json:"interests"`
}

func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Education) == "" &&
		strings.TrimSpace(c.Interests) == "" &&
		len(c.Skills) == 0
}
