package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is what auth responses expose about the account.
type UserSummary struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Profile is stored as a single JSONB document.
type Profile struct {
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	DateOfBirth       string    `json:"dateOfBirth,omitempty"`
	Location          string    `json:"location"`
	Education         string    `json:"education"`
	University        string    `json:"university"`
	GraduationYear    int       `json:"graduationYear,omitempty"`
	FieldOfStudy      string    `json:"fieldOfStudy"`
	Skills            SkillList `json:"skills"`
	Experience        string    `json:"experience"`
	LinkedIn          string    `json:"linkedIn"`
	GitHub            string    `json:"github"`
	Portfolio         string    `json:"portfolio"`
	Bio               string    `json:"bio"`
	Interests         string    `json:"interests"`
	PreferredLocation string    `json:"preferredLocation"`
	ExpectedSalary    string    `json:"expectedSalary"`
	Availability      string    `json:"availability"`
	WorkType          string    `json:"workType"`
}

const DefaultWorkType = "remote"

// Normalize fills defaults and guarantees a non-nil skills slice.
func (p *Profile) Normalize() {
	if p.WorkType == "" {
		p.WorkType = DefaultWorkType
	}
	if p.Skills == nil {
		p.Skills = SkillList{}
	}
}

func (p Profile) Criteria() Criteria {
	return Criteria{
		Education: p.Education,
		Skills:    []string(p.Skills),
		Interests: p.Interests,
	}
}
