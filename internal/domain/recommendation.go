package domain

// MaxRecommendations bounds every list handed back to callers.
const MaxRecommendations = 5

type Recommendation struct {
	Title         string   `json:"title"`
	Sector        string   `json:"sector"`
	Skills        []string `json:"skills"`
	Location      string   `json:"location"`
	Justification string   `json:"justification,omitempty"`
	Score         int      `json:"score,omitempty"`
}

type Source string

const (
	SourceCache     Source = "cache"
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
)

type RecommendationResult struct {
	Recommendations []Recommendation
	Source          Source
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchUserResult struct {
	UserID          int64            `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Status          BatchStatus      `json:"status"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}

// FromListing copies the display fields of a listing.
func FromListing(l Listing) Recommendation {
	skills := make([]string, len(l.Skills))
	copy(skills, l.Skills)
	return Recommendation{
		Title:    l.Title,
		Sector:   l.Sector,
		Skills:   skills,
		Location: l.Location,
	}
}
