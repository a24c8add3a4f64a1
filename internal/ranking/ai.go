package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/actuallystonmai/internship-recommender/internal/llm"
	"google.golang.org/api/googleapi"
)

const notSpecified = "Not specified"

// AIProvider ranks listings by asking a text-generation model.
type AIProvider struct {
	generator llm.Generator
}

func NewAIProvider(generator llm.Generator) *AIProvider {
	return &AIProvider{generator: generator}
}

func (p *AIProvider) Rank(ctx context.Context, req Request) ([]domain.Recommendation, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	text, err := p.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	return ParseRecommendations(text)
}

type promptListing struct {
	Title    string   `json:"title"`
	Sector   string   `json:"sector"`
	Skills   []string `json:"skills"`
	Location string   `json:"location"`
}

// BuildPrompt renders the counsellor instruction for a profile or for ad-hoc criteria.
func BuildPrompt(req Request) (string, error) {
	listings := make([]promptListing, 0, len(req.Listings))
	for _, l := range req.Listings {
		listings = append(listings, promptListing{Title: l.Title, Sector: l.Sector, Skills: l.Skills, Location: l.Location})
	}
	listingJSON, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal listings: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an expert career counselor. ")
	if req.Profile != nil {
		profileJSON, err := json.Marshal(req.Profile)
		if err != nil {
			return "", fmt.Errorf("marshal profile: %w", err)
		}
		sb.WriteString("Analyze the following user profile and internship listings.\n")
		sb.WriteString("Identify the top 3-5 most suitable internships. For each recommendation, provide a brief (1-2 sentences) justification explaining why it's a great match for the user's profile.\n")
		sb.WriteString("User Profile: ")
		sb.Write(profileJSON)
		sb.WriteString("\n")
	} else {
		sb.WriteString("Analyze the following user search criteria and internship listings.\n")
		sb.WriteString("Identify the top 3-5 most suitable internships. For each recommendation, provide a brief (1-2 sentences) justification.\n")
		sb.WriteString("User search criteria:\n")
		sb.WriteString(fmt.Sprintf("- Education: %s\n", orNotSpecified(req.Criteria.Education)))
		sb.WriteString(fmt.Sprintf("- Skills: %s\n", orNotSpecified(strings.Join(req.Criteria.Skills, ", "))))
		sb.WriteString(fmt.Sprintf("- Interests: %s\n", orNotSpecified(req.Criteria.Interests)))
	}
	sb.WriteString("Available Internships: ")
	sb.Write(listingJSON)
	sb.WriteString("\n")
	sb.WriteString("Output the recommendations in a JSON array format, with each object containing 'title', 'sector', 'skills', 'location', and a new 'justification' field.\n")

	return sb.String(), nil
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return notSpecified
	}
	return v
}

type aiRecommendation struct {
	Title         string           `json:"title"`
	Sector        string           `json:"sector"`
	Skills        domain.SkillList `json:"skills"`
	Location      string           `json:"location"`
	Justification string           `json:"justification"`
}

// ParseRecommendations extracts the JSON array spanning the first '[' and the last ']' of text.
func ParseRecommendations(text string) ([]domain.Recommendation, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in response", ErrMalformedResponse)
	}

	var raw []aiRecommendation
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	recs := make([]domain.Recommendation, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		skills := []string(r.Skills)
		if skills == nil {
			skills = []string{}
		}
		recs = append(recs, domain.Recommendation{
			Title:         r.Title,
			Sector:        r.Sector,
			Skills:        skills,
			Location:      r.Location,
			Justification: strings.TrimSpace(r.Justification),
		})
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no usable recommendations", ErrMalformedResponse)
	}

	if len(recs) > domain.MaxRecommendations {
		recs = recs[:domain.MaxRecommendations]
	}
	return recs, nil
}

func classifyError(ctx context.Context, err error) *ServiceError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ServiceError{Reason: ReasonTimeout, Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return &ServiceError{Reason: ReasonQuota, Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &ServiceError{Reason: ReasonAuth, Err: err}
		}
	}
	return &ServiceError{Reason: ReasonUnavailable, Err: err}
}
