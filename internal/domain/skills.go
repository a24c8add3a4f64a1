package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SkillList decodes from either a JSON array of strings or a comma-separated string.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = SkillList{}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = cleanSkills(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("skills must be an array of strings or a comma-separated string")
	}
	*s = ParseSkills(joined)
	return nil
}

// ParseSkills splits a comma-separated skill string, trimming blanks.
func ParseSkills(joined string) SkillList {
	return cleanSkills(strings.Split(joined, ","))
}

func cleanSkills(raw []string) SkillList {
	out := make(SkillList, 0, len(raw))
	for _, skill := range raw {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
