package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want SkillList
	}{
		{"array", `["Go", " SQL ", ""]`, SkillList{"Go", "SQL"}},
		{"comma string", `"Python, Excel ,,SQL"`, SkillList{"Python", "Excel", "SQL"}},
		{"empty string", `""`, SkillList{}},
		{"null", `null`, SkillList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SkillList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSkillList_RejectsOtherTypes(t *testing.T) {
	var got SkillList
	assert.Error(t, json.Unmarshal([]byte(`42`), &got))
}

func TestProfile_NormalizeAndCriteria(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"education":"B.Tech","skills":"Go, SQL","interests":"IT"}`), &p))
	p.Normalize()

	assert.Equal(t, DefaultWorkType, p.WorkType)
	assert.Equal(t, Criteria{Education: "B.Tech", Skills: []string{"Go", "SQL"}, Interests: "IT"}, p.Criteria())
}

func TestCriteria_IsEmpty(t *testing.T) {
	assert.True(t, Criteria{}.IsEmpty())
	assert.True(t, Criteria{Education: "  ", Interests: "\t"}.IsEmpty())
	assert.False(t, Criteria{Skills: []string{"Go"}}.IsEmpty())
	assert.False(t, Criteria{Interests: "IT"}.IsEmpty())
}

func TestFromListing_CopiesSkills(t *testing.T) {
	l := Listing{Title: "Backend Intern", Sector: "IT", Skills: []string{"Go"}, Location: "Remote"}
	rec := FromListing(l)
	rec.Skills[0] = "Rust"

	assert.Equal(t, "Go", l.Skills[0])
	assert.Equal(t, "Backend Intern", rec.Title)
}
