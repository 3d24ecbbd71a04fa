package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusApplied, StatusInterview, StatusAccepted, StatusRejected, StatusOther} {
		assert.True(t, ValidStatus(s), s)
	}

	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("ghosted"))
	assert.False(t, ValidStatus("Applied"), "status values are case sensitive")
}

func TestPersonalInfoJSONShape(t *testing.T) {
	phone := "+123456"
	info := PersonalInfo{
		ID:        1,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     &phone,
		Skills: map[string][]string{
			"Languages": {"Go", "Python"},
		},
		Experience: []ExperienceEntry{
			{Title: "Engineer", Company: "Analytical Engines", StartDate: "1842-01"},
		},
	}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "ada@example.com", decoded["email"])
	assert.Contains(t, decoded, "skills")
	assert.NotContains(t, decoded, "address", "unset optional fields stay off the wire")
}

func TestJobApplicationMatchedProjectsStaysRawJSON(t *testing.T) {
	app := JobApplication{
		ID:              1,
		JobTitle:        "Backend Engineer",
		CompanyName:     "Acme",
		Status:          StatusApplied,
		MatchedProjects: json.RawMessage(`[{"name":"api-server"}]`),
	}

	data, err := json.Marshal(app)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"matched_projects":[{"name":"api-server"}]`)
}
