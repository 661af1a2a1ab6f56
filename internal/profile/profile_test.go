package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddExperiencePrependsAndAssignsIDs(t *testing.T) {
	prof := &Profile{}

	prof.AddExperience(Experience{Title: "Junior Developer", Company: "Acme", From: "2018-01-01"})
	prof.AddExperience(Experience{Title: "Developer", Company: "Acme", From: "2020-01-01"})
	prof.AddExperience(Experience{Title: "Senior Developer", Company: "Globex", From: "2022-01-01"})

	require.Len(t, prof.Experience, 3)
	assert.Equal(t, "Senior Developer", prof.Experience[0].Title)
	assert.Equal(t, "Developer", prof.Experience[1].Title)
	assert.Equal(t, "Junior Developer", prof.Experience[2].Title)

	seenIDs := map[string]bool{}
	for _, entry := range prof.Experience {
		require.NotEmpty(t, entry.ID)
		seenIDs[entry.ID] = true
	}
	assert.Len(t, seenIDs, 3)
}

func TestRemoveExperienceKeepsRelativeOrder(t *testing.T) {
	prof := &Profile{}
	prof.AddExperience(Experience{Title: "First"})
	prof.AddExperience(Experience{Title: "Second"})
	prof.AddExperience(Experience{Title: "Third"})

	// The second-most-recent entry sits in the middle of the sequence.
	prof.RemoveExperience(prof.Experience[1].ID)

	require.Len(t, prof.Experience, 2)
	assert.Equal(t, "Third", prof.Experience[0].Title)
	assert.Equal(t, "First", prof.Experience[1].Title)
}

func TestRemoveExperienceUnknownIDIsNoOp(t *testing.T) {
	prof := &Profile{}
	prof.AddExperience(Experience{Title: "First"})
	prof.AddExperience(Experience{Title: "Second"})

	prof.RemoveExperience("no-such-entry")

	require.Len(t, prof.Experience, 2)
	assert.Equal(t, "Second", prof.Experience[0].Title)
	assert.Equal(t, "First", prof.Experience[1].Title)
}

func TestAddAndRemoveEducation(t *testing.T) {
	prof := &Profile{}
	prof.AddEducation(Education{School: "State University", Degree: "BSc", FieldOfStudy: "CS"})
	prof.AddEducation(Education{School: "Tech Institute", Degree: "MSc", FieldOfStudy: "SE"})

	require.Len(t, prof.Education, 2)
	assert.Equal(t, "Tech Institute", prof.Education[0].School)

	prof.RemoveEducation(prof.Education[0].ID)

	require.Len(t, prof.Education, 1)
	assert.Equal(t, "State University", prof.Education[0].School)

	prof.RemoveEducation("no-such-entry")
	assert.Len(t, prof.Education, 1)
}
