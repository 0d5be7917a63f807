// internal/reconcile/engine_test.go
package reconcile

import (
	"testing"

	"smarttender-engine/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Matches Predicate Tests
// ==========================

func TestMatches(t *testing.T) {
	tests := []struct {
		name          string
		requiredSkill string
		matchedSkills []string
		want          bool
	}{
		{
			name:          "exact match",
			requiredSkill: "Docker",
			matchedSkills: []string{"Docker"},
			want:          true,
		},
		{
			name:          "case insensitive equality",
			requiredSkill: "DOCKER",
			matchedSkills: []string{"docker"},
			want:          true,
		},
		{
			name:          "required contains matched substring",
			requiredSkill: "AWS Certified Solutions Architect",
			matchedSkills: []string{"aws"},
			want:          true,
		},
		{
			name:          "containment is one-directional: required AWS does not contain matched aws certified",
			requiredSkill: "AWS",
			matchedSkills: []string{"aws certified"},
			want:          false,
		},
		{
			name:          "empty matched set always missing",
			requiredSkill: "Kubernetes",
			matchedSkills: []string{},
			want:          false,
		},
		{
			name:          "nil matched set always missing",
			requiredSkill: "Kubernetes",
			matchedSkills: nil,
			want:          false,
		},
		{
			name:          "one match among several is enough",
			requiredSkill: "Node.js",
			matchedSkills: []string{"java", "node.js", "sql"},
			want:          true,
		},
		{
			name:          "unrelated skills stay missing",
			requiredSkill: "Terraform",
			matchedSkills: []string{"python", "react"},
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.requiredSkill, tt.matchedSkills))
		})
	}
}

// ==========================
// Reconcile View Tests
// ==========================

func TestReconcile_PreservesRequirementOrder(t *testing.T) {
	requirements := models.TenderRequirements{
		ExperienceYears: 5,
		Skills:          []string{"AWS", "Docker", "Python Programming"},
	}
	candidate := &models.CandidateResult{
		ID: "c1",
		MatchingInfo: models.MatchingInfo{
			MatchingExplanation: models.MatchingExplanation{
				MatchedSkills: []string{"python", "docker"},
				// The server disagrees; the local view wins.
				MissingSkills: []string{"Python Programming"},
			},
		},
	}

	view := Reconcile(requirements, candidate)

	assert.Len(t, view, 3)
	assert.Equal(t, "AWS", view[0].Skill)
	assert.False(t, view[0].Matched)
	assert.Equal(t, "Docker", view[1].Skill)
	assert.True(t, view[1].Matched)
	assert.Equal(t, "Python Programming", view[2].Skill)
	assert.True(t, view[2].Matched, "server missing_skills must not override the local recomputation")

	assert.Equal(t, 1, MissingCount(view))
}

func TestReconcile_EmptyMatchedSkills_AllMissing(t *testing.T) {
	requirements := models.TenderRequirements{Skills: []string{"AWS", "Docker"}}
	candidate := &models.CandidateResult{ID: "c1"}

	view := Reconcile(requirements, candidate)

	assert.Len(t, view, 2)
	for _, sm := range view {
		assert.False(t, sm.Matched)
	}
	assert.Equal(t, 2, MissingCount(view))
}

// Scenario from the workflow's explainability view: required "AWS"
// against matched "aws certified" stays missing under the documented
// containment direction, while "Docker" is missing outright.
func TestReconcile_ContainmentDirectionScenario(t *testing.T) {
	requirements := models.TenderRequirements{
		ExperienceYears: 5,
		Skills:          []string{"AWS", "Docker"},
	}
	candidate := &models.CandidateResult{
		ID:    "c1",
		Score: 72,
		MatchingInfo: models.MatchingInfo{
			MatchingExplanation: models.MatchingExplanation{
				ExperienceMatch:    models.ExperienceMeets,
				SectorMatch:        models.SectorMatchYes,
				MatchedSkills:      []string{"aws certified"},
				CertificationMatch: []string{},
			},
		},
	}

	view := Reconcile(requirements, candidate)

	assert.False(t, view[0].Matched, `required "AWS" must not match "aws certified"`)
	assert.False(t, view[1].Matched)
}
