package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsnaaur/OpenLine/internal/models"
)

func TestToAdvisoryDerivesAgreementFlags(t *testing.T) {
	adv, err := toAdvisory(wireResult{
		CategoryAssessment: "Safety",
		UrgencyAssessment:  "High",
		LawCited:           "RA 11058",
		Reason:             "Imminent electrical hazard.",
	}, models.CategorySafety, models.UrgencyLow)
	require.NoError(t, err)

	assert.Equal(t, models.CategorySafety, adv.Category)
	assert.True(t, adv.CategoryMatch)
	assert.Equal(t, models.UrgencyHigh, adv.Urgency)
	assert.False(t, adv.UrgencyMatch)
	assert.False(t, adv.Match)
	assert.Equal(t, "RA 11058", adv.LawCited)
}

func TestToAdvisoryRejectsUnknownEnums(t *testing.T) {
	_, err := toAdvisory(wireResult{
		CategoryAssessment: "Gossip",
		UrgencyAssessment:  "High",
	}, models.CategorySafety, models.UrgencyLow)
	assert.Error(t, err)

	_, err = toAdvisory(wireResult{
		CategoryAssessment: "Safety",
		UrgencyAssessment:  "Catastrophic",
	}, models.CategorySafety, models.UrgencyLow)
	assert.Error(t, err)
}

func TestToAdvisoryDefaultsLawCitedToNone(t *testing.T) {
	adv, err := toAdvisory(wireResult{
		CategoryAssessment: "Suggestion",
		UrgencyAssessment:  "Low",
	}, models.CategorySuggestion, models.UrgencyLow)
	require.NoError(t, err)
	assert.Equal(t, LawCitedNone, adv.LawCited)
	assert.True(t, adv.Match)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"surrounded", `Sure! {"a":1} Hope that helps.`, `{"a":1}`, true},
		{"no object", "I cannot answer that.", "", false},
		{"empty", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := extractJSON(c.in)
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, c.want, got)
			}
		})
	}
}

func TestLookupLaw(t *testing.T) {
	ref, ok := LookupLaw("RA 11058")
	require.True(t, ok)
	assert.Contains(t, ref.FullDisplayName, "Occupational Safety")

	_, ok = LookupLaw(LawCitedNone)
	assert.False(t, ok)
	_, ok = LookupLaw("")
	assert.False(t, ok)
	_, ok = LookupLaw("RA 99999")
	assert.False(t, ok)

	assert.Equal(t, "RA 99999", LawDisplayName("RA 99999"))
	assert.Equal(t, LawCitedNone, LawDisplayName(""))
}
