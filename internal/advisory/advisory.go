// Package advisory implements the compliance classification check: given a
// report description and the reporter's own category/urgency labels, it asks
// a generative model for an independent assessment and flags disagreement.
// The result is advisory only; accepting it is an explicit admin action.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itsnaaur/OpenLine/internal/models"
)

// ErrUnavailable is returned when no well-formed assessment could be
// obtained. Callers must surface "no assessment" rather than invent one.
var ErrUnavailable = errors.New("advisory: no assessment available")

type Classifier interface {
	Check(ctx context.Context, description string, category models.Category, urgency models.Urgency) (*models.Advisory, error)
}

// buildPrompt mirrors the compliance-officer prompt the portal has always
// used; the model must answer with a single JSON object.
func buildPrompt(description string, category models.Category, urgency models.Urgency) string {
	return fmt.Sprintf(`Role: Corporate Compliance Officer (Philippines).
Task: Compare the User's claimed Urgency vs. Actual Risk based on Philippine Laws.

Report:
- %q (Category: %s)
- User Claimed: %s

Reference Laws:
1. RA 11058 (OSH Law): High Urgency if "Imminent Danger" to safety exists (e.g., exposed chemicals, unstable structures, electrical hazards, fire risks).
2. RA 11313 (Safe Spaces Act): High Urgency for sexual harassment/abuse, gender-based violence, or workplace discrimination.
3. RA 11232 (Corp Code): High Urgency for fraud, financial crime, bribery, theft, or falsifying records.

Analyze the description and determine the actual urgency level based on these laws.
If the situation poses immediate danger to life or health, it MUST be High.
If it involves legal violations (harassment, fraud), it MUST be High.
If it's a minor facility issue or suggestion, it should be Low or Medium.

Output ONLY valid JSON (no markdown, no code blocks):
{
  "categoryAssessment": "Safety" | "Harassment" | "Facility Issue" | "Suggestion",
  "urgencyAssessment": "Low" | "Medium" | "High",
  "lawCited": "string (e.g., RA 11058, RA 11313, RA 11232, or 'None')",
  "reason": "Short explanation (1-2 sentences)."
}`, description, category, urgency)
}

// wireResult is the raw shape expected back from the model.
type wireResult struct {
	CategoryAssessment string `json:"categoryAssessment"`
	UrgencyAssessment  string `json:"urgencyAssessment"`
	LawCited           string `json:"lawCited"`
	Reason             string `json:"reason"`
}

// toAdvisory validates a raw model answer and derives the agreement flags
// against the reporter's labels. Malformed answers are rejected so the
// caller can retry or fail cleanly.
func toAdvisory(w wireResult, category models.Category, urgency models.Urgency) (*models.Advisory, error) {
	ac := models.Category(strings.TrimSpace(w.CategoryAssessment))
	au := models.Urgency(strings.TrimSpace(w.UrgencyAssessment))
	if !ac.Valid() {
		return nil, fmt.Errorf("advisory: invalid category assessment %q", w.CategoryAssessment)
	}
	if !au.Valid() {
		return nil, fmt.Errorf("advisory: invalid urgency assessment %q", w.UrgencyAssessment)
	}
	law := strings.TrimSpace(w.LawCited)
	if law == "" {
		law = LawCitedNone
	}
	adv := &models.Advisory{
		Category:      ac,
		CategoryMatch: ac == category,
		Urgency:       au,
		UrgencyMatch:  au == urgency,
		LawCited:      law,
		Reason:        strings.TrimSpace(w.Reason),
	}
	adv.Match = adv.CategoryMatch && adv.UrgencyMatch
	return adv, nil
}

// extractJSON pulls the first JSON object out of a model reply, tolerating
// the markdown code fences some models wrap answers in.
func extractJSON(text string) (string, bool) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
