package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/itsnaaur/OpenLine/internal/advisory"
	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
)

var (
	ErrReportNotFound = errors.New("report not found")
	// ErrNoAdvisory means an override was attempted before any advisory
	// was persisted for the report.
	ErrNoAdvisory = errors.New("no advisory on record")
	// ErrOverrideMismatch means the requested value is not what the
	// stored advisory assessed. Override is an acceptance action, not
	// free-form editing.
	ErrOverrideMismatch = errors.New("override value does not match advisory assessment")
)

// AdvisoryService runs the compliance classifier and applies accepted
// overrides.
type AdvisoryService struct {
	reports    repository.ReportRepository
	classifier advisory.Classifier
}

func NewAdvisoryService(reports repository.ReportRepository, classifier advisory.Classifier) *AdvisoryService {
	return &AdvisoryService{reports: reports, classifier: classifier}
}

// Run produces a fresh advisory for the report. It persists nothing;
// storing the result is a separate call.
func (s *AdvisoryService) Run(ctx context.Context, reportID string) (*models.Advisory, error) {
	rep, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrReportNotFound
	}
	return s.classifier.Check(ctx, rep.Description, rep.Category, rep.Urgency)
}

// Save replaces the report's stored advisory wholesale.
func (s *AdvisoryService) Save(ctx context.Context, reportID string, adv *models.Advisory) error {
	if !adv.Category.Valid() || !adv.Urgency.Valid() {
		return invalidf("advisory has invalid assessment values")
	}
	rep, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return err
	}
	if rep == nil {
		return ErrReportNotFound
	}
	return s.reports.SaveAdvisory(ctx, reportID, adv)
}

// AcceptOverride applies the stored advisory's assessed value to one label
// field and appends the explanatory admin message, as one atomic write.
// The requested value must equal the advisory's assessment.
func (s *AdvisoryService) AcceptOverride(ctx context.Context, reportID string, field repository.OverrideField, newValue string) (*models.Report, error) {
	if !field.Valid() {
		return nil, invalidf("field must be %q or %q", repository.FieldCategory, repository.FieldUrgency)
	}

	rep, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrReportNotFound
	}
	if rep.Advisory == nil {
		return nil, ErrNoAdvisory
	}

	var oldValue, assessed string
	switch field {
	case repository.FieldCategory:
		oldValue, assessed = string(rep.Category), string(rep.Advisory.Category)
	case repository.FieldUrgency:
		oldValue, assessed = string(rep.Urgency), string(rep.Advisory.Urgency)
	}
	if newValue != assessed {
		return nil, ErrOverrideMismatch
	}

	text := overrideMessage(field, oldValue, newValue, rep.Advisory)
	if err := s.reports.AcceptOverride(ctx, reportID, field, newValue, rep.Advisory, text); err != nil {
		return nil, err
	}
	return s.reports.Get(ctx, reportID)
}

// overrideMessage composes the reporter-visible notice, citing the rule
// that justified the change.
func overrideMessage(field repository.OverrideField, oldValue, newValue string, adv *models.Advisory) string {
	text := fmt.Sprintf(
		"Following a compliance review, the %s of this report was changed from %q to %q.",
		field, oldValue, newValue,
	)
	if adv.LawCited != "" && adv.LawCited != advisory.LawCitedNone {
		text += fmt.Sprintf(" Basis: %s.", advisory.LawDisplayName(adv.LawCited))
	}
	if adv.Reason != "" {
		text += " " + adv.Reason
	}
	return text
}
