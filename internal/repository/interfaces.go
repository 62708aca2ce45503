package repository

import (
	"context"
	"errors"

	"github.com/itsnaaur/OpenLine/internal/models"
)

// ErrCodeTaken signals an access-code collision on create; the caller
// regenerates and retries.
var ErrCodeTaken = errors.New("access code already in use")

// OverrideField names the report label an advisory override may change.
type OverrideField string

const (
	FieldCategory OverrideField = "category"
	FieldUrgency  OverrideField = "urgency"
)

func (f OverrideField) Valid() bool {
	return f == FieldCategory || f == FieldUrgency
}

type ReportRepository interface {
	// Create persists the report, its seed reporter message, and its
	// evidence rows as one transaction. Returns ErrCodeTaken when the
	// access code collides with an existing report.
	Create(ctx context.Context, r *models.Report, seedText string, evidence []models.Evidence) error
	Get(ctx context.Context, id string) (*models.Report, error)
	GetByAccessCode(ctx context.Context, code string) (*models.Report, error)
	List(ctx context.Context, f ReportFilter) ([]models.Report, int, error)
	// AppendMessage inserts one message row and bumps last_updated in the
	// same transaction. Appends never rewrite the existing thread.
	AppendMessage(ctx context.Context, reportID string, sender models.Sender, text string) (*models.Message, error)
	UpdateStatus(ctx context.Context, reportID string, status models.Status) error
	// SaveAdvisory replaces the stored advisory wholesale.
	SaveAdvisory(ctx context.Context, reportID string, adv *models.Advisory) error
	// AcceptOverride updates one label field, stores the advisory, and
	// appends the explanatory admin message atomically: no reader may see
	// the field changed without the message or vice versa.
	AcceptOverride(ctx context.Context, reportID string, field OverrideField, newValue string, adv *models.Advisory, messageText string) error
	Summary(ctx context.Context) (*Summary, error)
}

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}

type Summary struct {
	Open       int `json:"open"`
	Resolved7d int `json:"resolved7d"`
	HighOpen   int `json:"highOpen"`
	NewCount   int `json:"new"`
	Total      int `json:"total"`
}
