package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/itsnaaur/OpenLine/internal/accesscode"
	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
	"github.com/itsnaaur/OpenLine/internal/storage"
)

const (
	MaxEvidenceFiles = 3
	MaxEvidenceSize  = 5 << 20 // 5 MB per file
	// codeAttempts bounds the regenerate-on-collision loop. At 34^6
	// possible codes a single collision is already rare; five in a row
	// means something is broken.
	codeAttempts = 5
)

var allowedEvidenceTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// ValidationError marks reporter input rejected before any upload or
// persistence call.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ErrUploadFailed wraps a blob-store failure; the submission is aborted
// before the report record exists.
var ErrUploadFailed = errors.New("evidence upload failed")

type EvidenceFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type SubmitInput struct {
	Subject     string
	Category    string
	Urgency     string
	Description string
	Files       []EvidenceFile
}

// SubmitService validates a submission, stores evidence, then creates the
// report. Uploads strictly precede the database write so a report can
// never reference a file that does not exist; the reverse (orphaned files
// after a failed insert) is accepted and logged.
type SubmitService struct {
	reports repository.ReportRepository
	store   storage.BlobStore
	log     zerolog.Logger
}

func NewSubmitService(reports repository.ReportRepository, store storage.BlobStore, log zerolog.Logger) *SubmitService {
	return &SubmitService{reports: reports, store: store, log: log}
}

func (s *SubmitService) Submit(ctx context.Context, in SubmitInput) (*models.Report, error) {
	category := models.Category(strings.TrimSpace(in.Category))
	urgency := models.Urgency(strings.TrimSpace(in.Urgency))
	description := strings.TrimSpace(in.Description)

	if !category.Valid() {
		return nil, invalidf("invalid category")
	}
	if !urgency.Valid() {
		return nil, invalidf("invalid urgency")
	}
	if description == "" {
		return nil, invalidf("description is required")
	}
	if len(in.Files) > MaxEvidenceFiles {
		return nil, invalidf("at most %d evidence files allowed", MaxEvidenceFiles)
	}
	for _, f := range in.Files {
		if _, ok := allowedEvidenceTypes[f.ContentType]; !ok {
			return nil, invalidf("evidence must be JPEG, PNG or PDF")
		}
		if f.Size <= 0 || f.Size > MaxEvidenceSize {
			return nil, invalidf("evidence file must be under %d MB", MaxEvidenceSize>>20)
		}
	}

	// Uploads first. Any failure aborts the whole submission with no
	// report row written.
	evidence := make([]models.Evidence, 0, len(in.Files))
	for _, f := range in.Files {
		key := uuid.NewString() + allowedEvidenceTypes[f.ContentType]
		if err := s.store.Put(ctx, key, f.ContentType, io.LimitReader(f.Content, MaxEvidenceSize)); err != nil {
			s.log.Error().Err(err).Str("file", f.Name).Msg("evidence upload failed")
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		evidence = append(evidence, models.Evidence{
			ID:          uuid.NewString(),
			ObjectKey:   key,
			FileName:    f.Name,
			ContentType: f.ContentType,
			Size:        f.Size,
		})
	}

	rep := &models.Report{
		Subject:     strings.TrimSpace(in.Subject),
		Category:    category,
		Urgency:     urgency,
		Description: description,
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := accesscode.Generate()
		if err != nil {
			// random source failure is not recoverable
			return nil, err
		}
		rep.AccessCode = code
		err = s.reports.Create(ctx, rep, description, evidence)
		if err == nil {
			return rep, nil
		}
		if errors.Is(err, repository.ErrCodeTaken) {
			s.log.Warn().Int("attempt", attempt+1).Msg("access code collision, regenerating")
			continue
		}
		// Report row never landed; uploaded blobs are now orphans.
		// Deliberately not cleaned up here, just recorded.
		for _, e := range evidence {
			s.log.Error().Str("objectKey", e.ObjectKey).Msg("orphaned evidence after failed create")
		}
		return nil, err
	}
	return nil, errors.New("could not allocate a unique access code")
}
