package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsnaaur/OpenLine/internal/advisory"
	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
	"github.com/itsnaaur/OpenLine/internal/service"
)

// adminRepo extends fakeRepo with the triage operations.
type adminRepo struct {
	fakeRepo
	statusUpdates []models.Status
	overrideCalls int
}

func (f *adminRepo) Get(ctx context.Context, id string) (*models.Report, error) {
	if f.report != nil && f.report.ID == id {
		return f.report, nil
	}
	return nil, nil
}

func (f *adminRepo) UpdateStatus(ctx context.Context, reportID string, status models.Status) error {
	if f.report == nil || f.report.ID != reportID {
		return pgx.ErrNoRows
	}
	f.statusUpdates = append(f.statusUpdates, status)
	f.report.Status = status
	f.report.LastUpdated = time.Now()
	return nil
}

func (f *adminRepo) SaveAdvisory(ctx context.Context, reportID string, adv *models.Advisory) error {
	f.report.Advisory = adv
	f.report.LastUpdated = time.Now()
	return nil
}

func (f *adminRepo) AcceptOverride(ctx context.Context, reportID string, field repository.OverrideField, newValue string, adv *models.Advisory, messageText string) error {
	f.overrideCalls++
	switch field {
	case repository.FieldCategory:
		f.report.Category = models.Category(newValue)
	case repository.FieldUrgency:
		f.report.Urgency = models.Urgency(newValue)
	}
	f.report.Advisory = adv
	f.report.Messages = append(f.report.Messages, models.Message{
		Sender: models.SenderAdmin, Text: messageText, CreatedAt: time.Now(),
	})
	f.report.LastUpdated = time.Now()
	return nil
}

type stubClassifier struct {
	adv *models.Advisory
	err error
}

func (s *stubClassifier) Check(ctx context.Context, description string, category models.Category, urgency models.Urgency) (*models.Advisory, error) {
	return s.adv, s.err
}

func seededAdminRepo() *adminRepo {
	now := time.Now()
	return &adminRepo{fakeRepo: fakeRepo{report: &models.Report{
		ID:          "rep-1",
		AccessCode:  "8X2-99-B",
		Category:    models.CategoryFacility,
		Urgency:     models.UrgencyLow,
		Description: "exposed live wiring near the break room, already sparked once",
		Status:      models.StatusNew,
		CreatedAt:   now,
		LastUpdated: now,
	}}}
}

func newAdminRouter(repo *adminRepo, cls *stubClassifier) http.Handler {
	h := NewAdminHTTP(repo, service.NewAdvisoryService(repo, cls))
	r := chi.NewRouter()
	r.Route("/api/admin/reports/{id}", func(r chi.Router) {
		r.Patch("/status", h.UpdateStatus())
		r.Post("/messages", h.AddMessage())
		r.Post("/classify", h.Classify())
		r.Put("/advisory", h.SaveAdvisory())
		r.Post("/override", h.Override())
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStatusTransitions(t *testing.T) {
	repo := seededAdminRepo()
	r := newAdminRouter(repo, &stubClassifier{})

	// any state is reachable from any other
	for _, s := range []string{"In Progress", "Resolved", "New"} {
		rec := doJSON(t, r, http.MethodPatch, "/api/admin/reports/rep-1/status", map[string]string{"status": s})
		require.Equal(t, http.StatusOK, rec.Code, "status %q", s)
	}
	assert.Equal(t, []models.Status{models.StatusInProgress, models.StatusResolved, models.StatusNew}, repo.statusUpdates)

	rec := doJSON(t, r, http.MethodPatch, "/api/admin/reports/rep-1/status", map[string]string{"status": "Closed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, repo.statusUpdates, 3)
}

// Mutations on an unknown report get the same generic 404 as a read,
// never a raw driver error.
func TestAdminMutationsOnUnknownReport(t *testing.T) {
	repo := seededAdminRepo()
	r := newAdminRouter(repo, &stubClassifier{})

	rec := doJSON(t, r, http.MethodPatch, "/api/admin/reports/ghost/status",
		map[string]string{"status": "Resolved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), genericNotFound)
	assert.NotContains(t, rec.Body.String(), "no rows")
	assert.Empty(t, repo.statusUpdates)

	rec = doJSON(t, r, http.MethodPost, "/api/admin/reports/ghost/messages",
		map[string]string{"text": "any update on this?"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), genericNotFound)
	assert.NotContains(t, rec.Body.String(), "no rows")
}

func TestAdminMessageAppends(t *testing.T) {
	repo := seededAdminRepo()
	r := newAdminRouter(repo, &stubClassifier{})

	rec := doJSON(t, r, http.MethodPost, "/api/admin/reports/rep-1/messages",
		map[string]string{"text": "we are looking into this"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.report.Messages, 1)
	assert.Equal(t, models.SenderAdmin, repo.report.Messages[0].Sender)
}

func TestClassifyReturnsAdvisoryWithoutPersisting(t *testing.T) {
	repo := seededAdminRepo()
	adv := &models.Advisory{
		Category: models.CategorySafety, Urgency: models.UrgencyHigh,
		LawCited: "RA 11058", Reason: "Imminent electrical hazard.",
	}
	r := newAdminRouter(repo, &stubClassifier{adv: adv})

	rec := doJSON(t, r, http.MethodPost, "/api/admin/reports/rep-1/classify", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Advisory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.UrgencyHigh, got.Urgency)
	assert.Equal(t, "RA 11058", got.LawCited)
	assert.Nil(t, repo.report.Advisory, "classify must not persist")
}

func TestClassifyUnavailableIsSignaledNotFabricated(t *testing.T) {
	repo := seededAdminRepo()
	r := newAdminRouter(repo, &stubClassifier{err: advisory.ErrUnavailable})

	rec := doJSON(t, r, http.MethodPost, "/api/admin/reports/rep-1/classify", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no assessment available")
}

func TestOverrideAcceptIsOneAtomicWrite(t *testing.T) {
	repo := seededAdminRepo()
	repo.report.Advisory = &models.Advisory{
		Category: models.CategorySafety, Urgency: models.UrgencyHigh,
		LawCited: "RA 11058", Reason: "Imminent electrical hazard.",
	}
	r := newAdminRouter(repo, &stubClassifier{})

	before := len(repo.report.Messages)
	rec := doJSON(t, r, http.MethodPost, "/api/admin/reports/rep-1/override",
		map[string]string{"field": "urgency", "newValue": "High"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, repo.overrideCalls)
	assert.Equal(t, models.UrgencyHigh, repo.report.Urgency)
	require.Len(t, repo.report.Messages, before+1)
	msg := repo.report.Messages[len(repo.report.Messages)-1]
	assert.Equal(t, models.SenderAdmin, msg.Sender)
	assert.Contains(t, msg.Text, `"Low"`)
	assert.Contains(t, msg.Text, `"High"`)
}

func TestOverrideRejectsValueDisagreeingWithAdvisory(t *testing.T) {
	repo := seededAdminRepo()
	repo.report.Advisory = &models.Advisory{
		Category: models.CategorySafety, Urgency: models.UrgencyHigh,
	}
	r := newAdminRouter(repo, &stubClassifier{})

	rec := doJSON(t, r, http.MethodPost, "/api/admin/reports/rep-1/override",
		map[string]string{"field": "urgency", "newValue": "Medium"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, repo.overrideCalls)
}

func TestOverrideWithoutAdvisoryConflicts(t *testing.T) {
	repo := seededAdminRepo()
	r := newAdminRouter(repo, &stubClassifier{})

	rec := doJSON(t, r, http.MethodPost, "/api/admin/reports/rep-1/override",
		map[string]string{"field": "urgency", "newValue": "High"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
