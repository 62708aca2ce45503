package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/itsnaaur/OpenLine/internal/advisory"
	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
	"github.com/itsnaaur/OpenLine/internal/service"
	"github.com/itsnaaur/OpenLine/internal/utils"
)

// AdminHTTP wires the privileged triage endpoints. Authorization happens
// in middleware; by the time these run the caller is a verified admin.
type AdminHTTP struct {
	reports    repository.ReportRepository
	advisories *service.AdvisoryService
}

func NewAdminHTTP(reports repository.ReportRepository, advisories *service.AdvisoryService) *AdminHTTP {
	return &AdminHTTP{reports: reports, advisories: advisories}
}

// -----------------------------------------------------------------------------
// GET /api/admin/reports
// -----------------------------------------------------------------------------
func (h *AdminHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.ReportFilter{
			Q:        strings.TrimSpace(qv.Get("q")),
			Status:   strings.TrimSpace(qv.Get("status")),
			Category: strings.TrimSpace(qv.Get("category")),
			Urgency:  strings.TrimSpace(qv.Get("urgency")),
			Limit:    utils.QueryInt(qv, "limit", 50),
			Offset:   utils.QueryInt(qv, "offset", 0),
			Sort:     qv.Get("sort"),
			Order:    qv.Get("order"),
		}

		items, total, err := h.reports.List(r.Context(), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// -----------------------------------------------------------------------------
// GET /api/admin/reports/summary
// -----------------------------------------------------------------------------
func (h *AdminHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.reports.Summary(r.Context())
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, s)
	}
}

// -----------------------------------------------------------------------------
// GET /api/admin/reports/{id}
// -----------------------------------------------------------------------------
func (h *AdminHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		rep, err := h.reports.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rep == nil {
			utils.Error(w, http.StatusNotFound, genericNotFound)
			return
		}
		utils.JSON(w, http.StatusOK, rep)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/admin/reports/{id}/status
// -----------------------------------------------------------------------------
func (h *AdminHTTP) UpdateStatus() http.HandlerFunc {
	type inDTO struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		status := models.Status(strings.TrimSpace(in.Status))
		if !status.Valid() {
			utils.Error(w, http.StatusBadRequest, "invalid status")
			return
		}

		if err := h.reports.UpdateStatus(r.Context(), id, status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				utils.Error(w, http.StatusNotFound, genericNotFound)
				return
			}
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		rep, err := h.reports.Get(r.Context(), id)
		if err != nil || rep == nil {
			utils.Error(w, http.StatusInternalServerError, "report not found after update")
			return
		}
		utils.JSON(w, http.StatusOK, rep)
	}
}

// -----------------------------------------------------------------------------
// POST /api/admin/reports/{id}/messages
// -----------------------------------------------------------------------------
func (h *AdminHTTP) AddMessage() http.HandlerFunc {
	type inDTO struct {
		Text string `json:"text"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Text = strings.TrimSpace(in.Text)
		if in.Text == "" {
			utils.Error(w, http.StatusBadRequest, "text is required")
			return
		}

		msg, err := h.reports.AppendMessage(r.Context(), id, models.SenderAdmin, in.Text)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				utils.Error(w, http.StatusNotFound, genericNotFound)
				return
			}
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, msg)
	}
}

// -----------------------------------------------------------------------------
// POST /api/admin/reports/{id}/classify
// Runs the compliance check and returns the advisory without persisting it.
// -----------------------------------------------------------------------------
func (h *AdminHTTP) Classify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		adv, err := h.advisories.Run(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrReportNotFound):
				utils.Error(w, http.StatusNotFound, genericNotFound)
			case errors.Is(err, advisory.ErrUnavailable):
				// Never fabricate an assessment; say it is unavailable.
				utils.Error(w, http.StatusServiceUnavailable, "no assessment available")
			default:
				utils.Error(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		utils.JSON(w, http.StatusOK, adv)
	}
}

// -----------------------------------------------------------------------------
// PUT /api/admin/reports/{id}/advisory
// Persists a previously returned advisory, replacing any stored one.
// -----------------------------------------------------------------------------
func (h *AdminHTTP) SaveAdvisory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		var adv models.Advisory
		if err := json.NewDecoder(r.Body).Decode(&adv); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		if err := h.advisories.Save(r.Context(), id, &adv); err != nil {
			var ve *service.ValidationError
			switch {
			case errors.As(err, &ve):
				utils.Error(w, http.StatusBadRequest, ve.Error())
			case errors.Is(err, service.ErrReportNotFound):
				utils.Error(w, http.StatusNotFound, genericNotFound)
			default:
				utils.Error(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		utils.JSON(w, http.StatusOK, adv)
	}
}

// -----------------------------------------------------------------------------
// POST /api/admin/reports/{id}/override
// Accepts the stored advisory's assessment for one label field.
// -----------------------------------------------------------------------------
func (h *AdminHTTP) Override() http.HandlerFunc {
	type inDTO struct {
		Field    string `json:"field"`
		NewValue string `json:"newValue"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		rep, err := h.advisories.AcceptOverride(
			r.Context(), id,
			repository.OverrideField(strings.TrimSpace(in.Field)),
			strings.TrimSpace(in.NewValue),
		)
		if err != nil {
			var ve *service.ValidationError
			switch {
			case errors.As(err, &ve):
				utils.Error(w, http.StatusBadRequest, ve.Error())
			case errors.Is(err, service.ErrReportNotFound):
				utils.Error(w, http.StatusNotFound, genericNotFound)
			case errors.Is(err, service.ErrNoAdvisory):
				utils.Error(w, http.StatusConflict, "run the compliance check first")
			case errors.Is(err, service.ErrOverrideMismatch):
				utils.Error(w, http.StatusConflict, "value does not match the advisory assessment")
			default:
				utils.Error(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		utils.JSON(w, http.StatusOK, rep)
	}
}
