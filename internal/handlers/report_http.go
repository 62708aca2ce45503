package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/itsnaaur/OpenLine/internal/accesscode"
	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
	"github.com/itsnaaur/OpenLine/internal/service"
	"github.com/itsnaaur/OpenLine/internal/utils"
)

// genericNotFound is returned for malformed and unknown access codes
// alike, so a guesser learns nothing from the failure mode.
const genericNotFound = "report not found"

// ReportHTTP wires the anonymous reporter endpoints.
type ReportHTTP struct {
	submit  *service.SubmitService
	reports repository.ReportRepository
}

func NewReportHTTP(submit *service.SubmitService, reports repository.ReportRepository) *ReportHTTP {
	return &ReportHTTP{submit: submit, reports: reports}
}

// -----------------------------------------------------------------------------
// POST /api/reports
// Accepts multipart/form-data (fields + up to 3 "evidence" files) or plain
// JSON when there is no evidence. Returns the access code exactly once.
// -----------------------------------------------------------------------------
func (h *ReportHTTP) Submit() http.HandlerFunc {
	type jsonDTO struct {
		Subject     string `json:"subject"`
		Category    string `json:"category"`
		Urgency     string `json:"urgency"`
		Description string `json:"description"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.SubmitInput

		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid form")
				return
			}
			in.Subject = r.FormValue("subject")
			in.Category = r.FormValue("category")
			in.Urgency = r.FormValue("urgency")
			in.Description = r.FormValue("description")
			for _, fh := range r.MultipartForm.File["evidence"] {
				f, err := fh.Open()
				if err != nil {
					utils.Error(w, http.StatusBadRequest, "unreadable evidence file")
					return
				}
				defer f.Close()
				in.Files = append(in.Files, service.EvidenceFile{
					Name:        fh.Filename,
					ContentType: fh.Header.Get("Content-Type"),
					Size:        fh.Size,
					Content:     f,
				})
			}
		} else {
			var dto jsonDTO
			if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid json")
				return
			}
			in = service.SubmitInput{
				Subject:     dto.Subject,
				Category:    dto.Category,
				Urgency:     dto.Urgency,
				Description: dto.Description,
			}
		}

		rep, err := h.submit.Submit(r.Context(), in)
		if err != nil {
			var ve *service.ValidationError
			switch {
			case errors.As(err, &ve):
				utils.Error(w, http.StatusBadRequest, ve.Error())
			case errors.Is(err, service.ErrUploadFailed):
				utils.Error(w, http.StatusBadGateway, "evidence upload failed, please try again")
			default:
				utils.Error(w, http.StatusInternalServerError, "could not submit report, please try again")
			}
			return
		}

		// The access code is the reporter's only credential; this is the
		// one and only place it is surfaced.
		utils.JSON(w, http.StatusCreated, map[string]string{
			"accessCode": rep.AccessCode,
		})
	}
}

// -----------------------------------------------------------------------------
// GET /api/reports/code/{code}
// -----------------------------------------------------------------------------
func (h *ReportHTTP) Lookup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := accesscode.Normalize(chi.URLParam(r, "code"))
		if !accesscode.Valid(code) {
			utils.Error(w, http.StatusNotFound, genericNotFound)
			return
		}
		rep, err := h.reports.GetByAccessCode(r.Context(), code)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lookup failed, please try again")
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
// POST /api/reports/code/{code}/messages
// -----------------------------------------------------------------------------
func (h *ReportHTTP) AddMessage() http.HandlerFunc {
	type inDTO struct {
		Text string `json:"text"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := accesscode.Normalize(chi.URLParam(r, "code"))
		if !accesscode.Valid(code) {
			utils.Error(w, http.StatusNotFound, genericNotFound)
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

		rep, err := h.reports.GetByAccessCode(r.Context(), code)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "lookup failed, please try again")
			return
		}
		if rep == nil {
			utils.Error(w, http.StatusNotFound, genericNotFound)
			return
		}

		msg, err := h.reports.AppendMessage(r.Context(), rep.ID, models.SenderReporter, in.Text)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "could not send message, please try again")
			return
		}
		utils.JSON(w, http.StatusCreated, msg)
	}
}
