package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/itsnaaur/OpenLine/internal/accesscode"
	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
	"github.com/itsnaaur/OpenLine/internal/storage"
	"github.com/itsnaaur/OpenLine/internal/utils"
)

// EvidenceHTTP serves evidence files through time-limited signed URLs.
// When no signing key is configured the URLs are plain; availability wins
// over confidentiality in that degraded mode.
type EvidenceHTTP struct {
	reports repository.ReportRepository
	store   storage.BlobStore
	signer  *storage.URLSigner
	baseURL string
	log     zerolog.Logger
}

func NewEvidenceHTTP(reports repository.ReportRepository, store storage.BlobStore, signer *storage.URLSigner, baseURL string, log zerolog.Logger) *EvidenceHTTP {
	return &EvidenceHTTP{reports: reports, store: store, signer: signer, baseURL: baseURL, log: log}
}

type evidenceLink struct {
	FileName    string     `json:"fileName"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	URL         string     `json:"url"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

func (h *EvidenceHTTP) links(evidence []models.Evidence) []evidenceLink {
	now := time.Now()
	out := make([]evidenceLink, 0, len(evidence))
	for _, e := range evidence {
		link := evidenceLink{
			FileName:    e.FileName,
			ContentType: e.ContentType,
			Size:        e.Size,
			URL:         h.baseURL + "/api/evidence/" + e.ObjectKey + h.signer.Sign(e.ObjectKey, now),
		}
		if h.signer.Enabled() {
			exp := now.Add(storage.SignedURLTTL)
			link.ExpiresAt = &exp
		}
		out = append(out, link)
	}
	return out
}

// -----------------------------------------------------------------------------
// GET /api/admin/reports/{id}/evidence
// -----------------------------------------------------------------------------
func (h *EvidenceHTTP) ByReportID() http.HandlerFunc {
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
		utils.JSON(w, http.StatusOK, map[string]any{"items": h.links(rep.Evidence)})
	}
}

// -----------------------------------------------------------------------------
// GET /api/reports/code/{code}/evidence
// -----------------------------------------------------------------------------
func (h *EvidenceHTTP) ByAccessCode() http.HandlerFunc {
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
		utils.JSON(w, http.StatusOK, map[string]any{"items": h.links(rep.Evidence)})
	}
}

// -----------------------------------------------------------------------------
// GET /api/evidence/{key}?exp=...&sig=...
// -----------------------------------------------------------------------------
func (h *EvidenceHTTP) Serve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		q := r.URL.Query()
		if err := h.signer.Verify(key, q.Get("exp"), q.Get("sig"), time.Now()); err != nil {
			utils.Error(w, http.StatusForbidden, "link invalid or expired")
			return
		}

		f, err := h.store.Open(r.Context(), key)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "evidence not found")
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", contentTypeForKey(key))
		w.Header().Set("Cache-Control", "private, no-store")
		if _, err := io.Copy(w, f); err != nil {
			h.log.Warn().Err(err).Str("key", key).Msg("evidence stream interrupted")
		}
	}
}

func contentTypeForKey(key string) string {
	switch {
	case len(key) > 4 && key[len(key)-4:] == ".jpg":
		return "image/jpeg"
	case len(key) > 4 && key[len(key)-4:] == ".png":
		return "image/png"
	case len(key) > 4 && key[len(key)-4:] == ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
