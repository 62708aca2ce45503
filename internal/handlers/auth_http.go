package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/itsnaaur/OpenLine/internal/middleware"
	"github.com/itsnaaur/OpenLine/internal/repository"
	"github.com/itsnaaur/OpenLine/internal/service"
	"github.com/itsnaaur/OpenLine/internal/utils"
)

type AuthHTTP struct {
	svc    *service.AuthService
	admins repository.AdminRepository
}

func NewAuthHTTP(s *service.AuthService, admins repository.AdminRepository) *AuthHTTP {
	return &AuthHTTP{svc: s, admins: admins}
}

func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		token, u, err := h.svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				utils.Error(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			// backend trouble is not the caller's fault; don't dress it
			// up as a bad password
			utils.Error(w, http.StatusInternalServerError, "login failed, please try again")
			return
		}

		// Issue httpOnly session cookie; the token also works as a bearer.
		http.SetCookie(w, &http.Cookie{
			Name:     "session",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			// Set true behind HTTPS in prod
			Secure:  false,
			Expires: time.Now().Add(24 * time.Hour),
		})

		utils.JSON(w, http.StatusOK, map[string]any{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
			"admin": true,
			"token": token,
		})
	}
}

func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     "session",
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetString(r.Context(), middleware.CtxUserID)
		if !ok || uid == "" {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		u, err := h.admins.GetByID(r.Context(), uid)
		if err != nil || u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}

		utils.JSON(w, http.StatusOK, map[string]any{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"admin":     utils.GetBool(r.Context(), middleware.CtxAdmin),
			"createdAt": u.CreatedAt,
			"updatedAt": u.UpdatedAt,
		})
	}
}
