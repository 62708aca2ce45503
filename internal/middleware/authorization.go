package middleware

import (
	"net/http"

	"github.com/itsnaaur/OpenLine/internal/utils"
)

// RequireAdmin is the single authorization gate for privileged routes.
// The admin claim must be present and true; anything else is rejected
// before the handler runs.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetString(r.Context(), CtxUserID)
		if !ok || uid == "" {
			utils.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !utils.GetBool(r.Context(), CtxAdmin) {
			utils.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
