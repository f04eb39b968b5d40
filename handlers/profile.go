package handlers

import (
	"net/http"

	"p9e.in/sitecore/middleware"
)

// GetProfile echoes the caller's token claims.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	actor := middleware.GetActor(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"userId":  claims.UserID,
		"name":    claims.Name,
		"phone":   claims.Phone,
		"role":    claims.Role,
		"isAdmin": actor.IsAdmin(),
	})
}
