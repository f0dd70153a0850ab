package middleware

import (
	"net/http"

	"github.com/mailsense/mailsense/internal/database/models"
	"gorm.io/gorm"
)

// RequireSubscription admits only users whose stored subscription status is
// active. The record is read on every request, so a webhook-driven status
// change takes effect on the very next call.
func RequireSubscription(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())

			var user models.User
			if err := db.WithContext(r.Context()).First(&user, userID).Error; err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasActiveSubscription() {
				http.Error(w, "Active subscription required to access this feature", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
