package server

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type LoginPageData struct {
	Title string
	Error string
}

func (s *Service) handleGetAdminLogin(w http.ResponseWriter, r *http.Request) {
	// Already logged in?
	if cookie, err := r.Cookie(s.config.CookieName); err == nil {
		var username string
		if err := s.cookie.Decode(sessionCookieValueName, cookie.Value, &username); err == nil &&
			username == s.config.AdminUsername {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	s.renderPage(w, "page.admin-login", LoginPageData{
		Title: "Admin Login",
		Error: r.URL.Query().Get("error"),
	})
}

func (s *Service) handlePostAdminLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username != s.config.AdminUsername ||
		bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password)) != nil {
		s.logger.WithField("username", username).Warn("failed admin login attempt")
		http.Redirect(w, r, "/dashboard/login?error=Invalid+credentials", http.StatusSeeOther)
		return
	}

	encoded, err := s.cookie.Encode(sessionCookieValueName, username)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode admin session cookie")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Service) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/dashboard/login", http.StatusSeeOther)
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}
