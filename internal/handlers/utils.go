// internal/handlers/utils.go
package handlers

import "net/http"

// authCookie carries the session token in browsers; other clients pass ?token=.
const authCookie = "auth_token"

// requestToken returns the session token of r, preferring the auth cookie over the
// token query parameter. It returns "" when neither is present.
func requestToken(r *http.Request) string {
	if c, err := r.Cookie(authCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}
