package security

import (
	"net/http"
	"time"
)

const RefreshTokenCookie = "refreshToken"

type CookieOptions struct {
	Secure   bool
	Domain   string
	SameSite string
	MaxAge   time.Duration
}

func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func SetRefreshCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   int(opts.MaxAge.Seconds()),
		Expires:  time.Now().Add(opts.MaxAge),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: sameSite(opts.SameSite),
	})
}

func ClearRefreshCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: sameSite(opts.SameSite),
	})
}

func sameSite(v string) http.SameSite {
	switch v {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
