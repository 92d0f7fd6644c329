package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sandeepkv93/estate-admin-backend/internal/http/middleware"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// decodeJSON reads a JSON body into dst and runs struct validation. It writes
// the error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			response.Error(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
		case errors.Is(err, io.EOF):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "Request body is required", nil)
		default:
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload", nil)
		}
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]fieldError, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
			response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request fields", details)
			return false
		}
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request", nil)
		return false
	}
	return true
}

// pageRequest reads ?page= and ?take=. Invalid or missing values fall back to
// the repository defaults.
func pageRequest(r *http.Request) repository.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	take, _ := strconv.Atoi(q.Get("take"))
	return repository.PageRequest{Page: page, PageSize: take}
}

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

func currentIdentity(r *http.Request) (security.Identity, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims == nil {
		return security.Identity{}, false
	}
	return claims.Identity(), true
}
