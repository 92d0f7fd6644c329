package handler

import (
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

type MailHandler struct {
	mail   service.MailServiceInterface
	logger *slog.Logger
}

func NewMailHandler(mail service.MailServiceInterface, logger *slog.Logger) *MailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailHandler{mail: mail, logger: logger}
}

// Send accepts the contact form. Field checks live in the service so the
// missing-field message lists every absent field at once.
func (h *MailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.mail.SendContact(r.Context(), in); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.Message(w, r, http.StatusCreated, "Mail sent")
}
