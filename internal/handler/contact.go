package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/v2lunch/api/internal/mail"
)

// ContactHandler forwards contact-form submissions to the service
// inbox.
type ContactHandler struct {
	mailer mail.Sender
	inbox  string
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(mailer mail.Sender, inbox string) *ContactHandler {
	return &ContactHandler{mailer: mailer, inbox: inbox}
}

// RegisterRoutes registers the contact endpoint.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.Submit)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit validates the form and mails a copy to the inbox.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, email and message are required"})
		return
	}
	if req.Subject == "" {
		req.Subject = "Contact form"
	}

	if err := h.mailer.Send(h.inbox, "Contact: "+req.Subject, mail.ContactCopyBody(req.Name, req.Email, req.Subject, req.Message)); err != nil {
		log.Printf("ERROR: send contact mail: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not send your message"})
		return
	}

	writeRedirect(w, http.StatusOK, "Thanks, we received your message", "success", "/")
}
