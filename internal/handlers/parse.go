package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"purchase-tracking/internal/email"
	"purchase-tracking/internal/parser"
)

// maxParseBody caps request bodies; e-commerce emails are far smaller
const maxParseBody = 2 << 20

// ParseRequest is the email-shaped document accepted by the parse API
type ParseRequest struct {
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	BodyText string    `json:"body_text"`
	BodyHTML string    `json:"body_html"`
	Date     time.Time `json:"date"`
}

// ParseResponse wraps the parse result with the image-product pairing
type ParseResponse struct {
	Result       *email.ParseResult `json:"result"`
	ImageMatches []string           `json:"image_matches"`
}

// ParseHandler handles on-demand parse requests
type ParseHandler struct {
	parser *parser.EmailParser
}

// NewParseHandler creates a new parse handler
func NewParseHandler(emailParser *parser.EmailParser) *ParseHandler {
	return &ParseHandler{parser: emailParser}
}

// Parse handles POST /api/parse
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxParseBody))
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Subject == "" && req.BodyText == "" && req.BodyHTML == "" {
		http.Error(w, "At least one of subject, body_text, body_html is required", http.StatusBadRequest)
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	msg := &email.InboundEmail{
		From:     req.From,
		Subject:  req.Subject,
		Date:     req.Date,
		BodyText: req.BodyText,
		BodyHTML: req.BodyHTML,
	}

	result := h.parser.Parse(msg)
	response := ParseResponse{
		Result:       result,
		ImageMatches: h.parser.MatchImagesToProducts(result),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
