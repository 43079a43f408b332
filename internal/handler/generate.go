package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/quote-studio/internal/apperror"
	"github.com/sakif/quote-studio/internal/genai"
)

// GenerateHandler fronts the generative backend. All three endpoints are
// synchronous: the handler blocks on the model call and returns the
// finished artifact as a data URI. A nil Generator (no API key configured)
// turns every endpoint into a 502.
type GenerateHandler struct {
	gen    genai.Generator
	logger *slog.Logger
}

// NewGenerateHandler creates a new GenerateHandler. gen may be nil when
// generation is not configured.
func NewGenerateHandler(gen genai.Generator, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{gen: gen, logger: logger}
}

func (h *GenerateHandler) ready(w http.ResponseWriter) bool {
	if h.gen == nil {
		writeError(w, apperror.Unavailable("quote generation is not configured", nil))
		return false
	}
	return true
}

// HandleText asks the model for a single short original quote.
//
// HTTP: POST /api/generate/text
// RESPONSE BODY: {"quoteText": "..."}
func (h *GenerateHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	text, err := h.gen.GenerateQuoteText(r.Context())
	if err != nil {
		h.logger.Error("text generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"quoteText": text})
}

// HandleImage renders artwork for a quote. When a style image is attached
// the output imitates its visual style; otherwise the theme alone drives
// the composition.
//
// HTTP: POST /api/generate/image
// REQUEST BODY: {"quoteText": "...", "theme": "sunrise", "styleImage": {"base64": "...", "mimeType": "image/png"}}
// (theme and styleImage optional)
func (h *GenerateHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var body struct {
		QuoteText  string `json:"quoteText"`
		Theme      string `json:"theme"`
		StyleImage *struct {
			Base64   string `json:"base64"`
			MimeType string `json:"mimeType"`
		} `json:"styleImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if strings.TrimSpace(body.QuoteText) == "" {
		writeError(w, apperror.ValidationFailed("quoteText", "quote text is required"))
		return
	}

	var style *genai.StyleImage
	if body.StyleImage != nil {
		if body.StyleImage.Base64 == "" || body.StyleImage.MimeType == "" {
			writeError(w, apperror.ValidationFailed("styleImage", "style image needs base64 data and a mime type"))
			return
		}
		style = &genai.StyleImage{Base64: body.StyleImage.Base64, MimeType: body.StyleImage.MimeType}
	}

	imageURL, err := h.gen.GenerateQuoteImage(r.Context(), body.QuoteText, body.Theme, style)
	if err != nil {
		h.logger.Error("image generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}

// HandleAudio narrates a quote and returns the clip as a data URI.
//
// HTTP: POST /api/generate/audio
// REQUEST BODY: {"quoteText": "..."}
func (h *GenerateHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var body struct {
		QuoteText string `json:"quoteText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if strings.TrimSpace(body.QuoteText) == "" {
		writeError(w, apperror.ValidationFailed("quoteText", "quote text is required"))
		return
	}

	audioURL, err := h.gen.GenerateQuoteAudio(r.Context(), body.QuoteText)
	if err != nil {
		h.logger.Error("audio generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"audioUrl": audioURL})
}
