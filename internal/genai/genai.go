// Package genai wraps the generative-AI backend that produces quote text,
// images, and audio.
//
// The rest of the app depends only on the Generator interface; the Gemini
// REST implementation lives in gemini.go and a mock takes its place in
// tests. Any call may fail (network, quota, auth) — failures surface as
// apperror.Unavailable, and the RETRY POLICY BELONGS TO THE CALLER:
// the manual upload flow surfaces the error with no retry, while the
// autonomous Studio loop (studio.go) waits a fixed delay and retries the
// same step until its context is cancelled.
package genai

import "context"

// StyleImage is an optional style reference passed to image generation,
// already split into raw base64 payload and mime type.
type StyleImage struct {
	Base64   string
	MimeType string
}

// Generator produces quote content from a third-party AI service.
type Generator interface {
	// GenerateQuoteText returns a short original quote (under 20 words),
	// stripped of surrounding quotation marks.
	GenerateQuoteText(ctx context.Context) (string, error)

	// GenerateQuoteImage returns a displayable image for the quote as a
	// data URI. theme steers the visual style; style, when non-nil, is a
	// reference image whose look is applied to the result.
	GenerateQuoteImage(ctx context.Context, quote, theme string, style *StyleImage) (string, error)

	// GenerateQuoteAudio returns a spoken reading of the quote as a data
	// URI. Not wired into the primary flow.
	GenerateQuoteAudio(ctx context.Context, quote string) (string, error)
}
