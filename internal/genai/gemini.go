package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/quote-studio/internal/apperror"
)

// Model names for each content type. These track the hosted Gemini API;
// text and styled images go through generateContent, plain images through
// the Imagen predict endpoint.
const (
	textModel       = "gemini-2.5-flash"
	imageModel      = "imagen-4.0-generate-001"
	styledImgModel  = "gemini-2.5-flash-image"
	audioModel      = "gemini-2.5-flash-preview-tts"
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

const textPrompt = "Generate a short, inspirational, and unique quote. It should be less than 20 words."

// Compile-time check that *GeminiClient satisfies Generator.
var _ Generator = (*GeminiClient)(nil)

// GeminiClient talks to the Gemini REST API over plain HTTP+JSON.
// The API key is passed as a query parameter on every request, which is
// how the hosted API authenticates browser-style clients.
type GeminiClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewGeminiClient creates a client for the hosted Gemini API.
// The key is required — with no key there is nothing to call, and the
// server degrades to manual uploads only.
func NewGeminiClient(apiKey string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("genai: API key is required")
	}
	return &GeminiClient{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}, nil
}

// Request/response shapes for the generateContent endpoint. Only the
// fields we read are declared — encoding/json ignores the rest.

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents []content       `json:"contents"`
	Config   *generateConfig `json:"generationConfig,omitempty"`
}

type generateConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateQuoteText asks the text model for a short quote and strips any
// quotation marks the model wrapped it in.
func (c *GeminiClient) GenerateQuoteText(ctx context.Context) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []contentPart{{Text: textPrompt}}}},
	}

	var res generateResponse
	if err := c.post(ctx, textModel, "generateContent", req, &res); err != nil {
		c.logger.Warn("quote text generation failed", slog.String("error", err.Error()))
		return "", apperror.Unavailable("Failed to generate quote text from AI.", err)
	}

	text := firstText(res)
	if text == "" {
		return "", apperror.Unavailable("Failed to generate quote text from AI.", errors.New("empty response"))
	}
	return strings.ReplaceAll(strings.TrimSpace(text), `"`, ""), nil
}

// GenerateQuoteImage produces an image for the quote as a data URI.
//
// Two paths, matching the two capabilities of the backend:
//   - no style reference → the Imagen predict endpoint, which renders the
//     quote text elegantly into the image;
//   - style reference → the image-capable flash model, fed the reference
//     image inline plus a transfer prompt, with no text in the output.
func (c *GeminiClient) GenerateQuoteImage(ctx context.Context, quote, theme string, style *StyleImage) (string, error) {
	if style != nil {
		return c.generateStyledImage(ctx, quote, theme, style)
	}

	prompt := fmt.Sprintf(
		"Create a visually stunning, high-resolution, artistic image representing the quote: %q. "+
			"The style should be %s. The text of the quote should be elegantly integrated into the image. "+
			"4k, photorealistic, cinematic lighting.",
		quote, theme,
	)

	req := map[string]any{
		"instances": []map[string]any{{"prompt": prompt}},
		"parameters": map[string]any{
			"sampleCount":    1,
			"outputMimeType": "image/jpeg",
			"aspectRatio":    "1:1",
		},
	}

	var res struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
		} `json:"predictions"`
	}
	if err := c.post(ctx, imageModel, "predict", req, &res); err != nil {
		c.logger.Warn("quote image generation failed", slog.String("error", err.Error()))
		return "", apperror.Unavailable("Failed to generate quote image.", err)
	}
	if len(res.Predictions) == 0 || res.Predictions[0].BytesBase64Encoded == "" {
		return "", apperror.Unavailable("Failed to generate quote image.", errors.New("no image was generated"))
	}

	return "data:image/jpeg;base64," + res.Predictions[0].BytesBase64Encoded, nil
}

func (c *GeminiClient) generateStyledImage(ctx context.Context, quote, theme string, style *StyleImage) (string, error) {
	prompt := fmt.Sprintf(
		"Apply the artistic style of the provided image to a new image that represents the quote: %q. "+
			"The new image should be visually stunning and high-resolution. Theme: %s. "+
			"Do not include any text in the generated image.",
		quote, theme,
	)

	req := generateRequest{
		Contents: []content{{Parts: []contentPart{
			{InlineData: &inlineData{MimeType: style.MimeType, Data: style.Base64}},
			{Text: prompt},
		}}},
		Config: &generateConfig{ResponseModalities: []string{"IMAGE"}},
	}

	var res generateResponse
	if err := c.post(ctx, styledImgModel, "generateContent", req, &res); err != nil {
		c.logger.Warn("styled image generation failed", slog.String("error", err.Error()))
		return "", apperror.Unavailable("Failed to generate quote image.", err)
	}

	if data := firstInlineData(res); data != nil {
		return fmt.Sprintf("data:%s;base64,%s", data.MimeType, data.Data), nil
	}
	return "", apperror.Unavailable("Failed to generate quote image.", errors.New("no styled image was generated"))
}

// GenerateQuoteAudio asks the TTS model for a spoken reading of the quote.
func (c *GeminiClient) GenerateQuoteAudio(ctx context.Context, quote string) (string, error) {
	cfg := &generateConfig{ResponseModalities: []string{"AUDIO"}, SpeechConfig: &speechConfig{}}
	cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = "Kore"

	req := generateRequest{
		Contents: []content{{Parts: []contentPart{
			{Text: "Read this quote with an inspiring and clear voice: " + quote},
		}}},
		Config: cfg,
	}

	var res generateResponse
	if err := c.post(ctx, audioModel, "generateContent", req, &res); err != nil {
		c.logger.Warn("quote audio generation failed", slog.String("error", err.Error()))
		return "", apperror.Unavailable("Failed to generate quote audio.", err)
	}

	data := firstInlineData(res)
	if data == nil {
		return "", apperror.Unavailable("Failed to generate quote audio.", errors.New("no audio data returned from API"))
	}
	mimeType := data.MimeType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, data.Data), nil
}

// post sends a JSON request to {endpoint}/models/{model}:{method} and
// decodes the JSON response into out. Non-2xx statuses become errors that
// include the response body, which is where the API puts quota and auth
// diagnostics.
func (c *GeminiClient) post(ctx context.Context, model, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("genai: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:%s?key=%s", c.endpoint, model, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("genai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("genai: calling %s: %w", model, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// Read a bounded slice of the body for the error message.
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("genai: %s returned %d: %s", model, res.StatusCode, detail)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("genai: decoding %s response: %w", model, err)
	}
	return nil
}

// firstText returns the first text part of the first candidate.
func firstText(res generateResponse) string {
	for _, cand := range res.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// firstInlineData returns the first inline payload of the first candidate.
func firstInlineData(res generateResponse) *inlineData {
	for _, cand := range res.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData
			}
		}
	}
	return nil
}
