package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/sakif/quote-studio/internal/apperror"
	"github.com/sakif/quote-studio/internal/model"
	"github.com/sakif/quote-studio/internal/state"
)

// QuoteView is a quote enriched for rendering: the author id is resolved
// to a full profile (placeholder when the account is gone) and the
// caller's like state is attached.
type QuoteView struct {
	model.QuoteContent
	Author model.User `json:"author"`
	Liked  bool       `json:"liked"`
}

// CommentView is a comment with its author resolved the same way.
type CommentView struct {
	model.Comment
	Author model.User `json:"author"`
}

// QuoteHandler serves the gallery: listing, creating, liking, commenting,
// deleting, and the toast queue.
type QuoteHandler struct {
	quotes *state.QuotesState
	auth   *state.AuthState
	logger *slog.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes *state.QuotesState, auth *state.AuthState, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, auth: auth, logger: logger}
}

func (h *QuoteHandler) view(q model.QuoteContent) QuoteView {
	return QuoteView{
		QuoteContent: q,
		Author:       h.auth.Resolve(q.AuthorID),
		Liked:        h.quotes.IsLiked(q.ID),
	}
}

// HandleList returns the gallery, newest first by default.
//
// HTTP: GET /api/quotes?category=Humor&q=coffee&sort=most_liked
//
// QUERY PARAMETERS (all optional):
//   - category: exact match against the fixed category set
//   - q:        case-insensitive substring match on the quote text
//   - sort:     "newest" (default) or "most_liked"
func (h *QuoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	sortBy := r.URL.Query().Get("sort")

	if sortBy != "" && sortBy != "newest" && sortBy != "most_liked" {
		writeError(w, apperror.ValidationFailed("sort", "sort must be \"newest\" or \"most_liked\""))
		return
	}

	views := []QuoteView{}
	for _, q := range h.quotes.Quotes() {
		if category != "" && q.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(q.QuoteText), query) {
			continue
		}
		views = append(views, h.view(q))
	}

	if sortBy == "most_liked" {
		// Stable keeps the newest-first order within equal like counts.
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Likes > views[j].Likes
		})
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleGet returns a single quote with author and like state.
//
// HTTP: GET /api/quotes/{id}
func (h *QuoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	quote, ok := h.quotes.Quote(id)
	if !ok {
		writeError(w, apperror.NotFound("quote", id))
		return
	}

	writeJSON(w, http.StatusOK, h.view(quote))
}

// HandleCreate publishes a new quote card authored by the current user.
//
// HTTP: POST /api/quotes
// REQUEST BODY: {"quoteText": "...", "imageUrl": "data:...", "audioUrl": "", "category": "Humor"}
func (h *QuoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		QuoteText string `json:"quoteText"`
		ImageURL  string `json:"imageUrl"`
		AudioURL  string `json:"audioUrl"`
		Category  string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, ok := h.auth.CurrentUser()
	if !ok {
		writeError(w, apperror.Unauthorized("log in to publish a quote"))
		return
	}
	if strings.TrimSpace(body.QuoteText) == "" {
		writeError(w, apperror.ValidationFailed("quoteText", "quote text is required"))
		return
	}
	if body.ImageURL == "" {
		writeError(w, apperror.ValidationFailed("imageUrl", "an image is required"))
		return
	}
	if !model.ValidCategory(body.Category) {
		writeError(w, apperror.ValidationFailed("category", "unknown category"))
		return
	}

	quote := h.quotes.AddQuote(r.Context(), state.QuoteInput{
		QuoteText: body.QuoteText,
		ImageURL:  body.ImageURL,
		AudioURL:  body.AudioURL,
		Category:  body.Category,
		AuthorID:  user.ID,
	})
	if quote == nil {
		writeError(w, apperror.ValidationFailed("quoteText", "quote text is required"))
		return
	}

	writeJSON(w, http.StatusCreated, h.view(*quote))
}

// HandleDelete removes a quote and everything hanging off it. Only the
// quote's author may delete it.
//
// HTTP: DELETE /api/quotes/{id}
func (h *QuoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	quote, ok := h.quotes.Quote(id)
	if !ok {
		writeError(w, apperror.NotFound("quote", id))
		return
	}

	user, ok := h.auth.CurrentUser()
	if !ok {
		writeError(w, apperror.Unauthorized("log in to delete a quote"))
		return
	}
	if quote.AuthorID != user.ID {
		writeError(w, apperror.Forbidden("only the author can delete a quote"))
		return
	}

	h.quotes.DeleteQuote(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleLike flips the caller's like on a quote and returns the
// updated card, so the client can render the new count without a refetch.
//
// HTTP: POST /api/quotes/{id}/like
func (h *QuoteHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, ok := h.quotes.Quote(id); !ok {
		writeError(w, apperror.NotFound("quote", id))
		return
	}

	h.quotes.ToggleLike(r.Context(), id)

	quote, _ := h.quotes.Quote(id)
	writeJSON(w, http.StatusOK, h.view(quote))
}

// HandleListComments returns a quote's comment thread, oldest first.
//
// HTTP: GET /api/quotes/{id}/comments
func (h *QuoteHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, ok := h.quotes.Quote(id); !ok {
		writeError(w, apperror.NotFound("quote", id))
		return
	}

	views := []CommentView{}
	for _, c := range h.quotes.Comments(id) {
		views = append(views, CommentView{Comment: c, Author: h.auth.Resolve(c.AuthorID)})
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleAddComment appends a comment to a quote's thread.
//
// HTTP: POST /api/quotes/{id}/comments
// REQUEST BODY: {"text": "love this one"}
func (h *QuoteHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, ok := h.auth.CurrentUser()
	if !ok {
		writeError(w, apperror.Unauthorized("log in to comment"))
		return
	}

	if _, found := h.quotes.Quote(id); !found {
		writeError(w, apperror.NotFound("quote", id))
		return
	}

	comment := h.quotes.AddComment(r.Context(), id, body.Text, user.ID)
	if comment == nil {
		writeError(w, apperror.ValidationFailed("text", "comment text is required"))
		return
	}

	writeJSON(w, http.StatusCreated, CommentView{Comment: *comment, Author: user})
}

// HandleListToasts returns the live notification queue.
//
// HTTP: GET /api/toasts
func (h *QuoteHandler) HandleListToasts(w http.ResponseWriter, r *http.Request) {
	toasts := h.quotes.Toasts()
	if toasts == nil {
		toasts = []model.Toast{}
	}
	writeJSON(w, http.StatusOK, toasts)
}

// HandleRemoveToast dismisses a toast before its timer fires. Dismissing
// an already-expired toast is not an error.
//
// HTTP: DELETE /api/toasts/{id}
func (h *QuoteHandler) HandleRemoveToast(w http.ResponseWriter, r *http.Request) {
	h.quotes.RemoveToast(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
