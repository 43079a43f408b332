package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/sakif/quote-studio/internal/model"
	"github.com/sakif/quote-studio/internal/storage"
)

// toastLifetime is how long a toast stays up before auto-dismissing.
const toastLifetime = 5 * time.Second

// QuoteInput is the caller-supplied part of a new quote. The container
// fills in the id, zero likes, and the creation timestamp.
type QuoteInput struct {
	QuoteText string `json:"quoteText"`
	ImageURL  string `json:"imageUrl"`
	AudioURL  string `json:"audioUrl,omitempty"`
	Category  string `json:"category"`
	AuthorID  string `json:"authorId"`
}

// QuotesState owns the quote collection, the current like-set, per-quote
// comment threads, and the transient toast queue.
//
// PERSISTED SLICES: "quotes", "likedQuotes", and "comments". Toasts are
// process-local and never persisted.
//
// LIKE-SET SCOPE:
// likedQuotes is one set for the whole store, not per user — switching
// accounts in the same browser profile preserves the previous user's
// likes. That scoping is deliberate (it mirrors how the original persisted
// the set) and is kept as-is rather than silently widened.
type QuotesState struct {
	mu       sync.Mutex
	quotes   []model.QuoteContent // newest first
	liked    map[string]struct{}
	comments map[string][]model.Comment
	toasts   []model.Toast

	store    storage.Store
	logger   *slog.Logger
	subs     subscribers
	toastTTL time.Duration
}

// NewQuotesState constructs the container and hydrates it from the store.
// Each slice hydrates independently; a malformed document falls back to
// that slice's empty default without disturbing the others.
func NewQuotesState(store storage.Store, logger *slog.Logger) *QuotesState {
	q := &QuotesState{
		liked:    make(map[string]struct{}),
		comments: make(map[string][]model.Comment),
		store:    store,
		logger:   logger,
		toastTTL: toastLifetime,
	}

	ctx := context.Background()

	if raw, ok := q.load(ctx, storage.KeyQuotes); ok {
		var quotes []model.QuoteContent
		if err := json.Unmarshal(raw, &quotes); err != nil {
			logger.Warn("malformed quotes document, starting empty",
				slog.String("error", err.Error()),
			)
		} else {
			q.quotes = quotes
		}
	}

	if raw, ok := q.load(ctx, storage.KeyLikedQuotes); ok {
		// The like-set persists as a JSON array with set semantics.
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			logger.Warn("malformed likedQuotes document, starting empty",
				slog.String("error", err.Error()),
			)
		} else {
			for _, id := range ids {
				q.liked[id] = struct{}{}
			}
		}
	}

	if raw, ok := q.load(ctx, storage.KeyComments); ok {
		var comments map[string][]model.Comment
		if err := json.Unmarshal(raw, &comments); err != nil {
			logger.Warn("malformed comments document, starting empty",
				slog.String("error", err.Error()),
			)
		} else if comments == nil {
			// JSON `null` unmarshals into a nil map without error; keep the
			// empty map so AddComment stays total.
			logger.Warn("null comments document, starting empty")
		} else {
			q.comments = comments
		}
	}

	return q
}

// Subscribe registers a change callback, invoked after every completed
// mutation (including toast arrivals and expiries). The returned func
// unregisters it.
func (q *QuotesState) Subscribe(fn func()) func() {
	return q.subs.add(fn)
}

// AddQuote constructs a quote from input, prepends it to the collection
// (newest first), persists the collection, and emits a toast. Returns the
// stored quote, or nil for a blank quote text (silent no-op).
//
// The id comes from xid — time-sortable and collision-free, so two
// concurrent AddQuote calls can never collide the way timestamp+random
// ids probabilistically could.
func (q *QuotesState) AddQuote(ctx context.Context, input QuoteInput) *model.QuoteContent {
	if strings.TrimSpace(input.QuoteText) == "" {
		return nil
	}

	quote := model.QuoteContent{
		ID:        xid.New().String(),
		QuoteText: input.QuoteText,
		ImageURL:  input.ImageURL,
		AudioURL:  input.AudioURL,
		Category:  input.Category,
		Likes:     0,
		AuthorID:  input.AuthorID,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.quotes = append([]model.QuoteContent{quote}, q.quotes...)
	q.persistQuotesLocked(ctx)
	q.addToastLocked("New quote created!")
	q.mu.Unlock()

	q.logger.Info("quote created",
		slog.String("id", quote.ID),
		slog.String("category", quote.Category),
		slog.String("author", quote.AuthorID),
	)
	q.subs.notify()
	return &quote
}

// ToggleLike flips the quote's membership in the like-set and, atomically
// with the flip, adjusts its like counter by ±1. Unknown quote ids are a
// silent no-op. Both the collection and the like-set are re-persisted.
//
// Because the counter only moves together with set membership, likes can
// never go negative: an unlike is only possible when the previous toggle
// put the id in the set and the counter up by one.
func (q *QuotesState) ToggleLike(ctx context.Context, quoteID string) {
	q.mu.Lock()
	idx := q.indexLocked(quoteID)
	if idx < 0 {
		q.mu.Unlock()
		return
	}

	if _, isLiked := q.liked[quoteID]; isLiked {
		delete(q.liked, quoteID)
		q.quotes[idx].Likes--
	} else {
		q.liked[quoteID] = struct{}{}
		q.quotes[idx].Likes++
	}
	q.persistQuotesLocked(ctx)
	q.persistLikedLocked(ctx)
	q.mu.Unlock()

	q.subs.notify()
}

// AddComment appends a comment to the quote's thread (creating the thread
// if absent), persists the comments map, and emits a toast. Blank text or
// an unknown quote id is a silent no-op returning nil. Threads are
// append-only and chronological.
func (q *QuotesState) AddComment(ctx context.Context, quoteID, text, authorID string) *model.Comment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	q.mu.Lock()
	if q.indexLocked(quoteID) < 0 {
		q.mu.Unlock()
		return nil
	}

	comment := model.Comment{
		ID:        xid.New().String(),
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	q.comments[quoteID] = append(q.comments[quoteID], comment)
	q.persistCommentsLocked(ctx)
	q.addToastLocked("Comment posted!")
	q.mu.Unlock()

	q.subs.notify()
	return &comment
}

// DeleteQuote removes the quote and cascades: its id leaves the like-set
// and its comment thread is dropped. All three slices are re-persisted and
// a toast is emitted. Deleting an unknown id is a silent no-op — nothing
// is persisted and no toast fires.
func (q *QuotesState) DeleteQuote(ctx context.Context, quoteID string) {
	q.mu.Lock()
	idx := q.indexLocked(quoteID)
	if idx < 0 {
		q.mu.Unlock()
		return
	}

	q.quotes = append(q.quotes[:idx], q.quotes[idx+1:]...)
	delete(q.liked, quoteID)
	delete(q.comments, quoteID)
	q.persistQuotesLocked(ctx)
	q.persistLikedLocked(ctx)
	q.persistCommentsLocked(ctx)
	q.addToastLocked("Quote deleted successfully.")
	q.mu.Unlock()

	q.logger.Info("quote deleted", slog.String("id", quoteID))
	q.subs.notify()
}

// DeleteQuotesByAuthor removes every quote authored by authorID, together
// with their like-set entries and comment threads.
//
// The set of affected quote ids is computed ONCE, before any removal, so
// all three slices are updated from the same snapshot — a quote can never
// disappear from the collection but linger in the like-set or comments.
//
// No toast: the account-deletion flow that calls this owns the messaging.
func (q *QuotesState) DeleteQuotesByAuthor(ctx context.Context, authorID string) {
	q.mu.Lock()
	doomed := make(map[string]struct{})
	for _, quote := range q.quotes {
		if quote.AuthorID == authorID {
			doomed[quote.ID] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		q.mu.Unlock()
		return
	}

	kept := q.quotes[:0]
	for _, quote := range q.quotes {
		if _, dead := doomed[quote.ID]; !dead {
			kept = append(kept, quote)
		}
	}
	q.quotes = kept
	for id := range doomed {
		delete(q.liked, id)
		delete(q.comments, id)
	}
	q.persistQuotesLocked(ctx)
	q.persistLikedLocked(ctx)
	q.persistCommentsLocked(ctx)
	q.mu.Unlock()

	q.logger.Info("quotes deleted by author",
		slog.String("author", authorID),
		slog.Int("count", len(doomed)),
	)
	q.subs.notify()
}

// RemoveToast dismisses the toast with the given id. Unknown ids are a
// no-op — the auto-expiry timer and an explicit close can race, and
// whichever runs second must do nothing.
func (q *QuotesState) RemoveToast(id string) {
	q.mu.Lock()
	removed := false
	for i, toast := range q.toasts {
		if toast.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			removed = true
			break
		}
	}
	q.mu.Unlock()

	if removed {
		q.subs.notify()
	}
}

// Quotes returns a copy of the collection, newest first.
func (q *QuotesState) Quotes() []model.QuoteContent {
	q.mu.Lock()
	defer q.mu.Unlock()
	quotes := make([]model.QuoteContent, len(q.quotes))
	copy(quotes, q.quotes)
	return quotes
}

// Quote returns a single quote by id.
func (q *QuotesState) Quote(quoteID string) (model.QuoteContent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if idx := q.indexLocked(quoteID); idx >= 0 {
		return q.quotes[idx], true
	}
	return model.QuoteContent{}, false
}

// Liked returns a copy of the like-set.
func (q *QuotesState) Liked() map[string]struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	liked := make(map[string]struct{}, len(q.liked))
	for id := range q.liked {
		liked[id] = struct{}{}
	}
	return liked
}

// IsLiked reports whether the quote is in the like-set.
func (q *QuotesState) IsLiked(quoteID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.liked[quoteID]
	return ok
}

// Comments returns a copy of the quote's comment thread, oldest first.
func (q *QuotesState) Comments(quoteID string) []model.Comment {
	q.mu.Lock()
	defer q.mu.Unlock()
	thread := make([]model.Comment, len(q.comments[quoteID]))
	copy(thread, q.comments[quoteID])
	return thread
}

// Toasts returns a copy of the active toast queue, oldest first.
func (q *QuotesState) Toasts() []model.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	toasts := make([]model.Toast, len(q.toasts))
	copy(toasts, q.toasts)
	return toasts
}

// indexLocked returns the quote's position, or -1. Callers hold q.mu.
func (q *QuotesState) indexLocked(quoteID string) int {
	for i, quote := range q.quotes {
		if quote.ID == quoteID {
			return i
		}
	}
	return -1
}

// addToastLocked enqueues a toast and arms its expiry timer. Callers hold
// q.mu. The timer captures the toast id, and RemoveToast checks identity,
// so an expiry firing after an explicit close is harmless.
func (q *QuotesState) addToastLocked(message string) {
	toast := model.Toast{
		ID:      uuid.NewString(),
		Message: message,
	}
	q.toasts = append(q.toasts, toast)
	time.AfterFunc(q.toastTTL, func() {
		q.RemoveToast(toast.ID)
	})
}

func (q *QuotesState) load(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := q.store.Get(ctx, key)
	if err != nil {
		q.logger.Error("failed to read persisted state",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return raw, ok
}

func (q *QuotesState) persistQuotesLocked(ctx context.Context) {
	q.persistLocked(ctx, storage.KeyQuotes, q.quotes)
}

func (q *QuotesState) persistLikedLocked(ctx context.Context) {
	ids := make([]string, 0, len(q.liked))
	for id := range q.liked {
		ids = append(ids, id)
	}
	q.persistLocked(ctx, storage.KeyLikedQuotes, ids)
}

func (q *QuotesState) persistCommentsLocked(ctx context.Context) {
	q.persistLocked(ctx, storage.KeyComments, q.comments)
}

// persistLocked marshals v and writes it under key. Failures are logged
// and swallowed — in-memory state stays authoritative for the session.
func (q *QuotesState) persistLocked(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		q.logger.Error("failed to marshal state", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := q.store.Set(ctx, key, raw); err != nil {
		q.logger.Error("failed to persist state", slog.String("key", key), slog.String("error", err.Error()))
	}
}
