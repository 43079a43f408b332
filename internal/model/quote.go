package model

import "time"

// Categories is the fixed set a quote may belong to. The order matters:
// the admin dashboard reports per-category counts in exactly this order.
var Categories = []string{"Motivation", "Life", "Humor", "Success", "Philosophy", "Art"}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// QuoteContent is an image+quote card in the gallery.
//
// AuthorID is a weak reference: it may point at a user that has since been
// deleted. Resolve it through state.AuthState.Resolve, which substitutes
// the UnknownUser placeholder on a miss.
//
// Likes only ever moves through ToggleLike, by exactly ±1 per toggle, and
// never goes negative. Everything else on the struct is immutable after
// creation.
type QuoteContent struct {
	ID        string    `json:"id"`
	QuoteText string    `json:"quoteText"`
	ImageURL  string    `json:"imageUrl"` // plain URL or an embedded data URI
	AudioURL  string    `json:"audioUrl,omitempty"`
	Category  string    `json:"category"`
	Likes     int       `json:"likes"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a single entry in a quote's comment thread. Comments are
// owned by exactly one quote, stored append-only in chronological order,
// and die with the quote.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Toast is a short-lived notification. Toasts are process-local and never
// persisted; each one auto-dismisses after a fixed delay unless the user
// closes it first.
type Toast struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
