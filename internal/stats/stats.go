// Package stats computes the admin dashboard aggregates from snapshots of
// the two state containers.
//
// Everything here is a pure projection: read a snapshot, count, return.
// Nothing is cached and nothing mutates container state, so the numbers
// are always consistent with one moment in time per source.
package stats

import (
	"sort"
	"time"

	"github.com/sakif/quote-studio/internal/model"
)

// daysOfHistory is how far back the quotes-per-day chart reaches,
// including today.
const daysOfHistory = 7

// UserSource provides a snapshot of the user directory.
type UserSource interface {
	Users() map[string]model.User
}

// QuoteSource provides a snapshot of the quote collection.
type QuoteSource interface {
	Quotes() []model.QuoteContent
}

// LabelCount is one bucket in a chart: a display label and its count.
type LabelCount struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// UserRow is one row of the user-management table.
type UserRow struct {
	model.User
	QuoteCount    int `json:"quoteCount"`
	LikesReceived int `json:"likesReceived"`
}

// Overview is the full dashboard payload.
type Overview struct {
	TotalUsers       int          `json:"totalUsers"`
	TotalQuotes      int          `json:"totalQuotes"`
	TotalLikes       int          `json:"totalLikes"`
	QuotesPerDay     []LabelCount `json:"quotesPerDay"`     // trailing week, oldest first
	QuotesByCategory []LabelCount `json:"quotesByCategory"` // fixed category order
	Users            []UserRow    `json:"users"`            // newest accounts first
}

// Service aggregates usage statistics over the injected sources.
type Service struct {
	users  UserSource
	quotes QuoteSource
	now    func() time.Time // injectable clock for the per-day buckets
}

// NewService creates a stats service reading from the given sources.
func NewService(users UserSource, quotes QuoteSource) *Service {
	return &Service{users: users, quotes: quotes, now: time.Now}
}

// Overview computes the complete dashboard payload.
func (s *Service) Overview() Overview {
	users := s.users.Users()
	quotes := s.quotes.Quotes()

	totalLikes := 0
	for _, q := range quotes {
		totalLikes += q.Likes
	}

	return Overview{
		TotalUsers:       len(users),
		TotalQuotes:      len(quotes),
		TotalLikes:       totalLikes,
		QuotesPerDay:     quotesPerDay(quotes, s.now()),
		QuotesByCategory: quotesByCategory(quotes),
		Users:            userRows(users, quotes),
	}
}

// quotesPerDay buckets quote creation into the trailing week, oldest day
// first. Bucketing is by calendar date in the server's local time.
func quotesPerDay(quotes []model.QuoteContent, now time.Time) []LabelCount {
	counts := make(map[string]int)
	for _, q := range quotes {
		counts[q.CreatedAt.Format("2006-01-02")]++
	}

	days := make([]LabelCount, 0, daysOfHistory)
	for i := daysOfHistory - 1; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		days = append(days, LabelCount{
			Label: d.Format("Jan 2"),
			Value: counts[d.Format("2006-01-02")],
		})
	}
	return days
}

// quotesByCategory counts quotes per fixed category, in category order.
// Quotes with a category outside the fixed set are not counted anywhere.
func quotesByCategory(quotes []model.QuoteContent) []LabelCount {
	counts := make(map[string]int, len(model.Categories))
	for _, q := range quotes {
		counts[q.Category]++
	}

	buckets := make([]LabelCount, 0, len(model.Categories))
	for _, cat := range model.Categories {
		buckets = append(buckets, LabelCount{Label: cat, Value: counts[cat]})
	}
	return buckets
}

// userRows builds the per-user table, newest accounts first.
func userRows(users map[string]model.User, quotes []model.QuoteContent) []UserRow {
	quoteCount := make(map[string]int)
	likesReceived := make(map[string]int)
	for _, q := range quotes {
		quoteCount[q.AuthorID]++
		likesReceived[q.AuthorID] += q.Likes
	}

	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{
			User:          u,
			QuoteCount:    quoteCount[u.ID],
			LikesReceived: likesReceived[u.ID],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID // stable order for the seed accounts
	})
	return rows
}
