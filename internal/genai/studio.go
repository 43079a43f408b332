package genai

import (
	"context"
	"log/slog"
	"time"
)

// retryDelay is the fixed wait between retries of a failed generation
// step, and studio.DefaultInterval the pause between finished quotes.
const (
	retryDelay      = 5 * time.Second
	DefaultInterval = 30 * time.Second
)

// QuoteSink is where the studio delivers finished quotes. QuotesState
// satisfies it through a thin adapter in the server wiring; tests use a
// channel-backed fake.
type QuoteSink interface {
	PublishQuote(ctx context.Context, quoteText, imageURL, category string)
}

// Studio is the autonomous generation loop: generate a quote, render an
// image for it, publish, sleep, repeat.
//
// LIVENESS:
// The loop owns no state of its own — it only feeds the sink — so the one
// thing it must get right is stopping. Every wait (retry backoff, between
// quotes) selects on ctx.Done(), and no further work is issued once the
// context is cancelled. Run blocks until then; callers start it with `go`.
type Studio struct {
	gen      Generator
	sink     QuoteSink
	authorID string
	category string
	theme    string
	interval time.Duration
	delay    time.Duration // fixed retry delay, shortened in tests
	logger   *slog.Logger
}

// NewStudio creates a studio publishing quotes as authorID in the given
// category. An interval <= 0 falls back to DefaultInterval.
func NewStudio(gen Generator, sink QuoteSink, authorID, category, theme string, interval time.Duration, logger *slog.Logger) *Studio {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Studio{
		gen:      gen,
		sink:     sink,
		authorID: authorID,
		category: category,
		theme:    theme,
		interval: interval,
		delay:    retryDelay,
		logger:   logger,
	}
}

// Run generates and publishes quotes until ctx is cancelled.
//
// RETRY POLICY:
// On failure of either step, wait the fixed delay and retry the SAME
// logical step indefinitely — never skip ahead with half a quote. The
// hosted API fails loudly for a while and then recovers (quota windows),
// so a dumb fixed delay is the intended behaviour here, not a placeholder
// for exponential backoff.
func (s *Studio) Run(ctx context.Context) {
	s.logger.Info("studio started",
		slog.String("author", s.authorID),
		slog.Duration("interval", s.interval),
	)

	for {
		text, ok := s.retry(ctx, "text", func() (string, error) {
			return s.gen.GenerateQuoteText(ctx)
		})
		if !ok {
			return
		}

		imageURL, ok := s.retry(ctx, "image", func() (string, error) {
			return s.gen.GenerateQuoteImage(ctx, text, s.theme, nil)
		})
		if !ok {
			return
		}

		s.sink.PublishQuote(ctx, text, imageURL, s.category)
		s.logger.Info("studio published quote", slog.String("text", text))

		if !sleep(ctx, s.interval) {
			return
		}
	}
}

// retry runs step until it succeeds or ctx is cancelled. The bool reports
// whether the loop should continue (false = cancelled).
func (s *Studio) retry(ctx context.Context, name string, step func() (string, error)) (string, bool) {
	for {
		if ctx.Err() != nil {
			return "", false
		}
		result, err := step()
		if err == nil {
			return result, true
		}
		s.logger.Warn("studio step failed, retrying",
			slog.String("step", name),
			slog.String("error", err.Error()),
		)
		if !sleep(ctx, s.delay) {
			return "", false
		}
	}
}

// sleep waits for d, returning false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
