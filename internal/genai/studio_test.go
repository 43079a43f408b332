package genai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator returns canned results, failing the first failN calls
// of each step to exercise the retry loop.
type scriptedGenerator struct {
	mu        sync.Mutex
	textFails int
	imgFails  int
}

func (g *scriptedGenerator) GenerateQuoteText(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.textFails > 0 {
		g.textFails--
		return "", errors.New("text backend down")
	}
	return "stay curious", nil
}

func (g *scriptedGenerator) GenerateQuoteImage(_ context.Context, quote, theme string, _ *StyleImage) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.imgFails > 0 {
		g.imgFails--
		return "", errors.New("image backend down")
	}
	return "data:image/jpeg;base64,aW1n", nil
}

func (g *scriptedGenerator) GenerateQuoteAudio(context.Context, string) (string, error) {
	return "", errors.New("not used by the studio")
}

type published struct {
	text, image, category string
}

// chanSink delivers published quotes to the test over a channel.
type chanSink struct {
	ch chan published
}

func (s *chanSink) PublishQuote(_ context.Context, quoteText, imageURL, category string) {
	s.ch <- published{text: quoteText, image: imageURL, category: category}
}

func newTestStudio(gen Generator, sink QuoteSink) *Studio {
	s := NewStudio(gen, sink, "user-ai", "Motivation", "digital painting", time.Hour, testLogger())
	s.delay = time.Millisecond // keep retries fast in tests
	return s
}

func TestStudio_PublishesQuote(t *testing.T) {
	sink := &chanSink{ch: make(chan published, 1)}
	studio := newTestStudio(&scriptedGenerator{}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go studio.Run(ctx)

	select {
	case got := <-sink.ch:
		assert.Equal(t, "stay curious", got.text)
		assert.Equal(t, "data:image/jpeg;base64,aW1n", got.image)
		assert.Equal(t, "Motivation", got.category)
	case <-time.After(2 * time.Second):
		t.Fatal("studio never published a quote")
	}
}

func TestStudio_RetriesFailedSteps(t *testing.T) {
	// Both steps fail a few times first; the loop must retry the same
	// step until it succeeds rather than giving up or skipping ahead.
	gen := &scriptedGenerator{textFails: 3, imgFails: 2}
	sink := &chanSink{ch: make(chan published, 1)}
	studio := newTestStudio(gen, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go studio.Run(ctx)

	select {
	case got := <-sink.ch:
		require.Equal(t, "stay curious", got.text)
	case <-time.After(2 * time.Second):
		t.Fatal("studio never recovered from transient failures")
	}
}

func TestStudio_StopsOnCancel(t *testing.T) {
	// A generator that always fails keeps the loop in its retry wait;
	// cancelling the context must end Run promptly.
	gen := &scriptedGenerator{textFails: 1 << 30}
	sink := &chanSink{ch: make(chan published, 1)}
	studio := newTestStudio(gen, sink)
	studio.delay = time.Hour // park the loop in a retry sleep

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		studio.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("studio did not stop after cancellation")
	}

	// No publish happened after teardown.
	select {
	case got := <-sink.ch:
		t.Fatalf("studio published %+v after cancellation", got)
	default:
	}
}
