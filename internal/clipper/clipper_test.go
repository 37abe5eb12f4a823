package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/llm"
	"ai-fitness-coach/internal/shared"
)

// --- Mocks ---

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	LastPrompt  string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.LastPrompt = prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{
		Content: m.Response,
		Usage:   shared.TokenUsage{PromptTokens: 300, CompletionTokens: 90, Model: "mock"},
	}, nil
}

func newPageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// newLocalClipper builds a Clipper allowed to reach httptest servers.
func newLocalClipper(gen llm.TextGenerator) *Clipper {
	return NewClipper(gen, nil, zap.NewNop(), Options{HTTPClient: &http.Client{Timeout: 5 * time.Second}})
}

type recordedMeta struct {
	mu    sync.Mutex
	metas []shared.AgentMeta
}

func (r *recordedMeta) RecordMeta(_ context.Context, meta shared.AgentMeta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metas = append(r.metas, meta)
	return nil
}

type blockingGenerator struct{}

func (blockingGenerator) GenerateContent(ctx context.Context, _ string) (llm.ContentResponse, error) {
	<-ctx.Done()
	return llm.ContentResponse{}, ctx.Err()
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := newPageServer(t, `
		<html>
			<head><title>Tasty Recipe | Blog</title><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix   flour and
				water.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`)

	c := newLocalClipper(&MockTextGenerator{})
	p, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "Tasty Recipe | Blog", p.Title)
	assert.NotContains(t, p.Text, "alert('bad')")
	assert.NotContains(t, p.Text, "Buy stuff!")
	assert.NotContains(t, p.Text, "Copyright 2024")
	assert.Contains(t, p.Text, "Tasty Recipe")
	assert.Contains(t, p.Text, "Mix flour and water.", "whitespace is collapsed")
}

func TestFetchAndCleanHTML_OpenGraphTitle(t *testing.T) {
	ts := newPageServer(t, `<html><head><title>x</title><meta property="og:title" content="Salmon Bowl"></head><body>hi</body></html>`)

	p, err := newLocalClipper(nil).fetchAndCleanHTML(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Salmon Bowl", p.Title)
}

func TestClipURL_Success(t *testing.T) {
	ts := newPageServer(t, "<html><body>Bake the apples for an hour.</body></html>")
	mockAI := &MockTextGenerator{Response: "```json\n" +
		`{"title": "Mock Pie", "macros": {"calories": 410, "protein": "6"}, "ingredients": ["Apple", ""], "instructions": ["Bake"]}` +
		"\n```"}

	recipe, err := newLocalClipper(mockAI).ClipURL(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "Mock Pie", recipe.Title)
	assert.Equal(t, []string{"Apple"}, recipe.Ingredients)
	assert.Equal(t, 410.0, recipe.Macros.Calories)
	assert.Contains(t, mockAI.LastPrompt, "Bake the apples for an hour.")
	assert.Contains(t, mockAI.LastPrompt, "Page URL: "+ts.URL)
}

func TestClipURL_Failures(t *testing.T) {
	ok := newPageServer(t, "<html><body>content</body></html>")
	missing := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(missing.Close)

	tests := []struct {
		name string
		url  string
		ai   *MockTextGenerator
		kind apperr.Kind
	}{
		{"bad scheme", "ftp://example.com/recipe", &MockTextGenerator{}, apperr.KindValidation},
		{"not a url", "::", &MockTextGenerator{}, apperr.KindValidation},
		{"page missing", missing.URL, &MockTextGenerator{}, apperr.KindDownstream},
		{"ai error", ok.URL, &MockTextGenerator{ShouldError: true}, apperr.KindDownstream},
		{"no recipe", ok.URL, &MockTextGenerator{Response: "{}"}, apperr.KindNormalization},
		{"no json", ok.URL, &MockTextGenerator{Response: "Sorry, no recipe here."}, apperr.KindExtraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := newLocalClipper(tt.ai).ClipURL(context.Background(), tt.url)
			assert.Nil(t, recipe)
			assert.Equal(t, tt.kind, apperr.KindOf(err), "got %v", err)
		})
	}
}

func TestClipURL_RecordsUsage(t *testing.T) {
	ts := newPageServer(t, "<html><body>Grill the chicken.</body></html>")
	rec := &recordedMeta{}
	ai := &MockTextGenerator{Response: `{"title":"Grilled Chicken","ingredients":["chicken"]}`}
	c := NewClipper(ai, rec, zap.NewNop(), Options{HTTPClient: ts.Client()})

	_, err := c.ClipURL(context.Background(), ts.URL)
	require.NoError(t, err)

	require.Len(t, rec.metas, 1)
	assert.Equal(t, shared.AgentClipper, rec.metas[0].AgentName)
	assert.Equal(t, 300, rec.metas[0].Usage.PromptTokens)
	assert.Equal(t, 90, rec.metas[0].Usage.CompletionTokens)
}

func TestClipURL_Timeout(t *testing.T) {
	ts := newPageServer(t, "<html><body>Slow cooker stew.</body></html>")
	rec := &recordedMeta{}
	c := NewClipper(blockingGenerator{}, rec, zap.NewNop(), Options{
		Timeout:    20 * time.Millisecond,
		HTTPClient: ts.Client(),
	})

	start := time.Now()
	recipe, err := c.ClipURL(context.Background(), ts.URL)
	assert.Nil(t, recipe)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, rec.metas)
}

func TestClipURL_RefusesPrivateAddresses(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html><body>internal</body></html>"))
	}))
	t.Cleanup(ts.Close)

	ai := &MockTextGenerator{Response: `{"title":"Leaked"}`}
	recipe, err := NewClipper(ai, nil, zap.NewNop(), Options{}).ClipURL(context.Background(), ts.URL)

	assert.Nil(t, recipe)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "got %v", err)
	assert.Equal(t, "url must point to a public address", apperr.Message(err))
	assert.Zero(t, hits.Load())
	assert.Empty(t, ai.LastPrompt)
}

func TestCheckPublicAddress(t *testing.T) {
	tests := []struct {
		address string
		public  bool
	}{
		{"93.184.216.34:443", true},
		{"[2606:4700:4700::1111]:443", true},
		{"127.0.0.1:80", false},
		{"[::1]:80", false},
		{"10.1.2.3:80", false},
		{"172.16.0.1:80", false},
		{"192.168.1.10:8080", false},
		{"169.254.169.254:80", false},
		{"100.64.0.1:80", false},
		{"0.0.0.0:80", false},
		{"[::ffff:127.0.0.1]:80", false},
		{"[fd00::1]:80", false},
		{"[fe80::1]:80", false},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := checkPublicAddress("tcp", tt.address, nil)
			if tt.public {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errBlockedAddress)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))

	// "é" is two bytes; cutting inside it backs off to the rune start.
	s := strings.Repeat("é", 5)
	got := truncate(s, 5)
	assert.Equal(t, "éé", got)
	assert.True(t, utf8.ValidString(got))
}
