package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/fitness"
	"ai-fitness-coach/internal/llm"
	"ai-fitness-coach/internal/normalize"
	"ai-fitness-coach/internal/shared"
)

// maxPageText bounds how many bytes of page text are sent to the model.
const maxPageText = 20000

//go:embed prompt.md
var promptText string

var promptTmpl = template.Must(template.New("clip").Parse(promptText))

// MetricsRecorder stores per-call token usage.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Options configure a Clipper.
type Options struct {
	// Timeout bounds the AI extraction call. Defaults to 60 seconds.
	Timeout time.Duration
	// HTTPClient fetches the pages. Defaults to a client with a 15 second
	// timeout that only dials public addresses.
	HTTPClient *http.Client
}

// Clipper fetches recipe pages and extracts a recipe with the AI.
type Clipper struct {
	textGen    llm.TextGenerator
	recorder   MetricsRecorder
	httpClient *http.Client
	logger     *zap.Logger
	timeout    time.Duration
}

// NewClipper creates a new Clipper. recorder may be nil.
func NewClipper(textGen llm.TextGenerator, recorder MetricsRecorder, logger *zap.Logger, opts Options) *Clipper {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewPublicClient(15 * time.Second)
	}
	return &Clipper{
		textGen:    textGen,
		recorder:   recorder,
		httpClient: opts.HTTPClient,
		logger:     logger,
		timeout:    opts.Timeout,
	}
}

type page struct {
	Title string
	URL   string
	Text  string
}

// ClipURL fetches the page at rawURL and returns the recipe it contains.
func (c *Clipper) ClipURL(ctx context.Context, rawURL string) (*fitness.RecipeRecommendation, error) {
	const op = "clipper.ClipURL"

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Errorf(apperr.KindValidation, op, "invalid recipe url %q", rawURL)
	}

	p, err := c.fetchAndCleanHTML(ctx, u.String())
	if errors.Is(err, errBlockedAddress) {
		return nil, apperr.E(apperr.KindValidation, op, errors.New("url must point to a public address"))
	}
	if err != nil {
		return nil, apperr.E(apperr.KindDownstream, op, fmt.Errorf("failed to fetch content: %w", err))
	}

	var prompt bytes.Buffer
	if err := promptTmpl.Execute(&prompt, p); err != nil {
		return nil, apperr.E(apperr.KindInternal, op, err)
	}

	resp, err := c.generate(ctx, op, prompt.String())
	if err != nil {
		return nil, err
	}

	recipe, err := normalize.Parse(resp.Content, normalize.Recipe)
	if err != nil {
		c.logger.Warn("could not extract recipe", zap.String("url", p.URL), zap.Error(err))
		return nil, err
	}
	c.logger.Info("clipped recipe", zap.String("url", p.URL), zap.String("title", recipe.Title))
	return recipe, nil
}

func (c *Clipper) generate(ctx context.Context, op, prompt string) (llm.ContentResponse, error) {
	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.textGen.GenerateContent(genCtx, prompt)
	latency := time.Since(start)
	if err != nil {
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return resp, apperr.E(apperr.KindTimeout, op, err)
		}
		return resp, apperr.E(apperr.KindDownstream, op, fmt.Errorf("ai extraction failed: %w", err))
	}

	if c.recorder != nil {
		meta := shared.AgentMeta{AgentName: shared.AgentClipper, Usage: resp.Usage, Latency: latency}
		if err := c.recorder.RecordMeta(ctx, meta); err != nil {
			c.logger.Warn("failed to record ai metrics", zap.Error(err))
		}
	}
	return resp, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, pageURL string) (page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return page{}, err
	}
	req.Header.Set("User-Agent", "ai-fitness-coach/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return page{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return page{}, err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, noscript, svg, form, ads, .ads, #ads").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(og)
	}

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return page{Title: title, URL: pageURL, Text: truncate(text, maxPageText)}, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
