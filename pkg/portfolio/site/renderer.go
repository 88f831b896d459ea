// Package site renders the public portfolio page from the content gateway.
package site

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/contact"
	"github.com/tendant/simple-portfolio/pkg/portfolio/i18n"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/errgroup"
)

// Renderer builds Page values. Each section fetches its own rows; a failed
// fetch empties that section only.
type Renderer struct {
	svc      portfolio.Service
	tr       *i18n.Translator
	markdown goldmark.Markdown
	logger   *slog.Logger
	now      func() time.Time
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithRendererLogger sets the logger for fetch failures
func WithRendererLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithTranslator replaces the built-in translator
func WithTranslator(tr *i18n.Translator) RendererOption {
	return func(r *Renderer) {
		r.tr = tr
	}
}

// NewRenderer creates a renderer reading from svc
func NewRenderer(svc portfolio.Service, opts ...RendererOption) *Renderer {
	r := &Renderer{
		svc: svc,
		tr:  i18n.New(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Page loads the settings row and then every visible section concurrently.
// Sections are omitted when settings are missing, their flag is off, their
// fetch fails or they have no active rows.
func (r *Renderer) Page(ctx context.Context, locale portfolio.Locale) *Page {
	page := &Page{
		Locale:    locale,
		Alternate: locale.Toggle(),
		Year:      r.now().Year(),
		tr:        r.tr,
	}

	settings, err := r.svc.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, portfolio.ErrNotFound) {
			r.logger.WarnContext(ctx, "settings fetch failed", "kind", portfolio.KindOf(err), "err", err)
		}
		return page
	}

	for _, ch := range contact.Channels(settings) {
		view := ChannelView{Kind: ch.Kind, Label: r.tr.T(locale, ch.LabelKey), Href: ch.Href, External: ch.External}
		if ch.HintKey != "" {
			view.Hint = r.tr.T(locale, ch.HintKey)
		} else {
			view.Hint = ch.Value
		}
		page.Contact = append(page.Contact, view)
	}

	if settings.Shows(portfolio.SectionAbout) {
		page.About = r.about(ctx, settings, locale)
	}

	var g errgroup.Group
	if settings.Shows(portfolio.SectionLongVideos) {
		g.Go(func() error {
			for _, rec := range r.fetch(ctx, portfolio.CollectionLongVideos) {
				page.LongVideos = append(page.LongVideos, newVideoCard(rec.(*portfolio.Video), locale))
			}
			return nil
		})
	}
	if settings.Shows(portfolio.SectionShorts) {
		g.Go(func() error {
			for _, rec := range r.fetch(ctx, portfolio.CollectionShorts) {
				page.Shorts = append(page.Shorts, newVideoCard(rec.(*portfolio.Video), locale))
			}
			return nil
		})
	}
	if settings.Shows(portfolio.SectionClients) {
		g.Go(func() error {
			for _, rec := range r.fetch(ctx, portfolio.CollectionClients) {
				page.Clients = append(page.Clients, newClientCard(rec.(*portfolio.Client)))
			}
			return nil
		})
	}
	if settings.Shows(portfolio.SectionPricing) {
		g.Go(func() error {
			for i, rec := range r.fetch(ctx, portfolio.CollectionPricing) {
				page.Pricing = append(page.Pricing, newPricingCard(rec.(*portfolio.PricingPackage), locale, i))
			}
			return nil
		})
	}
	if settings.Shows(portfolio.SectionFAQ) {
		g.Go(func() error {
			for _, rec := range r.fetch(ctx, portfolio.CollectionFAQ) {
				f := rec.(*portfolio.FAQItem)
				page.FAQ = append(page.FAQ, FAQEntry{Question: f.Question(locale), Answer: f.Answer(locale)})
			}
			return nil
		})
	}
	// section goroutines log their own failures and never return an error
	_ = g.Wait()

	return page
}

// fetch returns the active rows of c, or nil after logging a failure.
func (r *Renderer) fetch(ctx context.Context, c portfolio.Collection) []portfolio.Record {
	rows, err := r.svc.List(ctx, c, portfolio.Query{ActiveOnly: true})
	if err != nil {
		r.logger.WarnContext(ctx, "section fetch failed", "collection", c, "kind", portfolio.KindOf(err), "err", err)
		return nil
	}
	return rows
}

func (r *Renderer) about(ctx context.Context, s *portfolio.Settings, l portfolio.Locale) *AboutView {
	view := &AboutView{ImageURL: s.AboutImageURL}

	text := strings.TrimSpace(s.AboutText(l))
	if text == "" {
		view.Empty = true
		view.HTML = template.HTML(template.HTMLEscapeString(r.tr.T(l, "about_placeholder")))
		return view
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buf); err != nil {
		r.logger.WarnContext(ctx, "about markdown failed", "err", err)
		view.HTML = template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
		return view
	}
	// goldmark escapes raw HTML unless html.WithUnsafe is set
	view.HTML = template.HTML(buf.String())
	return view
}
