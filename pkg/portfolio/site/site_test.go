package site_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/memory"
	"github.com/tendant/simple-portfolio/pkg/portfolio/site"
)

func setupService(t *testing.T) portfolio.Service {
	t.Helper()
	svc, err := portfolio.New(portfolio.WithRepository(memory.New()))
	require.NoError(t, err)
	return svc
}

func seed(t *testing.T, svc portfolio.Service, records ...portfolio.Record) {
	t.Helper()
	for _, r := range records {
		_, err := svc.Create(context.Background(), r)
		require.NoError(t, err)
	}
}

func seedAll(t *testing.T, svc portfolio.Service, settings *portfolio.Settings) {
	t.Helper()
	_, err := svc.SaveSettings(context.Background(), settings)
	require.NoError(t, err)
	seed(t, svc,
		&portfolio.Video{Kind: portfolio.VideoLong, YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", TitleEN: "Long one", TitlePT: "Longo", IsActive: true},
		&portfolio.Video{Kind: portfolio.VideoShort, YouTubeURL: "https://youtube.com/shorts/abcdefghijk", TitleEN: "Short one", IsActive: true},
		&portfolio.Client{Name: "ana", Subscribers: "1.2M", IsVerified: true, IsActive: true},
		&portfolio.PricingPackage{NameEN: "Basic", Price: 50, IsActive: true, OrderIndex: 0},
		&portfolio.FAQItem{QuestionEN: "How long?", AnswerEN: "A week", QuestionPT: "Quanto tempo?", AnswerPT: "Uma semana", IsActive: true},
	)
}

func TestPageWithoutSettingsOmitsEverySection(t *testing.T) {
	svc := setupService(t)
	seed(t, svc, &portfolio.FAQItem{QuestionEN: "q", AnswerEN: "a", IsActive: true})

	page := site.NewRenderer(svc).Page(context.Background(), portfolio.LocaleEN)

	for _, s := range portfolio.Sections {
		assert.False(t, page.Has(s), "section %s", s)
	}
	assert.Empty(t, page.Contact)
}

func TestPageSectionVisibility(t *testing.T) {
	for _, section := range portfolio.Sections {
		t.Run(string(section), func(t *testing.T) {
			svc := setupService(t)
			settings := portfolio.DefaultSettings()
			settings.AboutTextEN = "Hello"
			switch section {
			case portfolio.SectionLongVideos:
				settings.ShowLongVideos = false
			case portfolio.SectionShorts:
				settings.ShowShorts = false
			case portfolio.SectionClients:
				settings.ShowClients = false
			case portfolio.SectionAbout:
				settings.ShowAbout = false
			case portfolio.SectionPricing:
				settings.ShowPricing = false
			case portfolio.SectionFAQ:
				settings.ShowFAQ = false
			}
			seedAll(t, svc, settings)

			page := site.NewRenderer(svc).Page(context.Background(), portfolio.LocaleEN)

			for _, s := range portfolio.Sections {
				assert.Equal(t, s != section, page.Has(s), "section %s", s)
			}
		})
	}
}

func TestPageSkipsInactiveRows(t *testing.T) {
	svc := setupService(t)
	_, err := svc.SaveSettings(context.Background(), portfolio.DefaultSettings())
	require.NoError(t, err)
	seed(t, svc,
		&portfolio.FAQItem{QuestionEN: "hidden", IsActive: false},
		&portfolio.FAQItem{QuestionEN: "second", IsActive: true, OrderIndex: 2},
		&portfolio.FAQItem{QuestionEN: "first", IsActive: true, OrderIndex: 1},
	)

	page := site.NewRenderer(svc).Page(context.Background(), portfolio.LocaleEN)

	require.Len(t, page.FAQ, 2)
	assert.Equal(t, "first", page.FAQ[0].Question)
	assert.Equal(t, "second", page.FAQ[1].Question)
	assert.False(t, page.Has(portfolio.SectionShorts))
}

func TestVideoCards(t *testing.T) {
	svc := setupService(t)
	_, err := svc.SaveSettings(context.Background(), portfolio.DefaultSettings())
	require.NoError(t, err)
	seed(t, svc,
		&portfolio.Video{Kind: portfolio.VideoLong, YouTubeURL: "https://youtu.be/dQw4w9WgXcQ", IsActive: true, OrderIndex: 1},
		&portfolio.Video{Kind: portfolio.VideoLong, YouTubeURL: "not a url", IsActive: true, OrderIndex: 2},
	)

	page := site.NewRenderer(svc).Page(context.Background(), portfolio.LocaleEN)

	require.Len(t, page.LongVideos, 2)
	valid := page.LongVideos[0]
	assert.True(t, valid.Valid)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", valid.EmbedURL)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg", valid.ThumbnailURL)
	assert.False(t, valid.Short)

	invalid := page.LongVideos[1]
	assert.False(t, invalid.Valid)
	assert.Empty(t, invalid.EmbedURL)
}

func TestPricingCards(t *testing.T) {
	svc := setupService(t)
	_, err := svc.SaveSettings(context.Background(), portfolio.DefaultSettings())
	require.NoError(t, err)
	seed(t, svc,
		&portfolio.PricingPackage{NameEN: "Basic", Price: 49.5, IsActive: true, OrderIndex: 0},
		&portfolio.PricingPackage{NameEN: "Pro", Price: 150, IsActive: true, OrderIndex: 1},
		&portfolio.PricingPackage{NameEN: "Custom", Price: 999, IsCustom: true, IsActive: true, OrderIndex: 2},
	)

	page := site.NewRenderer(svc).Page(context.Background(), portfolio.LocaleEN)

	require.Len(t, page.Pricing, 3)
	assert.Equal(t, "$49.5 USD", page.Pricing[0].Price)
	assert.Equal(t, "hero_cta", page.Pricing[0].CTAKey)
	assert.False(t, page.Pricing[0].Popular)
	assert.True(t, page.Pricing[1].Popular)

	custom := page.Pricing[2]
	assert.True(t, custom.Custom)
	assert.Empty(t, custom.Price)
	assert.Equal(t, "get_quote", custom.CTAKey)
}

func TestAboutMarkdown(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		contains  []string
		excludes  []string
		wantEmpty bool
	}{
		{
			name:     "markdown is rendered",
			text:     "I edit **videos**.",
			contains: []string{"<strong>videos</strong>"},
		},
		{
			name:     "raw html stays escaped",
			text:     "<script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
		{
			name:      "blank text shows placeholder",
			text:      "   ",
			contains:  []string{"Add your story here..."},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupService(t)
			settings := portfolio.DefaultSettings()
			settings.AboutTextEN = tt.text
			_, err := svc.SaveSettings(context.Background(), settings)
			require.NoError(t, err)

			page := site.NewRenderer(svc).Page(context.Background(), portfolio.LocaleEN)

			require.NotNil(t, page.About)
			assert.Equal(t, tt.wantEmpty, page.About.Empty)
			for _, s := range tt.contains {
				assert.Contains(t, string(page.About.HTML), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, string(page.About.HTML), s)
			}
		})
	}
}

type failingService struct {
	portfolio.Service
	fail portfolio.Collection
}

func (f *failingService) List(ctx context.Context, c portfolio.Collection, q portfolio.Query) ([]portfolio.Record, error) {
	if c == f.fail {
		return nil, errors.New("connection reset")
	}
	return f.Service.List(ctx, c, q)
}

func TestFailedFetchEmptiesOnlyThatSection(t *testing.T) {
	svc := setupService(t)
	seedAll(t, svc, portfolio.DefaultSettings())

	page := site.NewRenderer(&failingService{Service: svc, fail: portfolio.CollectionClients}).
		Page(context.Background(), portfolio.LocaleEN)

	assert.False(t, page.Has(portfolio.SectionClients))
	assert.True(t, page.Has(portfolio.SectionFAQ))
	assert.True(t, page.Has(portfolio.SectionLongVideos))
}

func TestContactChannels(t *testing.T) {
	svc := setupService(t)
	settings := portfolio.DefaultSettings()
	settings.Email = "me@example.com"
	settings.DiscordLink = "https://discord.gg/abc"
	_, err := svc.SaveSettings(context.Background(), settings)
	require.NoError(t, err)

	page := site.NewRenderer(svc).Page(context.Background(), portfolio.LocalePT)

	require.Len(t, page.Contact, 2)
	assert.Equal(t, "mailto:me@example.com", page.Contact[0].Href)
	assert.Equal(t, "Mensagem no Discord", page.Contact[1].Hint)
	assert.True(t, page.Contact[1].External)
}

func setupHandler(t *testing.T, svc portfolio.Service) http.Handler {
	t.Helper()
	return site.NewHandler(site.NewRenderer(svc), nil).Routes()
}

func TestHandlerRendersPage(t *testing.T) {
	svc := setupService(t)
	seedAll(t, svc, portfolio.DefaultSettings())
	seed(t, svc,
		&portfolio.Video{Kind: portfolio.VideoLong, YouTubeURL: "not a url", IsActive: true, OrderIndex: 5},
		&portfolio.PricingPackage{NameEN: "Bespoke", IsCustom: true, IsActive: true, OrderIndex: 1},
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	setupHandler(t, svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "https://www.youtube.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, body, "Invalid URL")
	assert.Contains(t, body, `data-cta="get_quote"`)
	assert.Contains(t, body, `data-cta="hero_cta"`)
	assert.Contains(t, body, "$50 USD")
	assert.Contains(t, body, "1.2M subscribers")
}

func TestHandlerHidesDisabledSection(t *testing.T) {
	svc := setupService(t)
	settings := portfolio.DefaultSettings()
	settings.ShowFAQ = false
	seedAll(t, svc, settings)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	setupHandler(t, svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `id="faq"`)
	assert.Contains(t, w.Body.String(), `id="pricing"`)
}

func TestHandlerLocale(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		cookie     string
		accept     string
		wantLocale string
		wantCookie bool
	}{
		{name: "default english", target: "/", wantLocale: "en"},
		{name: "query sets cookie", target: "/?lang=pt", wantLocale: "pt", wantCookie: true},
		{name: "cookie", target: "/", cookie: "pt", wantLocale: "pt"},
		{name: "query beats cookie", target: "/?lang=en", cookie: "pt", wantLocale: "en", wantCookie: true},
		{name: "accept language", target: "/", accept: "pt-BR,pt;q=0.9,en;q=0.5", wantLocale: "pt"},
		{name: "unknown query falls through", target: "/?lang=fr", accept: "pt", wantLocale: "pt"},
	}

	svc := setupService(t)
	seedAll(t, svc, portfolio.DefaultSettings())
	h := setupHandler(t, svc)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: site.LocaleCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantLocale, w.Header().Get("Content-Language"))
			assert.Contains(t, w.Body.String(), `<html lang="`+tt.wantLocale+`">`)
			assert.Equal(t, tt.wantCookie, strings.Contains(w.Header().Get("Set-Cookie"), site.LocaleCookie+"="))
		})
	}
}
