package site

import (
	"html/template"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/contact"
	"github.com/tendant/simple-portfolio/pkg/portfolio/i18n"
)

// Page is everything the page template needs. A nil or empty section field
// means the section is not rendered.
type Page struct {
	Locale    portfolio.Locale
	Alternate portfolio.Locale
	Year      int

	LongVideos []VideoCard
	Shorts     []VideoCard
	Clients    []ClientCard
	About      *AboutView
	Pricing    []PricingCard
	FAQ        []FAQEntry
	Contact    []ChannelView

	tr *i18n.Translator
}

// T translates key into the page locale.
func (p *Page) T(key string) string {
	return p.tr.T(p.Locale, key)
}

// AlternateName is the name of the other locale, for the language switch.
func (p *Page) AlternateName() string {
	return p.tr.T(p.Alternate, "language_name")
}

// Has reports whether the named section will be rendered.
func (p *Page) Has(section portfolio.Section) bool {
	switch section {
	case portfolio.SectionLongVideos:
		return len(p.LongVideos) > 0
	case portfolio.SectionShorts:
		return len(p.Shorts) > 0
	case portfolio.SectionClients:
		return len(p.Clients) > 0
	case portfolio.SectionAbout:
		return p.About != nil
	case portfolio.SectionPricing:
		return len(p.Pricing) > 0
	case portfolio.SectionFAQ:
		return len(p.FAQ) > 0
	}
	return false
}

// VideoCard is one embedded video. Valid is false when no video id could be
// extracted; the card then shows a placeholder instead of a player.
type VideoCard struct {
	Title        string
	VideoID      string
	EmbedURL     string
	ThumbnailURL string
	Valid        bool
	Short        bool
}

func newVideoCard(v *portfolio.Video, l portfolio.Locale) VideoCard {
	card := VideoCard{Title: v.Title(l), Short: v.Kind == portfolio.VideoShort}
	id, ok := portfolio.ExtractVideoID(v.YouTubeURL)
	if !ok {
		return card
	}
	card.Valid = true
	card.VideoID = id
	card.EmbedURL = portfolio.EmbedURL(id, false)
	card.ThumbnailURL = portfolio.ThumbnailURL(v.YouTubeURL)
	return card
}

// ClientCard is one creator in the clients grid.
type ClientCard struct {
	Name        string
	PhotoURL    string
	Initial     string
	Subscribers string
	ChannelLink string
	Verified    bool
}

func newClientCard(c *portfolio.Client) ClientCard {
	return ClientCard{
		Name:        c.Name,
		PhotoURL:    c.PhotoURL,
		Initial:     initial(c.Name),
		Subscribers: c.Subscribers,
		ChannelLink: c.ChannelLink,
		Verified:    c.IsVerified,
	}
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// PricingCard is one package. Custom packages show a label instead of a price
// and ask for a quote.
type PricingCard struct {
	Name        string
	Description string
	Features    []string
	Custom      bool
	Price       string
	CTAKey      string
	Popular     bool
}

// popularIndex is the position of the highlighted package.
const popularIndex = 1

func newPricingCard(p *portfolio.PricingPackage, l portfolio.Locale, index int) PricingCard {
	card := PricingCard{
		Name:        p.Name(l),
		Description: p.Description(l),
		Features:    p.Features(l),
		Custom:      p.IsCustom,
		Popular:     index == popularIndex,
	}
	if p.IsCustom {
		card.CTAKey = "get_quote"
	} else {
		card.Price = formatPrice(p.Price)
		card.CTAKey = "hero_cta"
	}
	return card
}

func formatPrice(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', -1, 64) + " USD"
}

// AboutView is the about section body rendered from Markdown.
type AboutView struct {
	HTML     template.HTML
	Empty    bool
	ImageURL string
}

// FAQEntry is one localized question and answer.
type FAQEntry struct {
	Question string
	Answer   string
}

// ChannelView is a contact channel with its label resolved.
type ChannelView struct {
	Kind     contact.Kind
	Label    string
	Hint     string
	Href     string
	External bool
}
