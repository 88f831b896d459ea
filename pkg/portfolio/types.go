package portfolio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Collection names one of the six content collections. The value doubles as
// the table name in relational stores and the path segment in the REST API.
type Collection string

const (
	CollectionSettings   Collection = "portfolio_settings"
	CollectionLongVideos Collection = "long_videos"
	CollectionShorts     Collection = "shorts"
	CollectionClients    Collection = "clients"
	CollectionPricing    Collection = "pricing_packages"
	CollectionFAQ        Collection = "faq_items"
)

// ItemCollections lists the ordered, multi-row collections in display order.
var ItemCollections = []Collection{
	CollectionLongVideos,
	CollectionShorts,
	CollectionClients,
	CollectionPricing,
	CollectionFAQ,
}

// IsValid reports whether c names a known collection.
func (c Collection) IsValid() bool {
	switch c {
	case CollectionSettings, CollectionLongVideos, CollectionShorts,
		CollectionClients, CollectionPricing, CollectionFAQ:
		return true
	}
	return false
}

// IsSingleton reports whether the collection holds at most one row.
func (c Collection) IsSingleton() bool {
	return c == CollectionSettings
}

// ParseCollection converts a string into a Collection.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
	}
	return c, nil
}

// Section names a block of the public page gated by a settings visibility flag.
type Section string

const (
	SectionLongVideos Section = "long_videos"
	SectionShorts     Section = "shorts"
	SectionClients    Section = "clients"
	SectionAbout      Section = "about"
	SectionPricing    Section = "pricing"
	SectionFAQ        Section = "faq"
)

// Sections lists the page sections in render order.
var Sections = []Section{
	SectionLongVideos,
	SectionShorts,
	SectionClients,
	SectionAbout,
	SectionPricing,
	SectionFAQ,
}

// Locale selects which localized field variant is shown.
type Locale string

const (
	LocaleEN Locale = "en"
	LocalePT Locale = "pt"
)

// Pick returns en or pt depending on the locale. Unknown locales get English.
func (l Locale) Pick(en, pt string) string {
	if l == LocalePT {
		return pt
	}
	return en
}

// Toggle returns the other supported locale.
func (l Locale) Toggle() Locale {
	if l == LocalePT {
		return LocaleEN
	}
	return LocalePT
}

// Record is a row of any collection.
type Record interface {
	// Collection returns the collection the record belongs to
	Collection() Collection

	// RecordID returns the store-assigned identifier (uuid.Nil before insert)
	RecordID() uuid.UUID

	// SetRecordID replaces the identifier
	SetRecordID(id uuid.UUID)

	// Touch stamps the record's store-maintained timestamp
	Touch(now time.Time)

	// Clone returns a deep copy
	Clone() Record

	// Validate checks field constraints before a write
	Validate() error
}

// Item is a record of an ordered collection with an active flag.
type Item interface {
	Record
	SortIndex() int
	Active() bool
	Created() time.Time
}

// Settings is the singleton configuration row: contact links, localized about
// text and the six section visibility flags.
type Settings struct {
	ID             uuid.UUID `json:"id"`
	DiscordLink    string    `json:"discord_link"`
	WhatsAppLink   string    `json:"whatsapp_link"`
	Email          string    `json:"email"`
	AboutTextEN    string    `json:"about_text_en"`
	AboutTextPT    string    `json:"about_text_pt"`
	AboutImageURL  string    `json:"about_image_url"`
	ShowLongVideos bool      `json:"show_long_videos"`
	ShowShorts     bool      `json:"show_shorts"`
	ShowClients    bool      `json:"show_clients"`
	ShowAbout      bool      `json:"show_about"`
	ShowPricing    bool      `json:"show_pricing"`
	ShowFAQ        bool      `json:"show_faq"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultSettings returns a blank settings row with every section visible.
func DefaultSettings() *Settings {
	return &Settings{
		ShowLongVideos: true,
		ShowShorts:     true,
		ShowClients:    true,
		ShowAbout:      true,
		ShowPricing:    true,
		ShowFAQ:        true,
	}
}

// Shows reports whether the given page section is enabled.
func (s *Settings) Shows(section Section) bool {
	if s == nil {
		return false
	}
	switch section {
	case SectionLongVideos:
		return s.ShowLongVideos
	case SectionShorts:
		return s.ShowShorts
	case SectionClients:
		return s.ShowClients
	case SectionAbout:
		return s.ShowAbout
	case SectionPricing:
		return s.ShowPricing
	case SectionFAQ:
		return s.ShowFAQ
	}
	return false
}

// AboutText returns the about text for the locale.
func (s *Settings) AboutText(l Locale) string {
	return l.Pick(s.AboutTextEN, s.AboutTextPT)
}

func (s *Settings) Collection() Collection { return CollectionSettings }
func (s *Settings) RecordID() uuid.UUID { return s.ID }
func (s *Settings) SetRecordID(id uuid.UUID) { s.ID = id }
func (s *Settings) Touch(now time.Time) { s.UpdatedAt = now }
func (s *Settings) Clone() Record { c := *s; return &c }

// VideoKind distinguishes long-form videos from shorts. Both share one row shape.
type VideoKind string

const (
	VideoLong  VideoKind = "long"
	VideoShort VideoKind = "short"
)

// Video is a row of the long_videos or shorts collection.
type Video struct {
	ID           uuid.UUID `json:"id"`
	YouTubeURL   string    `json:"youtube_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	TitleEN      string    `json:"title_en"`
	TitlePT      string    `json:"title_pt"`
	OrderIndex   int       `json:"order_index"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	Kind VideoKind `json:"-"`
}

// Title returns the localized title.
func (v *Video) Title(l Locale) string { return l.Pick(v.TitleEN, v.TitlePT) }

func (v *Video) Collection() Collection {
	if v.Kind == VideoShort {
		return CollectionShorts
	}
	return CollectionLongVideos
}
func (v *Video) RecordID() uuid.UUID { return v.ID }
func (v *Video) SetRecordID(id uuid.UUID) { v.ID = id }
func (v *Video) Touch(now time.Time) { v.CreatedAt = now }
func (v *Video) Clone() Record { c := *v; return &c }
func (v *Video) SortIndex() int { return v.OrderIndex }
func (v *Video) Active() bool { return v.IsActive }
func (v *Video) Created() time.Time { return v.CreatedAt }

// Client is a creator the editor has worked with.
type Client struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PhotoURL    string    `json:"photo_url"`
	Subscribers string    `json:"subscribers"`
	ChannelLink string    `json:"channel_link"`
	IsVerified  bool      `json:"is_verified"`
	OrderIndex  int       `json:"order_index"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Client) Collection() Collection { return CollectionClients }
func (c *Client) RecordID() uuid.UUID { return c.ID }
func (c *Client) SetRecordID(id uuid.UUID) { c.ID = id }
func (c *Client) Touch(now time.Time) { c.CreatedAt = now }
func (c *Client) Clone() Record { cp := *c; return &cp }
func (c *Client) SortIndex() int { return c.OrderIndex }
func (c *Client) Active() bool { return c.IsActive }
func (c *Client) Created() time.Time { return c.CreatedAt }

// PricingPackage is an offer on the pricing section. Price is ignored when
// IsCustom is set.
type PricingPackage struct {
	ID            uuid.UUID `json:"id"`
	NameEN        string    `json:"name_en"`
	NamePT        string    `json:"name_pt"`
	DescriptionEN string    `json:"description_en"`
	DescriptionPT string    `json:"description_pt"`
	Price         float64   `json:"price"`
	FeaturesEN    []string  `json:"features_en"`
	FeaturesPT    []string  `json:"features_pt"`
	IsCustom      bool      `json:"is_custom"`
	OrderIndex    int       `json:"order_index"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Name returns the localized package name.
func (p *PricingPackage) Name(l Locale) string { return l.Pick(p.NameEN, p.NamePT) }

// Description returns the localized description.
func (p *PricingPackage) Description(l Locale) string {
	return l.Pick(p.DescriptionEN, p.DescriptionPT)
}

// Features returns the localized feature list.
func (p *PricingPackage) Features(l Locale) []string {
	if l == LocalePT {
		return p.FeaturesPT
	}
	return p.FeaturesEN
}

func (p *PricingPackage) Collection() Collection { return CollectionPricing }
func (p *PricingPackage) RecordID() uuid.UUID { return p.ID }
func (p *PricingPackage) SetRecordID(id uuid.UUID) { p.ID = id }
func (p *PricingPackage) Touch(now time.Time) { p.CreatedAt = now }
func (p *PricingPackage) SortIndex() int { return p.OrderIndex }
func (p *PricingPackage) Active() bool { return p.IsActive }
func (p *PricingPackage) Created() time.Time { return p.CreatedAt }

func (p *PricingPackage) Clone() Record {
	c := *p
	c.FeaturesEN = append([]string(nil), p.FeaturesEN...)
	c.FeaturesPT = append([]string(nil), p.FeaturesPT...)
	return &c
}

// FAQItem is a localized question and answer pair.
type FAQItem struct {
	ID         uuid.UUID `json:"id"`
	QuestionEN string    `json:"question_en"`
	QuestionPT string    `json:"question_pt"`
	AnswerEN   string    `json:"answer_en"`
	AnswerPT   string    `json:"answer_pt"`
	OrderIndex int       `json:"order_index"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Question returns the localized question.
func (f *FAQItem) Question(l Locale) string { return l.Pick(f.QuestionEN, f.QuestionPT) }

// Answer returns the localized answer.
func (f *FAQItem) Answer(l Locale) string { return l.Pick(f.AnswerEN, f.AnswerPT) }

func (f *FAQItem) Collection() Collection { return CollectionFAQ }
func (f *FAQItem) RecordID() uuid.UUID { return f.ID }
func (f *FAQItem) SetRecordID(id uuid.UUID) { f.ID = id }
func (f *FAQItem) Touch(now time.Time) { f.CreatedAt = now }
func (f *FAQItem) Clone() Record { c := *f; return &c }
func (f *FAQItem) SortIndex() int { return f.OrderIndex }
func (f *FAQItem) Active() bool { return f.IsActive }
func (f *FAQItem) Created() time.Time { return f.CreatedAt }

// NewRecord returns an empty record of the collection's concrete type, ready
// to be decoded into.
func NewRecord(c Collection) (Record, error) {
	switch c {
	case CollectionSettings:
		return &Settings{}, nil
	case CollectionLongVideos:
		return &Video{Kind: VideoLong}, nil
	case CollectionShorts:
		return &Video{Kind: VideoShort}, nil
	case CollectionClients:
		return &Client{}, nil
	case CollectionPricing:
		return &PricingPackage{}, nil
	case CollectionFAQ:
		return &FAQItem{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, string(c))
}

// NewBlank returns a fresh row as the admin "add" action creates it: order
// index 0, active, and collection-specific blank fields.
func NewBlank(c Collection) (Record, error) {
	r, err := NewRecord(c)
	if err != nil {
		return nil, err
	}
	switch v := r.(type) {
	case *Settings:
		return DefaultSettings(), nil
	case *Video:
		v.IsActive = true
	case *Client:
		v.IsActive = true
	case *PricingPackage:
		v.IsActive = true
		v.FeaturesEN = []string{}
		v.FeaturesPT = []string{}
	case *FAQItem:
		v.IsActive = true
	}
	return r, nil
}
