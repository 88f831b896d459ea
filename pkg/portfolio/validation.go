package portfolio

import (
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	maxTitleLength = 200
	maxTextLength  = 10000
	maxURLLength   = 2048
)

// finite rejects NaN and infinities, which JSON and Postgres numeric columns
// cannot round-trip.
var finite = validation.By(func(value any) error {
	f, _ := value.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return validation.NewError("portfolio.price.finite", "must be a finite number")
	}
	return nil
})

func invalid(c Collection, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrInvalidRecord, c, err)
}

// Validate checks contact links and text sizes.
func (s *Settings) Validate() error {
	return invalid(s.Collection(), validation.ValidateStruct(s,
		validation.Field(&s.DiscordLink, validation.Length(0, maxURLLength), is.URL),
		validation.Field(&s.WhatsAppLink, validation.Length(0, maxURLLength), is.URL),
		validation.Field(&s.Email, validation.Length(0, 320), is.EmailFormat),
		validation.Field(&s.AboutTextEN, validation.Length(0, maxTextLength)),
		validation.Field(&s.AboutTextPT, validation.Length(0, maxTextLength)),
		validation.Field(&s.AboutImageURL, validation.Length(0, maxURLLength), is.URL),
	))
}

// Validate checks text sizes. The video URL is free-form: a bare video id is
// accepted as well as the usual URL shapes.
func (v *Video) Validate() error {
	return invalid(v.Collection(), validation.ValidateStruct(v,
		validation.Field(&v.YouTubeURL, validation.Length(0, maxURLLength)),
		validation.Field(&v.ThumbnailURL, validation.Length(0, maxURLLength), is.URL),
		validation.Field(&v.TitleEN, validation.Length(0, maxTitleLength)),
		validation.Field(&v.TitlePT, validation.Length(0, maxTitleLength)),
	))
}

func (c *Client) Validate() error {
	return invalid(c.Collection(), validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Length(0, maxTitleLength)),
		validation.Field(&c.PhotoURL, validation.Length(0, maxURLLength), is.URL),
		validation.Field(&c.Subscribers, validation.Length(0, 64)),
		validation.Field(&c.ChannelLink, validation.Length(0, maxURLLength), is.URL),
	))
}

// Validate checks the price only for priced packages; custom packages may
// carry any leftover value.
func (p *PricingPackage) Validate() error {
	return invalid(p.Collection(), validation.ValidateStruct(p,
		validation.Field(&p.NameEN, validation.Length(0, maxTitleLength)),
		validation.Field(&p.NamePT, validation.Length(0, maxTitleLength)),
		validation.Field(&p.DescriptionEN, validation.Length(0, maxTextLength)),
		validation.Field(&p.DescriptionPT, validation.Length(0, maxTextLength)),
		validation.Field(&p.Price, finite, validation.When(!p.IsCustom, validation.Min(0.0))),
		validation.Field(&p.FeaturesEN, validation.Length(0, 50)),
		validation.Field(&p.FeaturesPT, validation.Length(0, 50)),
	))
}

func (f *FAQItem) Validate() error {
	return invalid(f.Collection(), validation.ValidateStruct(f,
		validation.Field(&f.QuestionEN, validation.Length(0, maxTextLength)),
		validation.Field(&f.QuestionPT, validation.Length(0, maxTextLength)),
		validation.Field(&f.AnswerEN, validation.Length(0, maxTextLength)),
		validation.Field(&f.AnswerPT, validation.Length(0, maxTextLength)),
	))
}
