package postgres

import (
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// codec maps one collection onto its table. fields returns pointers to the
// writable columns in the order of columns; id and the timestamp column are
// handled separately because the database assigns them.
type codec struct {
	table   string
	columns []string
	stamp   string
	ordered bool
	fields  func(r portfolio.Record) []any
}

var videoColumns = []string{"youtube_url", "thumbnail_url", "title_en", "title_pt", "order_index", "is_active"}

func videoFields(r portfolio.Record) []any {
	v := r.(*portfolio.Video)
	return []any{&v.YouTubeURL, &v.ThumbnailURL, &v.TitleEN, &v.TitlePT, &v.OrderIndex, &v.IsActive}
}

var codecs = map[portfolio.Collection]codec{
	portfolio.CollectionSettings: {
		table: "portfolio_settings",
		columns: []string{
			"discord_link", "whatsapp_link", "email", "about_text_en", "about_text_pt", "about_image_url",
			"show_long_videos", "show_shorts", "show_clients", "show_about", "show_pricing", "show_faq",
		},
		stamp: "updated_at",
		fields: func(r portfolio.Record) []any {
			s := r.(*portfolio.Settings)
			return []any{
				&s.DiscordLink, &s.WhatsAppLink, &s.Email, &s.AboutTextEN, &s.AboutTextPT, &s.AboutImageURL,
				&s.ShowLongVideos, &s.ShowShorts, &s.ShowClients, &s.ShowAbout, &s.ShowPricing, &s.ShowFAQ,
			}
		},
	},
	portfolio.CollectionLongVideos: {table: "long_videos", columns: videoColumns, stamp: "created_at", ordered: true, fields: videoFields},
	portfolio.CollectionShorts:     {table: "shorts", columns: videoColumns, stamp: "created_at", ordered: true, fields: videoFields},
	portfolio.CollectionClients: {
		table:   "clients",
		columns: []string{"name", "photo_url", "subscribers", "channel_link", "is_verified", "order_index", "is_active"},
		stamp:   "created_at",
		ordered: true,
		fields: func(r portfolio.Record) []any {
			c := r.(*portfolio.Client)
			return []any{&c.Name, &c.PhotoURL, &c.Subscribers, &c.ChannelLink, &c.IsVerified, &c.OrderIndex, &c.IsActive}
		},
	},
	portfolio.CollectionPricing: {
		table: "pricing_packages",
		columns: []string{
			"name_en", "name_pt", "description_en", "description_pt", "price",
			"features_en", "features_pt", "is_custom", "order_index", "is_active",
		},
		stamp:   "created_at",
		ordered: true,
		fields: func(r portfolio.Record) []any {
			p := r.(*portfolio.PricingPackage)
			if p.FeaturesEN == nil {
				p.FeaturesEN = []string{}
			}
			if p.FeaturesPT == nil {
				p.FeaturesPT = []string{}
			}
			return []any{
				&p.NameEN, &p.NamePT, &p.DescriptionEN, &p.DescriptionPT, &p.Price,
				&p.FeaturesEN, &p.FeaturesPT, &p.IsCustom, &p.OrderIndex, &p.IsActive,
			}
		},
	},
	portfolio.CollectionFAQ: {
		table:   "faq_items",
		columns: []string{"question_en", "question_pt", "answer_en", "answer_pt", "order_index", "is_active"},
		stamp:   "created_at",
		ordered: true,
		fields: func(r portfolio.Record) []any {
			f := r.(*portfolio.FAQItem)
			return []any{&f.QuestionEN, &f.QuestionPT, &f.AnswerEN, &f.AnswerPT, &f.OrderIndex, &f.IsActive}
		},
	},
}

func codecFor(c portfolio.Collection) (codec, error) {
	cd, ok := codecs[c]
	if !ok {
		return codec{}, portfolio.ErrUnknownCollection
	}
	return cd, nil
}

// dest returns scan targets in select-list order: id, columns, stamp.
func dest(cd codec, r portfolio.Record, id, stamp any) []any {
	out := make([]any, 0, len(cd.columns)+2)
	out = append(out, id)
	out = append(out, cd.fields(r)...)
	return append(out, stamp)
}
