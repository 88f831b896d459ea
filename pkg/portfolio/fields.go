package portfolio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SetField assigns a form value to one field of r, coercing the string to the
// field's type. Blank numeric input becomes zero; any other unparsable number
// or boolean is rejected with ErrInvalidField and r is left untouched. Feature
// lists are entered one item per line. Editing a video URL refreshes the
// derived thumbnail URL.
func SetField(r Record, field, value string) error {
	var err error
	switch v := r.(type) {
	case *Settings:
		err = setSettingsField(v, field, value)
	case *Video:
		err = setVideoField(v, field, value)
	case *Client:
		err = setClientField(v, field, value)
	case *PricingPackage:
		err = setPricingField(v, field, value)
	case *FAQItem:
		err = setFAQField(v, field, value)
	default:
		err = fmt.Errorf("%w: unsupported record type %T", ErrInvalidField, r)
	}
	return err
}

func unknownField(c Collection, field string) error {
	return fmt.Errorf("%w: %s has no field %q", ErrInvalidField, c, field)
}

func setSettingsField(s *Settings, field, value string) error {
	switch field {
	case "discord_link":
		s.DiscordLink = value
	case "whatsapp_link":
		s.WhatsAppLink = value
	case "email":
		s.Email = strings.TrimSpace(value)
	case "about_text_en":
		s.AboutTextEN = value
	case "about_text_pt":
		s.AboutTextPT = value
	case "about_image_url":
		s.AboutImageURL = value
	case "show_long_videos", "show_shorts", "show_clients", "show_about", "show_pricing", "show_faq":
		b, err := parseBool(field, value)
		if err != nil {
			return err
		}
		switch field {
		case "show_long_videos":
			s.ShowLongVideos = b
		case "show_shorts":
			s.ShowShorts = b
		case "show_clients":
			s.ShowClients = b
		case "show_about":
			s.ShowAbout = b
		case "show_pricing":
			s.ShowPricing = b
		case "show_faq":
			s.ShowFAQ = b
		}
	default:
		return unknownField(s.Collection(), field)
	}
	return nil
}

func setVideoField(v *Video, field, value string) error {
	switch field {
	case "youtube_url":
		v.YouTubeURL = strings.TrimSpace(value)
		v.ThumbnailURL = ThumbnailURL(v.YouTubeURL)
	case "thumbnail_url":
		v.ThumbnailURL = value
	case "title_en":
		v.TitleEN = value
	case "title_pt":
		v.TitlePT = value
	case "order_index":
		return assignInt(&v.OrderIndex, field, value)
	case "is_active":
		return assignBool(&v.IsActive, field, value)
	default:
		return unknownField(v.Collection(), field)
	}
	return nil
}

func setClientField(c *Client, field, value string) error {
	switch field {
	case "name":
		c.Name = value
	case "photo_url":
		c.PhotoURL = value
	case "subscribers":
		c.Subscribers = value
	case "channel_link":
		c.ChannelLink = value
	case "is_verified":
		return assignBool(&c.IsVerified, field, value)
	case "order_index":
		return assignInt(&c.OrderIndex, field, value)
	case "is_active":
		return assignBool(&c.IsActive, field, value)
	default:
		return unknownField(c.Collection(), field)
	}
	return nil
}

func setPricingField(p *PricingPackage, field, value string) error {
	switch field {
	case "name_en":
		p.NameEN = value
	case "name_pt":
		p.NamePT = value
	case "description_en":
		p.DescriptionEN = value
	case "description_pt":
		p.DescriptionPT = value
	case "price":
		f, err := parseFloat(field, value)
		if err != nil {
			return err
		}
		p.Price = f
	case "features_en":
		p.FeaturesEN = SplitLines(value)
	case "features_pt":
		p.FeaturesPT = SplitLines(value)
	case "is_custom":
		return assignBool(&p.IsCustom, field, value)
	case "order_index":
		return assignInt(&p.OrderIndex, field, value)
	case "is_active":
		return assignBool(&p.IsActive, field, value)
	default:
		return unknownField(p.Collection(), field)
	}
	return nil
}

func setFAQField(f *FAQItem, field, value string) error {
	switch field {
	case "question_en":
		f.QuestionEN = value
	case "question_pt":
		f.QuestionPT = value
	case "answer_en":
		f.AnswerEN = value
	case "answer_pt":
		f.AnswerPT = value
	case "order_index":
		return assignInt(&f.OrderIndex, field, value)
	case "is_active":
		return assignBool(&f.IsActive, field, value)
	default:
		return unknownField(f.Collection(), field)
	}
	return nil
}

// SplitLines turns a textarea value into a list, one entry per non-blank line.
func SplitLines(value string) []string {
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func assignInt(dst *int, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*dst = 0
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be a whole number, got %q", ErrInvalidField, field, value)
	}
	*dst = n
	return nil
}

func assignBool(dst *bool, field, value string) error {
	b, err := parseBool(field, value)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func parseFloat(field, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidField, field, value)
	}
	return f, nil
}

func parseBool(field, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "yes":
		return true, nil
	case "", "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false, got %q", ErrInvalidField, field, value)
	}
	return b, nil
}

var editableFields = map[Collection][]string{
	CollectionSettings: {
		"email", "whatsapp_link", "discord_link", "about_text_en", "about_text_pt", "about_image_url",
		"show_long_videos", "show_shorts", "show_clients", "show_about", "show_pricing", "show_faq",
	},
	CollectionLongVideos: {"youtube_url", "thumbnail_url", "title_en", "title_pt", "order_index", "is_active"},
	CollectionShorts:     {"youtube_url", "thumbnail_url", "title_en", "title_pt", "order_index", "is_active"},
	CollectionClients:    {"name", "photo_url", "subscribers", "channel_link", "is_verified", "order_index", "is_active"},
	CollectionPricing: {
		"name_en", "name_pt", "description_en", "description_pt", "price",
		"features_en", "features_pt", "is_custom", "order_index", "is_active",
	},
	CollectionFAQ: {"question_en", "question_pt", "answer_en", "answer_pt", "order_index", "is_active"},
}

// Fields lists the fields SetField accepts for c, in form order.
func Fields(c Collection) []string {
	return append([]string(nil), editableFields[c]...)
}

// FieldValue renders one field of r as form text, the inverse of SetField.
// Feature lists come back one item per line.
func FieldValue(r Record, field string) (string, error) {
	var v any
	switch rec := r.(type) {
	case *Settings:
		v = map[string]any{
			"email": rec.Email, "whatsapp_link": rec.WhatsAppLink, "discord_link": rec.DiscordLink,
			"about_text_en": rec.AboutTextEN, "about_text_pt": rec.AboutTextPT, "about_image_url": rec.AboutImageURL,
			"show_long_videos": rec.ShowLongVideos, "show_shorts": rec.ShowShorts, "show_clients": rec.ShowClients,
			"show_about": rec.ShowAbout, "show_pricing": rec.ShowPricing, "show_faq": rec.ShowFAQ,
		}[field]
	case *Video:
		v = map[string]any{
			"youtube_url": rec.YouTubeURL, "thumbnail_url": rec.ThumbnailURL, "title_en": rec.TitleEN,
			"title_pt": rec.TitlePT, "order_index": rec.OrderIndex, "is_active": rec.IsActive,
		}[field]
	case *Client:
		v = map[string]any{
			"name": rec.Name, "photo_url": rec.PhotoURL, "subscribers": rec.Subscribers, "channel_link": rec.ChannelLink,
			"is_verified": rec.IsVerified, "order_index": rec.OrderIndex, "is_active": rec.IsActive,
		}[field]
	case *PricingPackage:
		v = map[string]any{
			"name_en": rec.NameEN, "name_pt": rec.NamePT, "description_en": rec.DescriptionEN,
			"description_pt": rec.DescriptionPT, "price": rec.Price, "features_en": rec.FeaturesEN,
			"features_pt": rec.FeaturesPT, "is_custom": rec.IsCustom, "order_index": rec.OrderIndex, "is_active": rec.IsActive,
		}[field]
	case *FAQItem:
		v = map[string]any{
			"question_en": rec.QuestionEN, "question_pt": rec.QuestionPT, "answer_en": rec.AnswerEN,
			"answer_pt": rec.AnswerPT, "order_index": rec.OrderIndex, "is_active": rec.IsActive,
		}[field]
	default:
		return "", fmt.Errorf("%w: unsupported record type %T", ErrInvalidField, r)
	}

	switch val := v.(type) {
	case nil:
		return "", unknownField(r.Collection(), field)
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []string:
		return strings.Join(val, "\n"), nil
	}
	return fmt.Sprint(v), nil
}
