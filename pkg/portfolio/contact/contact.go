// Package contact builds the contact channels offered on the public site and
// converts WhatsApp links to and from the dialing-code and number pair the
// admin edits.
package contact

import (
	"net/url"
	"sort"
	"strings"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// DefaultDDI is the dialing code preselected for a new number (Brazil).
const DefaultDDI = "55"

// Country is one entry of the dialing code picker.
type Country struct {
	Code string // ISO 3166-1 alpha-2
	Name string
	DDI  string
}

// Countries lists the supported dialing codes sorted by name.
var Countries = []Country{
	{"BR", "Brazil", "55"},
	{"FR", "France", "33"},
	{"DE", "Germany", "49"},
	{"IT", "Italy", "39"},
	{"JP", "Japan", "81"},
	{"PT", "Portugal", "351"},
	{"ES", "Spain", "34"},
	{"GB", "United Kingdom", "44"},
	{"US", "United States", "1"},
}

// ddisByLength holds the known codes longest first for prefix matching.
var ddisByLength = func() []string {
	out := make([]string, len(Countries))
	for i, c := range Countries {
		out[i] = c.DDI
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}()

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ComposeWhatsAppLink returns https://wa.me/<digits> for the dialing code and
// national number, or "" when neither carries a digit.
func ComposeWhatsAppLink(ddi, number string) string {
	digits := Digits(ddi + number)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}

// SplitWhatsAppLink recovers the dialing code and national number from a
// wa.me link. The longest known dialing code that prefixes the digits wins;
// unknown codes fall back to the first two digits. An empty or unparsable link
// yields the default code and an empty number.
func SplitWhatsAppLink(link string) (ddi, number string) {
	if strings.TrimSpace(link) == "" {
		return DefaultDDI, ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return DefaultDDI, ""
	}
	full := Digits(u.Path)
	if full == "" {
		full = Digits(u.Query().Get("phone"))
	}
	if full == "" {
		return DefaultDDI, ""
	}

	for _, code := range ddisByLength {
		if strings.HasPrefix(full, code) && len(full) > len(code) {
			return code, full[len(code):]
		}
	}
	if len(full) <= 2 {
		return full, ""
	}
	return full[:2], full[2:]
}

// Kind identifies a contact channel.
type Kind string

const (
	KindEmail    Kind = "email"
	KindWhatsApp Kind = "whatsapp"
	KindDiscord  Kind = "discord"
)

// Channel is one way to reach the editor.
type Channel struct {
	Kind Kind
	// LabelKey and HintKey are translation keys
	LabelKey string
	HintKey  string
	Value    string
	Href     string
	// External channels open in a new tab
	External bool
}

// Channels returns the channels configured in settings, in display order.
// Channels without a value are omitted; nil settings yield none.
func Channels(s *portfolio.Settings) []Channel {
	if s == nil {
		return nil
	}
	var out []Channel
	if email := strings.TrimSpace(s.Email); email != "" {
		out = append(out, Channel{
			Kind:     KindEmail,
			LabelKey: "contact_email",
			Value:    email,
			Href:     "mailto:" + email,
		})
	}
	if link := strings.TrimSpace(s.WhatsAppLink); link != "" {
		out = append(out, Channel{
			Kind:     KindWhatsApp,
			LabelKey: "contact_whatsapp",
			HintKey:  "contact_whatsapp_hint",
			Value:    link,
			Href:     link,
			External: true,
		})
	}
	if link := strings.TrimSpace(s.DiscordLink); link != "" {
		out = append(out, Channel{
			Kind:     KindDiscord,
			LabelKey: "contact_discord",
			HintKey:  "contact_discord_hint",
			Value:    link,
			Href:     link,
			External: true,
		})
	}
	return out
}
