// Package i18n holds the English and Portuguese interface strings of the
// public site and picks a locale for a request.
package i18n

import (
	"strings"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"golang.org/x/text/language"
)

var catalog = map[portfolio.Locale]map[string]string{
	portfolio.LocaleEN: {
		"hero_badge":             "Professional Video Editor",
		"hero_title":             "Professional YouTube Video Editing",
		"hero_subtitle":          "Premium quality editing that drives results for your channel",
		"hero_cta":               "Get Started",
		"long_videos_title":      "Long-Form Videos",
		"shorts_title":           "YouTube Shorts",
		"clients_title":          "Trusted by Top Creators",
		"about_title":            "About Me",
		"about_placeholder":      "Add your story here...",
		"pricing_title":          "Pricing Packages",
		"popular":                "Popular",
		"faq_title":              "Frequently Asked Questions",
		"contact_modal_title":    "Get a Custom Quote",
		"contact_modal_subtitle": "Choose your preferred way to reach out",
		"contact_email":          "Email",
		"contact_whatsapp":       "WhatsApp",
		"contact_whatsapp_hint":  "Chat on WhatsApp",
		"contact_discord":        "Discord",
		"contact_discord_hint":   "Message on Discord",
		"footer_rights":          "All rights reserved.",
		"verified":               "Verified",
		"subscribers":            "subscribers",
		"custom_package":         "Custom",
		"get_quote":              "Get Quote",
		"invalid_url":            "Invalid URL",
		"language_name":          "English",
	},
	portfolio.LocalePT: {
		"hero_badge":             "Editor de Vídeo Profissional",
		"hero_title":             "Edição Profissional de Vídeos para YouTube",
		"hero_subtitle":          "Edição de qualidade premium que gera resultados para seu canal",
		"hero_cta":               "Começar Agora",
		"long_videos_title":      "Vídeos Longos",
		"shorts_title":           "YouTube Shorts",
		"clients_title":          "Confiado por Grandes Criadores",
		"about_title":            "Sobre Mim",
		"about_placeholder":      "Adicione sua história aqui...",
		"pricing_title":          "Pacotes de Preços",
		"popular":                "Popular",
		"faq_title":              "Perguntas Frequentes",
		"contact_modal_title":    "Solicite um Orçamento Personalizado",
		"contact_modal_subtitle": "Escolha sua forma preferida de contato",
		"contact_email":          "Email",
		"contact_whatsapp":       "WhatsApp",
		"contact_whatsapp_hint":  "Conversar no WhatsApp",
		"contact_discord":        "Discord",
		"contact_discord_hint":   "Mensagem no Discord",
		"footer_rights":          "Todos os direitos reservados.",
		"verified":               "Verificado",
		"subscribers":            "inscritos",
		"custom_package":         "Personalizado",
		"get_quote":              "Solicitar Orçamento",
		"invalid_url":            "URL inválida",
		"language_name":          "Português Brasil",
	},
}

// supported is in preference order; the first entry is the fallback.
var supported = []language.Tag{language.English, language.BrazilianPortuguese}

var matcher = language.NewMatcher(supported)

// Translator looks up interface strings.
type Translator struct {
	catalog map[portfolio.Locale]map[string]string
}

// New returns a translator over the built-in catalog.
func New() *Translator {
	return &Translator{catalog: catalog}
}

// T returns the string for key in locale l. Unknown locales use English and
// unknown keys come back unchanged.
func (t *Translator) T(l portfolio.Locale, key string) string {
	strs, ok := t.catalog[l]
	if !ok {
		strs = t.catalog[portfolio.LocaleEN]
	}
	if s, ok := strs[key]; ok && s != "" {
		return s
	}
	return key
}

// Keys returns every key defined for l.
func (t *Translator) Keys(l portfolio.Locale) []string {
	keys := make([]string, 0, len(t.catalog[l]))
	for k := range t.catalog[l] {
		keys = append(keys, k)
	}
	return keys
}

// ParseLocale accepts "en" or "pt" (case-insensitive, region ignored).
func ParseLocale(s string) (portfolio.Locale, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return portfolio.LocaleEN, true
	case "pt":
		return portfolio.LocalePT, true
	}
	return "", false
}

// Negotiate picks a locale from an Accept-Language header, defaulting to English.
func Negotiate(acceptLanguage string) portfolio.Locale {
	if acceptLanguage == "" {
		return portfolio.LocaleEN
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return portfolio.LocaleEN
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		for _, tag := range tags {
			if l, ok := ParseLocale(tag.String()); ok {
				return l
			}
		}
		return portfolio.LocaleEN
	}
	if supported[index] == language.BrazilianPortuguese {
		return portfolio.LocalePT
	}
	return portfolio.LocaleEN
}
