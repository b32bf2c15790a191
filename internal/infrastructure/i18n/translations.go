package i18n

import (
	"embed"
	"fmt"
	"log"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"eventboard/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.en.toml", "active.fr.toml"}

var _ output.T = (*Translator)(nil)

// Translator renders bot messages from the embedded go-i18n bundles.
type Translator struct {
	bundle   *i18n.Bundle
	fallback language.Tag
	matcher  language.Matcher

	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

// NewTranslator loads the embedded message files. defaultLocale ("en", "fr")
// is used when a requested locale has no translation for a key.
func NewTranslator(defaultLocale string) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: locale %q: %w", defaultLocale, err)
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", file, err)
		}
	}
	return &Translator{
		bundle:     bundle,
		fallback:   tag,
		matcher:    language.NewMatcher(bundle.LanguageTags()),
		localizers: make(map[string]*i18n.Localizer),
	}, nil
}

// Supported reports whether locale resolves to one of the loaded languages.
func (t *Translator) Supported(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	_, _, confidence := t.matcher.Match(tag)
	return confidence >= language.High
}

// T renders key for locale. Unknown keys come back as the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		log.Printf("⚠️ i18n: %s (locale=%s): %v", key, locale, err)
		return key
	}
	return msg
}

func (t *Translator) localizer(locale string) *i18n.Localizer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.localizers[locale]; ok {
		return l
	}
	l := i18n.NewLocalizer(t.bundle, locale, t.fallback.String())
	t.localizers[locale] = l
	return l
}
