package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localesFS embed.FS

// Supported interface languages.
const (
	LangUzbek   = "uz"
	LangEnglish = "en"
)

// Localizer handles translation for different languages.
type Localizer struct {
	translations map[string]map[string]string
	fallback     string
	mu           sync.RWMutex
}

// NewLocalizer creates a new Localizer instance and loads all translations.
// Missing keys fall back to the fallback language, then to English.
func NewLocalizer(fallback string) (*Localizer, error) {
	locale := &Localizer{
		translations: make(map[string]map[string]string),
		fallback:     fallback,
	}

	for _, lang := range []string{LangUzbek, LangEnglish} {
		if err := locale.loadLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	if _, ok := locale.translations[fallback]; !ok {
		return nil, fmt.Errorf("unsupported fallback language %q", fallback)
	}

	return locale, nil
}

// loadLanguage loads translations for a specific language from embedded JSON files.
func (l *Localizer) loadLanguage(lang string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read locale file %s: %w", filename, err)
	}

	var translations map[string]string
	if err = json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal locale file %s: %w", filename, err)
	}

	l.mu.Lock()
	l.translations[lang] = translations
	l.mu.Unlock()

	return nil
}

// Get returns the translation for the given key in the specified language.
// If the translation is not found, it returns the key itself.
func (l *Localizer) Get(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, candidate := range []string{lang, l.fallback, LangEnglish} {
		if translation, ok := l.translations[candidate][key]; ok {
			return translation
		}
	}

	return key
}

// GetWithData returns the translation for the given key with {placeholder} replacement.
// Example: GetWithData("en", "admin.faculty_added", map[string]any{"name": "Math"}).
func (l *Localizer) GetWithData(lang, key string, data map[string]any) string {
	translation := l.Get(lang, key)
	if len(data) == 0 {
		return translation
	}

	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}

	return strings.NewReplacer(pairs...).Replace(translation)
}

// NormalizeLanguageCode maps Telegram language codes to a supported language.
// Unknown or empty codes resolve to def.
func NormalizeLanguageCode(telegramLang, def string) string {
	const langCodeShortLength = 2
	if len(telegramLang) < langCodeShortLength {
		return def
	}

	switch strings.ToLower(telegramLang[:langCodeShortLength]) {
	case LangUzbek:
		return LangUzbek
	case LangEnglish:
		return LangEnglish
	default:
		return def
	}
}
