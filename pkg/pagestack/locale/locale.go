// Package locale renders navigation outcomes as user-facing text.
package locale

import (
	"embed"
	"errors"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/navigation"
)

//go:embed messages/*.toml
var messageFiles embed.FS

var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

// Translator localizes navigation errors and modes into one language.
type Translator struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

// New creates a translator for the best supported match of the requested
// languages (BCP 47 tags such as "de-AT"). Unknown or empty input falls back
// to English.
func New(langs ...string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := messageFiles.ReadDir("messages")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(messageFiles, path.Join("messages", e.Name())); err != nil {
			return nil, err
		}
	}

	tag := Match(langs...)
	return &Translator{
		tag:       tag,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
	}, nil
}

// Match returns the supported language closest to the requested ones.
func Match(langs ...string) language.Tag {
	var tags []language.Tag
	for _, l := range langs {
		if t, err := language.Parse(l); err == nil {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return language.English
	}
	_, index, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[index]
}

// Supported lists the languages with message files.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Language returns the language this translator renders in.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// Describe returns a short message for a navigation outcome. A nil error has
// no message.
func (t *Translator) Describe(err error) string {
	if err == nil {
		return ""
	}

	var guardErr *navigation.GuardError
	switch {
	case errors.Is(err, navigation.ErrCancelled):
		return t.localize("NavigationCancelled", nil)
	case errors.Is(err, navigation.ErrBusy):
		return t.localize("NavigationBusy", nil)
	case errors.Is(err, navigation.ErrUnavailable):
		return t.localize("NavigationUnavailable", nil)
	case errors.Is(err, navigation.ErrUnknownPage):
		return t.localize("UnknownPage", nil)
	case errors.Is(err, navigation.ErrRemoveCurrent):
		return t.localize("RemoveCurrent", nil)
	case errors.Is(err, navigation.ErrIndexOutOfRange):
		return t.localize("IndexOutOfRange", nil)
	case errors.Is(err, navigation.ErrCorruptSession):
		return t.localize("CorruptSession", nil)
	case errors.As(err, &guardErr):
		if guardErr.TypeKey == "" {
			return t.localize("GuardFailed", nil)
		}
		return t.localize("PageFailed", map[string]any{"Page": string(guardErr.TypeKey)})
	default:
		return t.localize("NavigationFailed", map[string]any{"Error": err.Error()})
	}
}

// ModeName returns the localized label for a navigation mode.
func (t *Translator) ModeName(m navigation.Mode) string {
	switch m {
	case navigation.ModeNew:
		return t.localize("ModeNew", nil)
	case navigation.ModeBack:
		return t.localize("ModeBack", nil)
	case navigation.ModeForward:
		return t.localize("ModeForward", nil)
	case navigation.ModeRefresh:
		return t.localize("ModeRefresh", nil)
	default:
		return m.String()
	}
}

func (t *Translator) localize(id string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
