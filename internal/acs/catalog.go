package acs

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Catalog localizes print-builder string-table entries that are registered
// as message IDs rather than literal text, so the same compiled Program
// prints in the player's configured language. This is additive to
// Program.Strings: an entry only goes through the catalog if its text
// carries the "msg:" prefix (see WithCatalog); ids never passed to
// Register come back unchanged.
type Catalog struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
}

// NewCatalog creates a catalog defaulting to lang, falling back to English
// for unresolved message ids.
func NewCatalog(lang language.Tag) *Catalog {
	bundle := i18n.NewBundle(language.English)
	return &Catalog{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, lang.String(), language.English.String()),
	}
}

// Register adds one message id -> default translation pair to the catalog.
func (c *Catalog) Register(id, defaultMessage string) {
	c.bundle.AddMessages(language.English, &i18n.Message{ID: id, Other: defaultMessage})
}

// Localize resolves a message id to its localized text; unresolved ids
// return the id itself so a missing catalog entry never crashes the print
// builder, only looks unlocalized.
func (c *Catalog) Localize(id string) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}

// WithCatalog attaches cat to a System so OpPrintString resolves string-
// table entries prefixed "msg:" through the catalog instead of treating
// them as literal text.
func (s *System) WithCatalog(cat *Catalog) *System {
	s.catalog = cat
	return s
}
