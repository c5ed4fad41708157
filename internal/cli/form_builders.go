package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/charmbracelet/bubbles/runeutil"
	"github.com/charmbracelet/huh"
)

// The form widgets rewrite a value as they load it: the single-line input
// folds tabs and line breaks to spaces, the textarea expands tabs and splits
// CR into its own line break. These sanitizers reproduce that rewrite.
var (
	lineSanitizer = runeutil.NewSanitizer(runeutil.ReplaceTabs(" "), runeutil.ReplaceNewlines(" "))
	textSanitizer = runeutil.NewSanitizer()
)

// widgetText returns s as the widget for f holds it before any keystroke.
func widgetText(f domain.Field, s string) string {
	if f.Kind() == domain.KindDate {
		return string(lineSanitizer.Sanitize([]rune(s)))
	}
	return string(textSanitizer.Sanitize([]rune(s)))
}

// dateInput returns a huh.Input for an optional date field. The value it was
// opened with is always accepted, so a legacy date that does not parse can
// be left alone.
func dateInput(title, initial string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("AAAA-MM-DD").
		Value(value).
		Validate(func(s string) error {
			if s == initial {
				return nil
			}
			return validateOptionalDate(s)
		})
}

// textInput returns a multi-line huh.Text for a free-text field, so line
// breaks in stored text survive the form. Blank clears it.
func textInput(title string, value *string) *huh.Text {
	return huh.NewText().
		Title(title).
		Placeholder("vazio").
		Lines(2).
		ExternalEditor(false).
		Value(value)
}

// validateOptionalDate accepts blank or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return fmt.Errorf("use o formato AAAA-MM-DD")
	}
	return nil
}
