package player

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinNameLength = 3
	MaxNameLength = 20
)

var ErrInvalidName = errors.New("invalid username")

// NormalizeName checks a requested username and returns its display form
// and the key it is stored and looked up under.
func NormalizeName(raw string) (display string, key string, err error) {
	n := utf8.RuneCountInString(raw)
	if n < MinNameLength || n > MaxNameLength {
		return "", "", ErrInvalidName
	}
	for _, r := range raw {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return "", "", ErrInvalidName
		}
	}
	return cases.Title(language.English).String(raw), cases.Fold().String(raw), nil
}
