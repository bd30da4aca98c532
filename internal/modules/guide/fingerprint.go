package guide

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/berea-app/core/internal/models"
)

// Fingerprint is the derived cache identity of one semantic input. The hash
// covers only the normalized value; input type and language stay alongside it
// as separate columns of the composite key.
type Fingerprint struct {
	InputType models.GuideInputType
	Hash      string
	Lang      string
}

// Fingerprinter validates and normalizes content requests into fingerprints.
type Fingerprinter struct {
	languages map[string]struct{}
}

func NewFingerprinter(languages []string) *Fingerprinter {
	set := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		set[strings.ToLower(strings.TrimSpace(lang))] = struct{}{}
	}
	return &Fingerprinter{languages: set}
}

// Derive computes the stable fingerprint for a content request.
// "John 3:16" and " john  3:16 " land on the same hash.
func (f *Fingerprinter) Derive(inputType models.GuideInputType, rawValue, lang string) (Fingerprint, error) {
	switch inputType {
	case models.GuideInputScripture, models.GuideInputTopic:
	default:
		return Fingerprint{}, fmt.Errorf("%w: unrecognized input type %q", ErrInvalidInput, inputType)
	}

	normalized := NormalizeInput(rawValue)
	if normalized == "" {
		return Fingerprint{}, fmt.Errorf("%w: input value is empty", ErrInvalidInput)
	}

	code := NormalizeLanguage(lang)
	if _, ok := f.languages[code]; !ok {
		return Fingerprint{}, fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, lang)
	}

	sum := sha256.Sum256([]byte(normalized))
	return Fingerprint{
		InputType: inputType,
		Hash:      fmt.Sprintf("%x", sum),
		Lang:      code,
	}, nil
}

// NormalizeInput lowercases, trims, and collapses internal whitespace.
func NormalizeInput(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// NormalizeLanguage reduces a locale code to its lowercase primary subtag,
// so "en-US" and "en" are the same language. Empty input defaults to "en".
func NormalizeLanguage(lang string) string {
	code := strings.TrimSpace(strings.ToLower(lang))
	if idx := strings.Index(code, ","); idx >= 0 {
		code = strings.TrimSpace(code[:idx])
	}
	if idx := strings.Index(code, "-"); idx >= 0 {
		code = strings.TrimSpace(code[:idx])
	}
	if code == "" {
		return "en"
	}
	return code
}
