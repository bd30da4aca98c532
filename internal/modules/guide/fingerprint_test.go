package guide

import (
	"errors"
	"testing"

	"github.com/berea-app/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFingerprinter() *Fingerprinter {
	return NewFingerprinter([]string{"en", "es", "pt"})
}

func TestDeriveEquivalentSpellings(t *testing.T) {
	fp := newTestFingerprinter()

	a, err := fp.Derive(models.GuideInputScripture, "John 3:16", "en")
	require.NoError(t, err)
	b, err := fp.Derive(models.GuideInputScripture, "  john   3:16  ", "en")
	require.NoError(t, err)
	c, err := fp.Derive(models.GuideInputScripture, "JOHN\t3:16", "en-US")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Len(t, a.Hash, 64)
	assert.Equal(t, "en", a.Lang)
}

func TestDeriveDistinguishesAxes(t *testing.T) {
	fp := newTestFingerprinter()

	scripture, err := fp.Derive(models.GuideInputScripture, "grace", "en")
	require.NoError(t, err)
	topic, err := fp.Derive(models.GuideInputTopic, "grace", "en")
	require.NoError(t, err)
	spanish, err := fp.Derive(models.GuideInputTopic, "grace", "es")
	require.NoError(t, err)

	// Same normalized value hashes identically; type and lang separate the
	// composite key, not the hash.
	assert.Equal(t, scripture.Hash, topic.Hash)
	assert.NotEqual(t, scripture.InputType, topic.InputType)
	assert.NotEqual(t, topic.Lang, spanish.Lang)
}

func TestDeriveRejectsBadInput(t *testing.T) {
	fp := newTestFingerprinter()

	cases := []struct {
		name      string
		inputType models.GuideInputType
		value     string
		lang      string
	}{
		{"unknown type", "sermon", "John 3:16", "en"},
		{"empty value", models.GuideInputTopic, "", "en"},
		{"whitespace value", models.GuideInputTopic, "   \t\n", "en"},
		{"unsupported language", models.GuideInputTopic, "hope", "xx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fp.Derive(tc.inputType, tc.value, tc.lang)
			assert.True(t, errors.Is(err, ErrInvalidInput), "want ErrInvalidInput, got %v", err)
		})
	}
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en", NormalizeLanguage(""))
	assert.Equal(t, "en", NormalizeLanguage("EN-us"))
	assert.Equal(t, "pt", NormalizeLanguage("pt-BR"))
	assert.Equal(t, "es", NormalizeLanguage(" es , en "))
}
