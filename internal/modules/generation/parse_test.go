package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadPlainJSON(t *testing.T) {
	p, err := parsePayload(`{
		"summary": "  God's love for the world. ",
		"interpretation": "An exposition.",
		"related_refs": ["Romans 5:8", "  "],
		"reflection_prompts": ["  Where do you see this? "],
		"application_points": []
	}`)
	require.NoError(t, err)
	assert.Equal(t, "God's love for the world.", p.Summary)
	assert.Equal(t, []string{"Romans 5:8"}, p.RelatedRefs)
	assert.Equal(t, []string{"Where do you see this?"}, p.ReflectionPrompts)
	assert.Empty(t, p.ApplicationPoints)
}

func TestParsePayloadCodeFence(t *testing.T) {
	p, err := parsePayload("```json\n{\"summary\": \"fenced\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "fenced", p.Summary)
}

func TestParsePayloadSurroundingProse(t *testing.T) {
	p, err := parsePayload("Here is your study guide:\n{\"summary\": \"embedded\"}\nHope this helps!")
	require.NoError(t, err)
	assert.Equal(t, "embedded", p.Summary)
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	_, err := parsePayload("I cannot produce JSON today.")
	assert.Error(t, err)
}

func TestParsePayloadRejectsEmptySummary(t *testing.T) {
	_, err := parsePayload(`{"summary": "   ", "interpretation": "x"}`)
	assert.Error(t, err)
}
