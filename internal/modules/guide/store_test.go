package guide

import (
	"context"
	"testing"

	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/modules/generation"
	"github.com/berea-app/core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFingerprint(t *testing.T, value string) Fingerprint {
	t.Helper()
	fp, err := newTestFingerprinter().Derive(models.GuideInputScripture, value, "en")
	require.NoError(t, err)
	return fp
}

func testPayload(summary string) generation.Payload {
	return generation.Payload{
		Summary:           summary,
		Interpretation:    "a longer interpretation",
		RelatedRefs:       []string{"Romans 5:8"},
		ReflectionPrompts: []string{"What stands out to you?"},
		ApplicationPoints: []string{"Share with a friend"},
	}
}

func TestStoreInsertAndLookup(t *testing.T) {
	db := testutil.OpenDB(t)
	store := NewStore(db)
	ctx := context.Background()
	fp := testFingerprint(t, "John 3:16")

	missing, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := store.Insert(ctx, fp, testPayload("God so loved the world"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	found, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "God so loved the world", found.Summary)
	assert.Equal(t, models.StringArray{"Romans 5:8"}, found.RelatedRefs)

	byID, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.ID, byID.ID)
}

func TestStoreInsertConflict(t *testing.T) {
	db := testutil.OpenDB(t)
	store := NewStore(db)
	ctx := context.Background()
	fp := testFingerprint(t, "Psalm 23")

	_, err := store.Insert(ctx, fp, testPayload("first writer wins"))
	require.NoError(t, err)

	_, err = store.Insert(ctx, fp, testPayload("second writer loses"))
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.StudyGuideModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// First row stays canonical.
	g, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "first writer wins", g.Summary)
}

func TestStoreSameHashDifferentLang(t *testing.T) {
	db := testutil.OpenDB(t)
	store := NewStore(db)
	ctx := context.Background()

	en := testFingerprint(t, "Psalm 23")
	es := en
	es.Lang = "es"

	_, err := store.Insert(ctx, en, testPayload("english"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, es, testPayload("spanish"))
	require.NoError(t, err, "different lang must not conflict")
}
