package guide

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/berea-app/core/internal/config"
	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/modules/generation"
	"github.com/berea-app/core/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testGuideConfig() config.GuideConfig {
	return config.GuideConfig{
		RetentionHours: 24,
		SweepMinutes:   60,
		Languages:      []string{"en", "es"},
	}
}

func countingGenerate(calls *atomic.Int32) GenerateFunc {
	return func(ctx context.Context, inputType models.GuideInputType, rawValue, lang string) (*generation.Payload, error) {
		calls.Add(1)
		p := testPayload("summary for " + rawValue)
		return &p, nil
	}
}

func newTestService(t *testing.T, db *gorm.DB, generate GenerateFunc) *Service {
	t.Helper()
	return NewService(db, testGuideConfig(), generate, nil)
}

func TestGetOrGenerateCachesAcrossPrincipals(t *testing.T) {
	db := testutil.OpenDB(t)
	var calls atomic.Int32
	svc := newTestService(t, db, countingGenerate(&calls))
	ctx := context.Background()

	alice := UserPrincipal(uuid.NewString())
	bob := UserPrincipal(uuid.NewString())
	visitor := AnonymousPrincipal(uuid.NewString())

	first, err := svc.GetOrGenerate(ctx, alice, models.GuideInputScripture, "John 3:16", "en")
	require.NoError(t, err)

	// Equivalent spellings and other principals all land on the cached row.
	second, err := svc.GetOrGenerate(ctx, bob, models.GuideInputScripture, "  JOHN  3:16 ", "en-US")
	require.NoError(t, err)
	third, err := svc.GetOrGenerate(ctx, visitor, models.GuideInputScripture, "john 3:16", "en")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, int32(1), calls.Load())

	var guides int64
	require.NoError(t, db.Model(&models.StudyGuideModel{}).Count(&guides).Error)
	assert.Equal(t, int64(1), guides)

	var userLinks, anonLinks int64
	require.NoError(t, db.Model(&models.UserStudyGuideModel{}).Count(&userLinks).Error)
	require.NoError(t, db.Model(&models.AnonStudyGuideModel{}).Count(&anonLinks).Error)
	assert.Equal(t, int64(2), userLinks)
	assert.Equal(t, int64(1), anonLinks)
}

func TestGetOrGenerateConcurrentMisses(t *testing.T) {
	db := testutil.OpenDB(t)
	var calls atomic.Int32
	slowGenerate := func(ctx context.Context, inputType models.GuideInputType, rawValue, lang string) (*generation.Payload, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		p := testPayload("generated once")
		return &p, nil
	}
	svc := newTestService(t, db, slowGenerate)

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := svc.GetOrGenerate(context.Background(), UserPrincipal(uuid.NewString()), models.GuideInputTopic, "forgiveness", "en")
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = g.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent misses must share one generation")

	var guides, links int64
	require.NoError(t, db.Model(&models.StudyGuideModel{}).Count(&guides).Error)
	require.NoError(t, db.Model(&models.UserStudyGuideModel{}).Count(&links).Error)
	assert.Equal(t, int64(1), guides)
	assert.Equal(t, int64(workers), links)
}

func TestGetOrGenerateFailureCachesNothing(t *testing.T) {
	db := testutil.OpenDB(t)
	boom := errors.New("model overloaded")
	svc := newTestService(t, db, func(ctx context.Context, inputType models.GuideInputType, rawValue, lang string) (*generation.Payload, error) {
		return nil, boom
	})

	_, err := svc.GetOrGenerate(context.Background(), UserPrincipal(uuid.NewString()), models.GuideInputTopic, "patience", "en")
	assert.ErrorIs(t, err, boom)

	var guides, links int64
	require.NoError(t, db.Model(&models.StudyGuideModel{}).Count(&guides).Error)
	require.NoError(t, db.Model(&models.UserStudyGuideModel{}).Count(&links).Error)
	assert.Zero(t, guides, "failed generations must not be cached")
	assert.Zero(t, links)

	// A later retry generates fresh.
	var calls atomic.Int32
	svc.generate = countingGenerate(&calls)
	_, err = svc.GetOrGenerate(context.Background(), UserPrincipal(uuid.NewString()), models.GuideInputTopic, "patience", "en")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrGenerateCancelledCallerKeepsCacheSkipsLink(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	svc := newTestService(t, db, func(gctx context.Context, inputType models.GuideInputType, rawValue, lang string) (*generation.Payload, error) {
		// Caller walks away mid-generation. The detached context keeps the
		// generation alive so the cache still gets filled.
		cancel()
		require.NoError(t, gctx.Err())
		p := testPayload("finished anyway")
		return &p, nil
	})

	_, err := svc.GetOrGenerate(ctx, UserPrincipal(uuid.NewString()), models.GuideInputTopic, "perseverance", "en")
	assert.ErrorIs(t, err, context.Canceled)

	var guides, links int64
	require.NoError(t, db.Model(&models.StudyGuideModel{}).Count(&guides).Error)
	require.NoError(t, db.Model(&models.UserStudyGuideModel{}).Count(&links).Error)
	assert.Equal(t, int64(1), guides, "cache row persists despite cancellation")
	assert.Zero(t, links, "cancelled principal gets no ownership record")
}

func TestGetOrGenerateConflictConvergesOnWinner(t *testing.T) {
	db := testutil.OpenDB(t)
	store := NewStore(db)
	fp, err := newTestFingerprinter().Derive(models.GuideInputTopic, "hope", "en")
	require.NoError(t, err)

	// Simulate another process inserting between this worker's lookup and
	// insert: the generate callback races the row in first.
	svc := newTestService(t, db, func(ctx context.Context, inputType models.GuideInputType, rawValue, lang string) (*generation.Payload, error) {
		_, err := store.Insert(ctx, fp, testPayload("other process won"))
		require.NoError(t, err)
		p := testPayload("this copy is discarded")
		return &p, nil
	})

	g, err := svc.GetOrGenerate(context.Background(), UserPrincipal(uuid.NewString()), models.GuideInputTopic, "hope", "en")
	require.NoError(t, err)
	assert.Equal(t, "other process won", g.Summary)

	var guides int64
	require.NoError(t, db.Model(&models.StudyGuideModel{}).Count(&guides).Error)
	assert.Equal(t, int64(1), guides)
}

func TestGetOrGenerateRequiresPrincipal(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := newTestService(t, db, countingGenerate(new(atomic.Int32)))

	_, err := svc.GetOrGenerate(context.Background(), Principal{}, models.GuideInputTopic, "hope", "en")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceLedgerRouting(t *testing.T) {
	db := testutil.OpenDB(t)
	var calls atomic.Int32
	svc := newTestService(t, db, countingGenerate(&calls))
	ctx := context.Background()

	user := UserPrincipal(uuid.NewString())
	visitor := AnonymousPrincipal(uuid.NewString())

	g, err := svc.GetOrGenerate(ctx, user, models.GuideInputScripture, "Luke 15", "en")
	require.NoError(t, err)
	_, err = svc.GetOrGenerate(ctx, visitor, models.GuideInputScripture, "Luke 15", "en")
	require.NoError(t, err)

	// Saving through one principal does not leak into the other's entry.
	_, err = svc.SetSaved(ctx, user, g.ID, true)
	require.NoError(t, err)

	listed, _, err := svc.ListFor(ctx, visitor, ListOptions{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].Entry.IsSaved)

	require.NoError(t, svc.Unlink(ctx, visitor, g.ID))
	assert.ErrorIs(t, svc.Unlink(ctx, visitor, g.ID), ErrNotFound)

	// The user's entry and the guide row are untouched.
	listed, _, err = svc.ListFor(ctx, user, ListOptions{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Entry.IsSaved)
}
