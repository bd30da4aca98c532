package retention

import (
	"context"
	"testing"
	"time"

	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/modules/generation"
	"github.com/berea-app/core/internal/modules/guide"
	"github.com/berea-app/core/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedGuide(t *testing.T, db *gorm.DB, value string) *models.StudyGuideModel {
	t.Helper()
	fp, err := guide.NewFingerprinter([]string{"en"}).Derive(models.GuideInputTopic, value, "en")
	require.NoError(t, err)
	g, err := guide.NewStore(db).Insert(context.Background(), fp, generation.Payload{Summary: value})
	require.NoError(t, err)
	return g
}

func linkAnon(t *testing.T, db *gorm.DB, guideID string, expires time.Time) {
	t.Helper()
	ledger := guide.NewAnonLedger(db, 24*time.Hour)
	e, err := ledger.Link(context.Background(), uuid.NewString(), guideID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.AnonStudyGuideModel{}).
		Where("id = ?", e.ID).
		Update("expires_at", expires).Error)
}

func TestSweepReclaimsExpiredLinks(t *testing.T) {
	db := testutil.OpenDB(t)
	now := time.Now()

	live := seedGuide(t, db, "grace")
	stale := seedGuide(t, db, "mercy")
	linkAnon(t, db, live.ID, now.Add(time.Hour))
	linkAnon(t, db, stale.ID, now.Add(-time.Hour))

	res, err := NewSweeper(db, false, nil).Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ExpiredLinks)
	assert.Zero(t, res.OrphanedGuides)

	var links int64
	require.NoError(t, db.Model(&models.AnonStudyGuideModel{}).Count(&links).Error)
	assert.Equal(t, int64(1), links)

	// Orphan purging is off, so both guide rows stay.
	var guides int64
	require.NoError(t, db.Model(&models.StudyGuideModel{}).Count(&guides).Error)
	assert.Equal(t, int64(2), guides)
}

func TestSweepPurgesOrphanedGuides(t *testing.T) {
	db := testutil.OpenDB(t)
	now := time.Now()

	orphan := seedGuide(t, db, "patience")
	kept := seedGuide(t, db, "kindness")
	linkAnon(t, db, orphan.ID, now.Add(-time.Hour))

	// kept is referenced by a user, so it survives even with no anon links.
	userLedger := guide.NewUserLedger(db)
	_, err := userLedger.Link(context.Background(), uuid.NewString(), kept.ID)
	require.NoError(t, err)

	res, err := NewSweeper(db, true, nil).Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ExpiredLinks)
	assert.Equal(t, int64(1), res.OrphanedGuides)

	var remaining []models.StudyGuideModel
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}

func TestSweepIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	now := time.Now()

	g := seedGuide(t, db, "joy")
	linkAnon(t, db, g.ID, now.Add(-time.Minute))

	sweeper := NewSweeper(db, true, nil)
	_, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)

	res, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, res.ExpiredLinks)
	assert.Zero(t, res.OrphanedGuides)
}
