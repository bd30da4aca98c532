package guide

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/berea-app/core/internal/models"
	"gorm.io/gorm"
)

// Entry is the principal-agnostic view of an ownership record.
type Entry struct {
	ID          string     `json:"id"`
	PrincipalID string     `json:"-"`
	GuideID     string     `json:"guide_id"`
	IsSaved     bool       `json:"is_saved"`
	CreatedAt   time.Time  `json:"created"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Listed pairs a guide with the requesting principal's own entry.
type Listed struct {
	Guide models.StudyGuideModel `json:"guide"`
	Entry Entry                  `json:"entry"`
}

// ListOptions filters and paginates a principal's history.
type ListOptions struct {
	SavedOnly bool
	Page      int
	Size      int
}

// Ledger records which principal has a relationship to which guide. Entries
// are exclusively owned by one principal; the guide rows they point at are
// shared. Both variants are structurally identical; the anonymous one adds
// an expiry honored by the retention sweeper.
type Ledger interface {
	// Link is idempotent: an existing (principal, guide) pair is returned
	// as-is rather than duplicated.
	Link(ctx context.Context, principalID, guideID string) (*Entry, error)
	// SetSaved flips the saved flag, failing with ErrNotFound when the
	// principal never linked this guide.
	SetSaved(ctx context.Context, principalID, guideID string, saved bool) (*Entry, error)
	// Unlink removes the pair from the principal's history.
	Unlink(ctx context.Context, principalID, guideID string) error
	// ListFor returns the principal's history newest-first.
	ListFor(ctx context.Context, principalID string, opts ListOptions) ([]Listed, int64, error)
}

// UserLedger is the authenticated variant, keyed by user id.
type UserLedger struct {
	db *gorm.DB
}

func NewUserLedger(db *gorm.DB) *UserLedger {
	return &UserLedger{db: db}
}

func (l *UserLedger) Link(ctx context.Context, userID, guideID string) (*Entry, error) {
	rec := models.UserStudyGuideModel{UserID: userID, GuideID: guideID}
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND guide_id = ?", userID, guideID).
		FirstOrCreate(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a same-principal race; the winner's row is the record.
		err = l.db.WithContext(ctx).
			Where("user_id = ? AND guide_id = ?", userID, guideID).
			First(&rec).Error
	}
	if err != nil {
		return nil, err
	}
	return userEntry(&rec), nil
}

func (l *UserLedger) SetSaved(ctx context.Context, userID, guideID string, saved bool) (*Entry, error) {
	var rec models.UserStudyGuideModel
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND guide_id = ?", userID, guideID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s has no link to guide %s", ErrNotFound, userID, guideID)
		}
		return nil, err
	}
	if rec.IsSaved != saved {
		if err := l.db.WithContext(ctx).Model(&rec).Update("is_saved", saved).Error; err != nil {
			return nil, err
		}
		rec.IsSaved = saved
	}
	return userEntry(&rec), nil
}

func (l *UserLedger) Unlink(ctx context.Context, userID, guideID string) error {
	res := l.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND guide_id = ?", userID, guideID).
		Delete(&models.UserStudyGuideModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s has no link to guide %s", ErrNotFound, userID, guideID)
	}
	return nil
}

func (l *UserLedger) ListFor(ctx context.Context, userID string, opts ListOptions) ([]Listed, int64, error) {
	q := l.db.WithContext(ctx).Model(&models.UserStudyGuideModel{}).Where("user_id = ?", userID)
	if opts.SavedOnly {
		q = q.Where("is_saved = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []models.UserStudyGuideModel
	if err := q.Order("created_at DESC").
		Offset(listOffset(opts)).Limit(listSize(opts)).
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, len(recs))
	ids := make([]string, len(recs))
	for i := range recs {
		entries[i] = *userEntry(&recs[i])
		ids[i] = recs[i].GuideID
	}
	listed, err := attachGuides(ctx, l.db, entries, ids)
	return listed, total, err
}

// AnonLedger is the anonymous-session variant. Entries expire after the
// retention window and are reclaimed by the sweeper.
type AnonLedger struct {
	db        *gorm.DB
	retention time.Duration
}

func NewAnonLedger(db *gorm.DB, retention time.Duration) *AnonLedger {
	return &AnonLedger{db: db, retention: retention}
}

func (l *AnonLedger) Link(ctx context.Context, sessionID, guideID string) (*Entry, error) {
	rec := models.AnonStudyGuideModel{
		SessionID: sessionID,
		GuideID:   guideID,
		ExpiresAt: time.Now().Add(l.retention),
	}
	err := l.db.WithContext(ctx).
		Where("session_id = ? AND guide_id = ?", sessionID, guideID).
		FirstOrCreate(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = l.db.WithContext(ctx).
			Where("session_id = ? AND guide_id = ?", sessionID, guideID).
			First(&rec).Error
	}
	if err != nil {
		return nil, err
	}

	// A re-link of an already-expired entry revives it; otherwise the sweeper
	// could reclaim a record the session just touched.
	if rec.ExpiresAt.Before(time.Now()) {
		expires := time.Now().Add(l.retention)
		if err := l.db.WithContext(ctx).Model(&rec).Update("expires_at", expires).Error; err != nil {
			return nil, err
		}
		rec.ExpiresAt = expires
	}
	return anonEntry(&rec), nil
}

func (l *AnonLedger) SetSaved(ctx context.Context, sessionID, guideID string, saved bool) (*Entry, error) {
	var rec models.AnonStudyGuideModel
	err := l.db.WithContext(ctx).
		Where("session_id = ? AND guide_id = ?", sessionID, guideID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %s has no link to guide %s", ErrNotFound, sessionID, guideID)
		}
		return nil, err
	}
	if rec.IsSaved != saved {
		if err := l.db.WithContext(ctx).Model(&rec).Update("is_saved", saved).Error; err != nil {
			return nil, err
		}
		rec.IsSaved = saved
	}
	return anonEntry(&rec), nil
}

func (l *AnonLedger) Unlink(ctx context.Context, sessionID, guideID string) error {
	res := l.db.WithContext(ctx).Unscoped().
		Where("session_id = ? AND guide_id = ?", sessionID, guideID).
		Delete(&models.AnonStudyGuideModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: session %s has no link to guide %s", ErrNotFound, sessionID, guideID)
	}
	return nil
}

func (l *AnonLedger) ListFor(ctx context.Context, sessionID string, opts ListOptions) ([]Listed, int64, error) {
	q := l.db.WithContext(ctx).Model(&models.AnonStudyGuideModel{}).
		Where("session_id = ? AND expires_at > ?", sessionID, time.Now())
	if opts.SavedOnly {
		q = q.Where("is_saved = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []models.AnonStudyGuideModel
	if err := q.Order("created_at DESC").
		Offset(listOffset(opts)).Limit(listSize(opts)).
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, len(recs))
	ids := make([]string, len(recs))
	for i := range recs {
		entries[i] = *anonEntry(&recs[i])
		ids[i] = recs[i].GuideID
	}
	listed, err := attachGuides(ctx, l.db, entries, ids)
	return listed, total, err
}

func userEntry(rec *models.UserStudyGuideModel) *Entry {
	return &Entry{
		ID:          rec.ID,
		PrincipalID: rec.UserID,
		GuideID:     rec.GuideID,
		IsSaved:     rec.IsSaved,
		CreatedAt:   rec.CreatedAt,
	}
}

func anonEntry(rec *models.AnonStudyGuideModel) *Entry {
	expires := rec.ExpiresAt
	return &Entry{
		ID:          rec.ID,
		PrincipalID: rec.SessionID,
		GuideID:     rec.GuideID,
		IsSaved:     rec.IsSaved,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   &expires,
	}
}

// attachGuides resolves guide rows for the paged entries, preserving the
// entries' order.
func attachGuides(ctx context.Context, db *gorm.DB, entries []Entry, guideIDs []string) ([]Listed, error) {
	if len(entries) == 0 {
		return []Listed{}, nil
	}

	var guides []models.StudyGuideModel
	if err := db.WithContext(ctx).Where("id IN ?", guideIDs).Find(&guides).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.StudyGuideModel, len(guides))
	for _, g := range guides {
		byID[g.ID] = g
	}

	listed := make([]Listed, 0, len(entries))
	for _, e := range entries {
		g, ok := byID[e.GuideID]
		if !ok {
			// Guide swept between the two reads; drop the dangling entry.
			continue
		}
		listed = append(listed, Listed{Guide: g, Entry: e})
	}
	return listed, nil
}

func listOffset(opts ListOptions) int {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * listSize(opts)
}

func listSize(opts ListOptions) int {
	if opts.Size < 1 {
		return 20
	}
	return opts.Size
}
