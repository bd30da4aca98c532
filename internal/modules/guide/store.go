package guide

import (
	"context"
	"errors"
	"fmt"

	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/modules/generation"
	"gorm.io/gorm"
)

// Store holds the canonical guide rows. One row per fingerprint, enforced by
// the composite unique index; that index is the only mutual exclusion in the
// whole subsystem. Rows are immutable once written and only the retention
// sweeper may delete them.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Lookup returns the cached guide for a fingerprint, or nil when absent.
// A single indexed point read; this is the hot path.
func (s *Store) Lookup(ctx context.Context, fp Fingerprint) (*models.StudyGuideModel, error) {
	var g models.StudyGuideModel
	err := s.db.WithContext(ctx).
		Where("input_type = ? AND input_hash = ? AND lang = ?", fp.InputType, fp.Hash, fp.Lang).
		First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// Insert persists a freshly generated guide. ErrConflict means another writer
// won the race for this fingerprint and the caller should re-Lookup.
func (s *Store) Insert(ctx context.Context, fp Fingerprint, payload generation.Payload) (*models.StudyGuideModel, error) {
	g := models.StudyGuideModel{
		InputType:         fp.InputType,
		InputHash:         fp.Hash,
		Lang:              fp.Lang,
		Summary:           payload.Summary,
		Interpretation:    payload.Interpretation,
		RelatedRefs:       models.StringArray(payload.RelatedRefs),
		ReflectionPrompts: models.StringArray(payload.ReflectionPrompts),
		ApplicationPoints: models.StringArray(payload.ApplicationPoints),
	}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s/%s/%s", ErrConflict, fp.InputType, fp.Hash, fp.Lang)
		}
		return nil, err
	}
	return &g, nil
}

// GetByID fetches a guide row by primary key, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.StudyGuideModel, error) {
	var g models.StudyGuideModel
	err := s.db.WithContext(ctx).First(&g, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}
