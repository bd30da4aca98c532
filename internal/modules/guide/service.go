package guide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/berea-app/core/internal/config"
	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/modules/generation"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// GenerateFunc is the external generation engine at the subsystem boundary:
// expensive, non-deterministic, and allowed to fail. The coordinator treats
// it as a pure function of the raw input.
type GenerateFunc func(ctx context.Context, inputType models.GuideInputType, rawValue, lang string) (*generation.Payload, error)

// Service coordinates the content-addressed cache: fingerprint, probe,
// generate at most one stored copy, and link ownership for the requester.
//
// There is no lock across the generation call. Cross-process dedup of
// *storage* rests entirely on the store's unique fingerprint index; the
// in-process singleflight only collapses concurrent generation *work* for
// the same fingerprint inside one worker.
type Service struct {
	db       *gorm.DB
	store    *Store
	users    *UserLedger
	anons    *AnonLedger
	fp       *Fingerprinter
	generate GenerateFunc
	logger   *zap.Logger

	flights singleflight.Group
}

func NewService(db *gorm.DB, cfg config.GuideConfig, generate GenerateFunc, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:       db,
		store:    NewStore(db),
		users:    NewUserLedger(db),
		anons:    NewAnonLedger(db, cfg.RetentionWindow()),
		fp:       NewFingerprinter(cfg.Languages),
		generate: generate,
		logger:   logger.Named("GuideService"),
	}
}

// Store exposes the content store to the retention sweeper.
func (s *Service) Store() *Store { return s.store }

// GetOrGenerate returns the cached guide for the request, generating and
// persisting it exactly once on first miss, then records the principal's
// ownership. Generation failures propagate without creating any record.
func (s *Service) GetOrGenerate(ctx context.Context, p Principal, inputType models.GuideInputType, rawValue, lang string) (*models.StudyGuideModel, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: missing principal", ErrInvalidInput)
	}

	fp, err := s.fp.Derive(inputType, rawValue, lang)
	if err != nil {
		return nil, err
	}

	g, err := s.store.Lookup(ctx, fp)
	if err != nil {
		return nil, err
	}
	if g == nil {
		g, err = s.generateOnce(ctx, fp, strings.TrimSpace(rawValue))
		if err != nil {
			return nil, err
		}
	}

	// The caller may have gone away while generation ran. The cache row above
	// is kept either way, but a cancelled principal gets no ownership record.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.ledgerFor(p).Link(ctx, p.ID, g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

// generateOnce funnels all concurrent misses for one fingerprint through a
// single generation call. It runs on a context detached from the caller so
// an in-flight generation finishes and populates the cache even when the
// triggering request is cancelled.
func (s *Service) generateOnce(ctx context.Context, fp Fingerprint, rawValue string) (*models.StudyGuideModel, error) {
	key := string(fp.InputType) + ":" + fp.Hash + ":" + fp.Lang
	v, err, shared := s.flights.Do(key, func() (interface{}, error) {
		gctx := context.WithoutCancel(ctx)

		// Another flight may have just filled the row.
		if g, err := s.store.Lookup(gctx, fp); err != nil || g != nil {
			return g, err
		}

		payload, err := s.generate(gctx, fp.InputType, rawValue, fp.Lang)
		if err != nil {
			return nil, err
		}

		g, err := s.store.Insert(gctx, fp, *payload)
		if errors.Is(err, ErrConflict) {
			// Another process generated and inserted first. Its row is
			// canonical; the payload built here is discarded.
			s.logger.Debug("insert conflict resolved by re-lookup", zap.String("hash", fp.Hash))
			g, err = s.store.Lookup(gctx, fp)
			if err == nil && g == nil {
				err = fmt.Errorf("guide vanished after insert conflict for hash %s", fp.Hash)
			}
		}
		return g, err
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("generation shared across concurrent requests", zap.String("hash", fp.Hash))
	}
	return v.(*models.StudyGuideModel), nil
}

// SetSaved flips the saved flag on the principal's own entry.
func (s *Service) SetSaved(ctx context.Context, p Principal, guideID string, saved bool) (*Entry, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: missing principal", ErrInvalidInput)
	}
	return s.ledgerFor(p).SetSaved(ctx, p.ID, guideID, saved)
}

// Unlink removes a guide from the principal's history. The shared guide row
// stays; reclaiming orphans is the sweeper's business.
func (s *Service) Unlink(ctx context.Context, p Principal, guideID string) error {
	if !p.Valid() {
		return fmt.Errorf("%w: missing principal", ErrInvalidInput)
	}
	return s.ledgerFor(p).Unlink(ctx, p.ID, guideID)
}

// ListFor returns the principal's history, newest first.
func (s *Service) ListFor(ctx context.Context, p Principal, opts ListOptions) ([]Listed, int64, error) {
	if !p.Valid() {
		return nil, 0, fmt.Errorf("%w: missing principal", ErrInvalidInput)
	}
	return s.ledgerFor(p).ListFor(ctx, p.ID, opts)
}

func (s *Service) ledgerFor(p Principal) Ledger {
	if p.Kind == PrincipalAnonymous {
		return s.anons
	}
	return s.users
}
