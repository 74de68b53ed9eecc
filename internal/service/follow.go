package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/domain/services"
)

// FollowService implements services.FollowService
type FollowService struct {
	follows   repositories.FollowRepository
	companies repositories.CompanyRepository
	products  repositories.ProductRepository
	areas     repositories.TherapeuticAreaRepository
	websites  repositories.WebsiteRepository
	logger    *slog.Logger
}

// NewFollowService creates a new follow service
func NewFollowService(
	follows repositories.FollowRepository,
	companies repositories.CompanyRepository,
	products repositories.ProductRepository,
	areas repositories.TherapeuticAreaRepository,
	websites repositories.WebsiteRepository,
	logger *slog.Logger,
) services.FollowService {
	return &FollowService{
		follows:   follows,
		companies: companies,
		products:  products,
		areas:     areas,
		websites:  websites,
		logger:    logger,
	}
}

func (s *FollowService) List(ctx context.Context, userID uuid.UUID) ([]models.UserFollowedEntity, error) {
	follows, err := s.follows.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if follows == nil {
		follows = []models.UserFollowedEntity{}
	}
	return follows, nil
}

// Follow resolves the entity to its canonical ID so a follow by slug and a
// follow by ID land on the same row.
func (s *FollowService) Follow(ctx context.Context, userID uuid.UUID, req *models.FollowRequest) (*models.UserFollowedEntity, bool, error) {
	if err := validateFollowRequest(req); err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	entityID, err := s.resolveEntity(ctx, req.EntityType, strings.TrimSpace(req.EntityID))
	if err != nil {
		return nil, false, err
	}

	notify := true
	if req.NotifyChanges != nil {
		notify = *req.NotifyChanges
	}

	now := time.Now()
	follow := &models.UserFollowedEntity{
		ID:            uuid.New(),
		UserID:        userID,
		EntityType:    req.EntityType,
		EntityID:      entityID,
		NotifyChanges: notify,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.follows.Create(ctx, follow); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			existing, getErr := s.follows.Get(ctx, userID, req.EntityType, entityID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.logger.Info("entity followed",
		"user_id", userID,
		"entity_type", follow.EntityType,
		"entity_id", follow.EntityID,
	)
	return follow, true, nil
}

func (s *FollowService) Unfollow(ctx context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) error {
	if !entityType.Valid() {
		return &domain.ValidationError{Message: fmt.Sprintf("unknown entity type: %s", entityType)}
	}

	// Follows store the canonical ID; fall back to resolving a slug
	err := s.follows.Delete(ctx, userID, entityType, entityID)
	if errors.Is(err, domain.ErrNotFound) {
		resolved, resolveErr := s.resolveEntity(ctx, entityType, entityID)
		if resolveErr != nil || resolved == entityID {
			return err
		}
		err = s.follows.Delete(ctx, userID, entityType, resolved)
	}
	if err != nil {
		return err
	}

	s.logger.Info("entity unfollowed", "user_id", userID, "entity_type", entityType, "entity_id", entityID)
	return nil
}

// resolveEntity checks the entity exists and returns its canonical ID.
// Companies, products and websites accept a numeric ID or a slug.
func (s *FollowService) resolveEntity(ctx context.Context, entityType models.EntityType, ref string) (string, error) {
	id, numErr := strconv.ParseInt(ref, 10, 64)
	isNumeric := numErr == nil

	switch entityType {
	case models.EntityCompany:
		var c *models.Company
		var err error
		if isNumeric {
			c, err = s.companies.GetByID(ctx, id)
		} else {
			c, err = s.companies.GetBySlug(ctx, ref)
		}
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(c.ID, 10), nil

	case models.EntityProduct:
		if isNumeric {
			return "", &domain.ValidationError{Message: "products are followed by slug"}
		}
		p, err := s.products.GetBySlug(ctx, ref)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(p.ID, 10), nil

	case models.EntityTherapeuticArea:
		a, err := s.areas.GetByID(ctx, ref)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return "", err
			}
			a, err = s.areas.GetBySlug(ctx, ref)
			if err != nil {
				return "", err
			}
		}
		return a.ID, nil

	case models.EntityWebsite:
		if !isNumeric {
			return "", &domain.ValidationError{Message: "website id must be numeric"}
		}
		w, err := s.websites.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(w.ID, 10), nil
	}

	return "", &domain.ValidationError{Message: fmt.Sprintf("unknown entity type: %s", entityType)}
}

func validateFollowRequest(req *models.FollowRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.EntityType,
			validation.Required,
			validation.In(
				models.EntityCompany,
				models.EntityProduct,
				models.EntityTherapeuticArea,
				models.EntityWebsite,
			),
		),
		validation.Field(&req.EntityID, validation.Required, validation.Length(1, 255)),
	)
}
