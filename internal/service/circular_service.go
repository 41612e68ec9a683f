package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eventopia/eventopia-api/internal/models"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
)

type circularStore interface {
	List(ctx context.Context) ([]models.Circular, error)
	FindByID(ctx context.Context, id string) (*models.Circular, error)
	Create(ctx context.Context, circular *models.Circular) error
	Update(ctx context.Context, circular *models.Circular) error
	Delete(ctx context.Context, id string) error
}

// CircularService manages notice-board circulars.
type CircularService struct {
	repo      circularStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCircularService constructs a CircularService instance.
func NewCircularService(repo circularStore, validate *validator.Validate, logger *zap.Logger) *CircularService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CircularService{repo: repo, validator: validate, logger: logger}
}

// List returns all circulars, newest first.
func (s *CircularService) List(ctx context.Context) ([]models.Circular, error) {
	circulars, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list circulars")
	}
	return circulars, nil
}

// Create publishes a circular.
func (s *CircularService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateCircularRequest) (*models.Circular, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid circular payload")
	}

	circular := &models.Circular{
		Title:          req.Title,
		Content:        req.Content,
		CreatedBy:      claims.UserID,
		TargetAudience: req.TargetAudience,
		Active:         true,
	}
	if circular.TargetAudience == "" {
		circular.TargetAudience = models.AudienceAll
	}
	if err := s.repo.Create(ctx, circular); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create circular")
	}
	return circular, nil
}

// Update edits a circular.
func (s *CircularService) Update(ctx context.Context, id string, req models.UpdateCircularRequest) (*models.Circular, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid circular payload")
	}

	circular, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "circular not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load circular")
	}

	circular.Title = req.Title
	circular.Content = req.Content
	circular.TargetAudience = req.TargetAudience
	circular.Active = req.Active
	if circular.TargetAudience == "" {
		circular.TargetAudience = models.AudienceAll
	}
	if err := s.repo.Update(ctx, circular); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update circular")
	}
	return circular, nil
}

// Delete removes a circular.
func (s *CircularService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "circular not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete circular")
	}
	return nil
}
