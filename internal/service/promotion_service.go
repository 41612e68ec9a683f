package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/repository"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
)

type promotionStore interface {
	Create(ctx context.Context, req *models.PromotionRequest) error
	FindByID(ctx context.Context, id string) (*models.PromotionRequest, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	ListPending(ctx context.Context) ([]models.PendingPromotion, error)
	Decide(ctx context.Context, requestID, actorID string, status models.PromotionStatus) (*models.PromotionRequest, error)
}

// PromotionConfig tunes promotion request behaviour.
type PromotionConfig struct {
	// SinglePending refuses a new request while the user already has one
	// outstanding. Off by default: duplicate requests are allowed and each
	// is decided on its own.
	SinglePending bool
}

// PromotionService manages role elevation requests.
type PromotionService struct {
	repo      promotionStore
	validator *validator.Validate
	logger    *zap.Logger
	config    PromotionConfig
}

// NewPromotionService constructs a PromotionService instance.
func NewPromotionService(repo promotionStore, validate *validator.Validate, logger *zap.Logger, config PromotionConfig) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PromotionService{repo: repo, validator: validate, logger: logger, config: config}
}

// Request files a promotion request for the caller.
func (s *PromotionService) Request(ctx context.Context, claims *models.JWTClaims, req models.CreatePromotionRequest) (*models.PromotionRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}
	if !models.ValidRole(req.RequestedRole) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if req.RequestedRole == models.RoleAdmin || req.RequestedRole == models.RoleDepartmentHead {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this role cannot be requested")
	}
	if req.RequestedRole == claims.Role {
		return nil, appErrors.Clone(appErrors.ErrValidation, "already holding the requested role")
	}

	if s.config.SinglePending {
		pending, err := s.repo.HasPending(ctx, claims.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
		}
		if pending {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a promotion request is already pending")
		}
	}

	request := &models.PromotionRequest{
		UserID:        claims.UserID,
		RequestedRole: req.RequestedRole,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create promotion request")
	}

	s.logger.Info("promotion requested",
		zap.String("user_id", claims.UserID),
		zap.String("requested_role", string(req.RequestedRole)))
	return request, nil
}

// Pending returns the queue of undecided requests.
func (s *PromotionService) Pending(ctx context.Context) ([]models.PendingPromotion, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending promotions")
	}
	return pending, nil
}

// Approve grants the requested role.
func (s *PromotionService) Approve(ctx context.Context, claims *models.JWTClaims, requestID string) (*models.PromotionRequest, error) {
	return s.decide(ctx, claims, requestID, models.PromotionApproved)
}

// Reject declines the request, leaving the user's role untouched.
func (s *PromotionService) Reject(ctx context.Context, claims *models.JWTClaims, requestID string) (*models.PromotionRequest, error) {
	return s.decide(ctx, claims, requestID, models.PromotionRejected)
}

func (s *PromotionService) decide(ctx context.Context, claims *models.JWTClaims, requestID string, status models.PromotionStatus) (*models.PromotionRequest, error) {
	request, err := s.repo.Decide(ctx, requestID, claims.UserID, status)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "promotion request not found")
		case errors.Is(err, repository.ErrRequestDecided):
			return nil, appErrors.Clone(appErrors.ErrConflict, "promotion request has already been decided")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide promotion")
		}
	}

	s.logger.Info("promotion decided",
		zap.String("request_id", requestID),
		zap.String("decision", string(status)),
		zap.String("decided_by", claims.UserID))
	return request, nil
}
