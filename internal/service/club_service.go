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

type clubStore interface {
	List(ctx context.Context) ([]models.Club, error)
	FindByID(ctx context.Context, id string) (*models.Club, error)
	Create(ctx context.Context, club *models.Club) error
	Update(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, id string) error
	FindMember(ctx context.Context, clubID, userID string) (*models.ClubMember, error)
	AddMember(ctx context.Context, member *models.ClubMember) error
	ListMembers(ctx context.Context, clubID string) ([]models.ClubMemberDetail, error)
}

// ClubService manages clubs and their rosters.
type ClubService struct {
	repo      clubStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClubService constructs a ClubService instance.
func NewClubService(repo clubStore, validate *validator.Validate, logger *zap.Logger) *ClubService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClubService{repo: repo, validator: validate, logger: logger}
}

// List returns all clubs.
func (s *ClubService) List(ctx context.Context) ([]models.Club, error) {
	clubs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clubs")
	}
	return clubs, nil
}

// Get returns a single club.
func (s *ClubService) Get(ctx context.Context, id string) (*models.Club, error) {
	club, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "club not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load club")
	}
	return club, nil
}

// Create adds a new club. Admin-only, enforced at the route.
func (s *ClubService) Create(ctx context.Context, req models.CreateClubRequest) (*models.Club, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid club payload")
	}

	club := &models.Club{
		Name:                 req.Name,
		Description:          req.Description,
		ClubEmail:            req.ClubEmail,
		FacultyCoordinatorID: req.FacultyCoordinatorID,
		Active:               true,
	}
	if err := s.repo.Create(ctx, club); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create club")
	}
	return club, nil
}

// Update edits a club. Admins may edit any club; the faculty coordinator
// may edit only their own.
func (s *ClubService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateClubRequest) (*models.Club, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid club payload")
	}

	club, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "club not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load club")
	}

	if claims.Role != models.RoleAdmin {
		coordinator := club.FacultyCoordinatorID != nil && *club.FacultyCoordinatorID == claims.UserID
		if !coordinator {
			return nil, appErrors.Clone(appErrors.ErrNotOwner, "only an admin or the club's coordinator may edit this club")
		}
	}

	club.Name = req.Name
	club.Description = req.Description
	club.ClubEmail = req.ClubEmail
	club.FacultyCoordinatorID = req.FacultyCoordinatorID
	club.Active = req.Active
	if err := s.repo.Update(ctx, club); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update club")
	}
	return club, nil
}

// Delete removes a club. Admin-only, enforced at the route.
func (s *ClubService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "club not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete club")
	}
	return nil
}

// AddMember puts a user on the club roster. Admins may manage any roster;
// faculty only the roster of the club they coordinate.
func (s *ClubService) AddMember(ctx context.Context, claims *models.JWTClaims, clubID string, req models.AddClubMemberRequest) (*models.ClubMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}

	club, err := s.repo.FindByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "club not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load club")
	}

	if claims.Role != models.RoleAdmin {
		coordinator := club.FacultyCoordinatorID != nil && *club.FacultyCoordinatorID == claims.UserID
		if !coordinator {
			return nil, appErrors.Clone(appErrors.ErrNotOwner, "only an admin or the club's coordinator may add members")
		}
	}

	if _, err := s.repo.FindMember(ctx, clubID, req.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is already a member of this club")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}

	member := &models.ClubMember{
		ClubID:   clubID,
		UserID:   req.UserID,
		Position: req.Position,
		Active:   true,
		AddedBy:  &claims.UserID,
	}
	if member.Position == "" {
		member.Position = "member"
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add member")
	}
	return member, nil
}

// Members lists the roster of a club.
func (s *ClubService) Members(ctx context.Context, clubID string) ([]models.ClubMemberDetail, error) {
	if _, err := s.repo.FindByID(ctx, clubID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "club not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load club")
	}

	members, err := s.repo.ListMembers(ctx, clubID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	return members, nil
}
