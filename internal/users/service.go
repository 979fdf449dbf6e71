package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kindred-stories/kindred/internal/access"
	"github.com/kindred-stories/kindred/internal/adminroles"
	"github.com/kindred-stories/kindred/internal/platform/httpx"
	"github.com/kindred-stories/kindred/internal/shared"
)

// AuditEntity is the audit_logs entity name for user role changes.
const AuditEntity = "user"

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = fmt.Errorf("users: %w", httpx.ErrNotFound)
	// ErrSelfAssignment blocks admins from changing their own role.
	ErrSelfAssignment = fmt.Errorf("users: cannot change your own admin role: %w", httpx.ErrForbidden)
	// ErrSuperAdminOnly guards granting or revoking super admin.
	ErrSuperAdminOnly = fmt.Errorf("users: only a super admin can grant or revoke super admin: %w", httpx.ErrForbidden)
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, page shared.PageRequest) ([]User, int, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	SetAdminRole(ctx context.Context, params AssignParams) (User, error)
}

// CacheInvalidator drops cached role data for a user.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// Service handles user business logic.
type Service struct {
	repo   RepositoryPort
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ListUsers returns a page of users with their effective admin roles.
func (s *Service) ListUsers(ctx context.Context, page shared.PageRequest) ([]UserView, shared.Pagination, error) {
	users, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	views := make([]UserView, len(users))
	for i, u := range users {
		res, _ := access.Decide(u.Principal())
		views[i] = UserView{User: u, Effective: res}
	}
	return views, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// GetUser returns one user with its effective admin role.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (UserView, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	res, _ := access.Decide(u.Principal())
	return UserView{User: u, Effective: res}, nil
}

// AssignRole sets or clears the explicit admin role of target on behalf of
// actor. raw is parsed strictly; an empty value clears the assignment.
func (s *Service) AssignRole(ctx context.Context, actor access.Resolution, target uuid.UUID, raw string) (UserView, error) {
	if !actor.Can(adminroles.CanManageRoles) {
		return UserView{}, fmt.Errorf("users: assign role: %w", httpx.ErrForbidden)
	}
	var role adminroles.Role
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		parsed, err := adminroles.ParseRole(trimmed)
		if err != nil {
			return UserView{}, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
		}
		role = parsed
	}
	if actor.UserID == target.String() {
		return UserView{}, ErrSelfAssignment
	}

	current, err := s.repo.GetUser(ctx, target)
	if err != nil {
		return UserView{}, err
	}
	// A super admin may hold the role by derivation only; overriding that
	// with an explicit assignment is a revoke.
	before, _ := access.Decide(current.Principal())
	touchesSuper := role == adminroles.RoleSuperAdmin ||
		current.AdminRole == string(adminroles.RoleSuperAdmin) ||
		(before.OK && before.Role == adminroles.RoleSuperAdmin)
	if touchesSuper && actor.Role != adminroles.RoleSuperAdmin {
		return UserView{}, ErrSuperAdminOnly
	}

	updated, err := s.repo.SetAdminRole(ctx, AssignParams{
		UserID:   target,
		ActorID:  actor.UserID,
		Role:     string(role),
		Previous: current.AdminRole,
	})
	if err != nil {
		return UserView{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, target.String()); err != nil {
			s.logger.Error("invalidate role cache", slog.String("user_id", target.String()), slog.Any("error", err))
		}
	}
	s.logger.Info("admin role changed",
		slog.String("actor_id", actor.UserID),
		slog.String("user_id", target.String()),
		slog.String("from", current.AdminRole),
		slog.String("to", string(role)),
	)
	res, _ := access.Decide(updated.Principal())
	return UserView{User: updated, Effective: res}, nil
}
