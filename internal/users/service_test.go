package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindred-stories/kindred/internal/access"
	"github.com/kindred-stories/kindred/internal/adminroles"
	"github.com/kindred-stories/kindred/internal/platform/httpx"
	"github.com/kindred-stories/kindred/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	users   map[uuid.UUID]User
	order   []uuid.UUID
	assigns []AssignParams
	listErr error
}

func newMockRepository(users ...User) *mockRepository {
	m := &mockRepository{users: make(map[uuid.UUID]User)}
	for _, u := range users {
		m.users[u.ID] = u
		m.order = append(m.order, u.ID)
	}
	return m
}

func (m *mockRepository) ListUsers(ctx context.Context, page shared.PageRequest) ([]User, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []User
	for i, id := range m.order {
		if i >= page.Offset() && len(out) < page.PerPage {
			out = append(out, m.users[id])
		}
	}
	return out, len(m.order), nil
}

func (m *mockRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) SetAdminRole(ctx context.Context, params AssignParams) (User, error) {
	u, ok := m.users[params.UserID]
	if !ok {
		return User{}, ErrNotFound
	}
	u.AdminRole = params.Role
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	m.assigns = append(m.assigns, params)
	return u, nil
}

type recordingCache struct {
	invalidated []string
	err         error
}

func (c *recordingCache) Invalidate(ctx context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	return c.err
}

func newUser(legacy, assigned string) User {
	return User{ID: uuid.New(), Email: legacy + "@kindred.test", DisplayName: legacy, UserRole: legacy, AdminRole: assigned}
}

func actor(role adminroles.Role) access.Resolution {
	return access.Resolution{UserID: uuid.NewString(), Role: role, OK: true, Source: access.SourceAssigned}
}

// ============================================================================
// TESTS
// ============================================================================

func TestListUsersResolvesEffectiveRoles(t *testing.T) {
	plain := newUser("user", "")
	admin := newUser("admin", "")
	assigned := newUser("user", "circle_admin")
	corrupt := newUser("super_admin", "root")
	svc := NewService(newMockRepository(plain, admin, assigned, corrupt), nil, nil)

	views, page, err := svc.ListUsers(context.Background(), shared.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, views, 4)
	assert.Equal(t, 4, page.Total)

	assert.False(t, views[0].Effective.OK)
	assert.Equal(t, adminroles.RoleContentAdmin, views[1].Effective.Role)
	assert.Equal(t, adminroles.RoleCircleAdmin, views[2].Effective.Role)
	assert.False(t, views[3].Effective.OK)
	assert.Equal(t, access.SourceInvalid, views[3].Effective.Source)
}

func TestListUsersPropagatesErrors(t *testing.T) {
	repo := newMockRepository()
	repo.listErr = errors.New("boom")
	_, _, err := NewService(repo, nil, nil).ListUsers(context.Background(), shared.PageRequest{Page: 1, PerPage: 20})
	assert.EqualError(t, err, "boom")
}

func TestAssignRole(t *testing.T) {
	target := newUser("user", "")
	repo := newMockRepository(target)
	cache := &recordingCache{}
	svc := NewService(repo, cache, nil)
	by := actor(adminroles.RoleUserAdmin)

	view, err := svc.AssignRole(context.Background(), by, target.ID, " Circle_Admin ")
	require.NoError(t, err)
	assert.Equal(t, "circle_admin", view.AdminRole)
	assert.Equal(t, adminroles.RoleCircleAdmin, view.Effective.Role)
	assert.Equal(t, []string{target.ID.String()}, cache.invalidated)
	require.Len(t, repo.assigns, 1)
	assert.Equal(t, by.UserID, repo.assigns[0].ActorID)
	assert.Equal(t, "", repo.assigns[0].Previous)

	view, err = svc.AssignRole(context.Background(), by, target.ID, "")
	require.NoError(t, err)
	assert.Empty(t, view.AdminRole)
	assert.False(t, view.Effective.OK)
	assert.Equal(t, "circle_admin", repo.assigns[1].Previous)
}

func TestAssignRoleRejectsUnknownRole(t *testing.T) {
	target := newUser("user", "")
	repo := newMockRepository(target)
	_, err := NewService(repo, nil, nil).AssignRole(context.Background(), actor(adminroles.RoleSuperAdmin), target.ID, "admin")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.ErrorIs(t, err, adminroles.ErrUnknownRole)
	assert.Empty(t, repo.assigns)
}

func TestAssignRoleGuards(t *testing.T) {
	super := newUser("super_admin", "super_admin")
	plain := newUser("user", "")
	derivedSuper := newUser("super_admin", "")
	repo := newMockRepository(super, plain, derivedSuper)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.AssignRole(ctx, actor(adminroles.RoleUserAdmin), plain.ID, "super_admin")
	assert.ErrorIs(t, err, ErrSuperAdminOnly)

	_, err = svc.AssignRole(ctx, actor(adminroles.RoleUserAdmin), derivedSuper.ID, "moderator")
	assert.ErrorIs(t, err, ErrSuperAdminOnly)

	_, err = svc.AssignRole(ctx, actor(adminroles.RoleUserAdmin), super.ID, "")
	assert.ErrorIs(t, err, ErrSuperAdminOnly)

	_, err = svc.AssignRole(ctx, actor(adminroles.RoleModerator), plain.ID, "moderator")
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	self := actor(adminroles.RoleSuperAdmin)
	self.UserID = super.ID.String()
	_, err = svc.AssignRole(ctx, self, super.ID, "moderator")
	assert.ErrorIs(t, err, ErrSelfAssignment)

	_, err = svc.AssignRole(ctx, actor(adminroles.RoleSuperAdmin), uuid.New(), "moderator")
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.AssignRole(ctx, access.Resolution{Source: access.SourceNone}, plain.ID, "moderator")
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	assert.Empty(t, repo.assigns)

	_, err = svc.AssignRole(ctx, actor(adminroles.RoleSuperAdmin), plain.ID, "super_admin")
	require.NoError(t, err)
}

func TestAssignRoleCacheFailureIsNotFatal(t *testing.T) {
	target := newUser("user", "")
	cache := &recordingCache{err: errors.New("redis down")}
	view, err := NewService(newMockRepository(target), cache, nil).AssignRole(context.Background(), actor(adminroles.RoleSuperAdmin), target.ID, "moderator")
	require.NoError(t, err)
	assert.Equal(t, adminroles.RoleModerator, view.Effective.Role)
}
