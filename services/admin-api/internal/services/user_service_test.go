package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/models"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/views"
)

type fakeUserRepo struct {
	users map[uuid.UUID]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return models.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context, _ repositories.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status pkg.UserStatus) error {
	u := r.users[id]
	u.Status = status
	r.users[id] = u
	return nil
}

type recordingAudit struct {
	events []AuditEvent
}

func (a *recordingAudit) Publish(event AuditEvent) { a.events = append(a.events, event) }
func (a *recordingAudit) Close()                   {}

func TestUserService_Create(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &recordingAudit{}
	svc := NewUserService(zap.NewNop(), repo, audit)

	user, err := svc.Create(context.Background(), "t1", views.UserCreateRequest{
		Email: "a@example.com", Name: "Alice", Role: "STAFF",
	})
	require.NoError(t, err)
	assert.Equal(t, pkg.UserStatusActive, user.Status)
	assert.Equal(t, pkg.UserRoleStaff, user.Role)
	assert.NotEqual(t, uuid.Nil, user.ID)

	require.Len(t, audit.events, 1)
	assert.Equal(t, "user.create", audit.events[0].Action)
	assert.Equal(t, user.ID.String(), audit.events[0].EntityID)
}

func TestUserService_Ban(t *testing.T) {
	customer := models.User{ID: uuid.New(), Role: pkg.UserRoleCustomer, Status: pkg.UserStatusActive}
	repo := newFakeUserRepo(customer)
	audit := &recordingAudit{}
	svc := NewUserService(zap.NewNop(), repo, audit)

	banned, err := svc.Ban(context.Background(), "t1", customer.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.UserStatusBanned, banned.Status)

	stored, _ := repo.GetByID(context.Background(), customer.ID)
	assert.Equal(t, pkg.UserStatusBanned, stored.Status)
	require.Len(t, audit.events, 1)
	assert.Equal(t, "user.ban", audit.events[0].Action)
}

func TestUserService_BanAdminRejected(t *testing.T) {
	admin := models.User{ID: uuid.New(), Role: pkg.UserRoleAdmin, Status: pkg.UserStatusActive}
	repo := newFakeUserRepo(admin)
	svc := NewUserService(zap.NewNop(), repo, &recordingAudit{})

	_, err := svc.Ban(context.Background(), "t1", admin.ID)
	var typed *apperrors.AppError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, apperrors.KindBusinessRule, typed.Kind)
	assert.Equal(t, "ban_admin_forbidden", typed.BusinessRule)

	stored, _ := repo.GetByID(context.Background(), admin.ID)
	assert.Equal(t, pkg.UserStatusActive, stored.Status, "admin stays active")
}

func TestUserService_BanIdempotent(t *testing.T) {
	banned := models.User{ID: uuid.New(), Role: pkg.UserRoleCustomer, Status: pkg.UserStatusBanned}
	repo := newFakeUserRepo(banned)
	audit := &recordingAudit{}
	svc := NewUserService(zap.NewNop(), repo, audit)

	user, err := svc.Ban(context.Background(), "t1", banned.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.UserStatusBanned, user.Status)
	assert.Empty(t, audit.events, "no audit event for a no-op ban")
}

func TestUserService_Unban(t *testing.T) {
	banned := models.User{ID: uuid.New(), Role: pkg.UserRoleCustomer, Status: pkg.UserStatusBanned}
	repo := newFakeUserRepo(banned)
	svc := NewUserService(zap.NewNop(), repo, &recordingAudit{})

	user, err := svc.Unban(context.Background(), "t1", banned.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.UserStatusActive, user.Status)
}

func TestUserService_BanMissingUser(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newFakeUserRepo(), &recordingAudit{})
	_, err := svc.Ban(context.Background(), "t1", uuid.New())
	require.ErrorIs(t, err, pgx.ErrNoRows, "vendor errors surface raw for boundary classification")
}

func TestUserService_UpdatePartial(t *testing.T) {
	user := models.User{ID: uuid.New(), Email: "a@example.com", Name: "Alice", Role: pkg.UserRoleStaff}
	repo := newFakeUserRepo(user)
	svc := NewUserService(zap.NewNop(), repo, &recordingAudit{})

	updated, err := svc.Update(context.Background(), "t1", user.ID, views.UserUpdateRequest{Name: "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "a@example.com", updated.Email, "empty fields keep prior values")
	assert.Equal(t, pkg.UserRoleStaff, updated.Role)
}
