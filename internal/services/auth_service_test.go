package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

type fakeAuth struct {
	users     map[int64]*models.User
	tokens    map[int64]*models.PasswordResetToken
	nextUser  int64
	nextToken int64
}

func newFakeAuth(users ...models.User) *fakeAuth {
	f := &fakeAuth{users: map[int64]*models.User{}, tokens: map[int64]*models.PasswordResetToken{}}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
		if u.ID > f.nextUser {
			f.nextUser = u.ID
		}
	}
	return f
}

func (f *fakeAuth) CreateUser(_ context.Context, _ repositories.SQLExecutor, user *models.User) (int64, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return 0, repositories.ErrDuplicateKey
		}
	}
	f.nextUser++
	user.ID = f.nextUser
	cp := *user
	f.users[user.ID] = &cp
	return user.ID, nil
}

func (f *fakeAuth) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAuth) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAuth) GetUsers(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeAuth) UpdateUser(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeAuth) UpdatePassword(_ context.Context, _ repositories.SQLExecutor, id int64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeAuth) UpdateOnboarding(_ context.Context, _ repositories.SQLExecutor, id int64, completed bool, step int, tooltips bool) error {
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.OnboardingCompleted = completed
	u.OnboardingStep = step
	u.HelpTooltipsVisible = tooltips
	return nil
}

func (f *fakeAuth) TouchLastLogin(_ context.Context, id int64) error {
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeAuth) DeleteUser(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeAuth) CountActiveOwners(context.Context) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.Role == models.RoleOwner && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeAuth) CreateResetToken(_ context.Context, _ repositories.SQLExecutor, userID int64, hash string, expiresAt time.Time) (int64, error) {
	f.nextToken++
	f.tokens[f.nextToken] = &models.PasswordResetToken{ID: f.nextToken, UserID: userID, TokenHash: hash, ExpiresAt: expiresAt}
	return f.nextToken, nil
}

func (f *fakeAuth) GetResetToken(_ context.Context, id int64) (*models.PasswordResetToken, error) {
	t, ok := f.tokens[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeAuth) MarkResetTokenUsed(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	t, ok := f.tokens[id]
	if !ok || t.UsedAt != nil {
		return repositories.ErrNotFound
	}
	now := time.Now()
	t.UsedAt = &now
	return nil
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newAuthFixture(t *testing.T) (*authService, *fakeAuth, *fakeNotifier) {
	repo := newFakeAuth(
		models.User{ID: 1, Email: "owner@store.tn", PasswordHash: mustHash(t, "secret123"), FullName: "Owner", Role: models.RoleOwner, IsActive: true},
		models.User{ID: 2, Email: "gone@store.tn", PasswordHash: mustHash(t, "secret123"), FullName: "Gone", Role: models.RoleWorker},
	)
	n := &fakeNotifier{}
	svc := NewAuthService(repo, nil, &fakeTx{}, utils.NewTokenManager("test", time.Minute, time.Hour), n).(*authService)
	return svc, repo, n
}

func TestAuth_LoginAndRefresh(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: " Owner@Store.tn ", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(60), res.ExpiresIn)
	assert.NotNil(t, repo.users[1].LastLoginAt)

	refreshed, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), refreshed.User.ID)

	_, err = svc.Refresh(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_LoginRejections(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "owner@store.tn", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@store.tn", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginRequest{Email: "gone@store.tn", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "inactive users look like bad credentials")
}

func TestAuth_ChangePassword(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, 1, ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "short"}), ErrWeakPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, 1, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "longenough"}), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, 1, ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "longenough"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[1].PasswordHash), []byte("longenough")))
}

func TestAuth_PasswordResetFlow(t *testing.T) {
	svc, repo, n := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "owner@store.tn"}))
	require.Equal(t, []string{notify.KindPasswordReset}, n.kinds())
	payload := n.last.(notify.PasswordReset)
	assert.Equal(t, "fr", payload.Lang)
	assert.True(t, strings.HasPrefix(payload.Token, "1."))
	assert.NotContains(t, repo.tokens[1].TokenHash, strings.TrimPrefix(payload.Token, "1."))

	require.NoError(t, svc.ResetPassword(ctx, ResetPasswordRequest{Token: payload.Token, NewPassword: "brand-new-pw"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[1].PasswordHash), []byte("brand-new-pw")))

	err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: payload.Token, NewPassword: "another-pw"})
	assert.ErrorIs(t, err, ErrInvalidResetToken, "tokens are single use")
}

func TestAuth_PasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, repo, n := newAuthFixture(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: "nobody@store.tn"}))
	assert.Empty(t, n.kinds())
	assert.Empty(t, repo.tokens)
}

func TestAuth_ResetPasswordRejectsBadTokens(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err := repo.CreateResetToken(ctx, nil, 1, mustHash(t, "abc"), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	for _, token := range []string{"garbage", "x.abc", "99.abc", "1.wrong", "1.abc"} {
		err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "longenough"})
		assert.ErrorIs(t, err, ErrInvalidResetToken, token)
	}
}

func TestAuth_UpdateOnboarding(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	user, err := svc.UpdateOnboarding(context.Background(), 1, OnboardingRequest{Step: utils.Ptr(3), HelpTooltipsVisible: utils.Ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 3, user.OnboardingStep)
	assert.False(t, user.HelpTooltipsVisible)

	_, err = svc.UpdateOnboarding(context.Background(), 1, OnboardingRequest{Step: utils.Ptr(-1)})
	assert.ErrorIs(t, err, ErrStaffValidation)
}
