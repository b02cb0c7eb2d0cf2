package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"
)

func newStaffFixture() (StaffService, *fakeAuth, *fakeNotifier) {
	repo := newFakeAuth(
		models.User{ID: 1, Email: "owner@store.tn", FullName: "Owner", Role: models.RoleOwner, IsActive: true},
		models.User{ID: 2, Email: "worker@store.tn", FullName: "Worker", Role: models.RoleWorker, IsActive: true},
	)
	n := &fakeNotifier{}
	return NewStaffService(repo, nil, n), repo, n
}

func TestStaff_CreateGeneratesPasswordAndInvites(t *testing.T) {
	svc, repo, n := newStaffFixture()

	res, err := svc.CreateStaff(context.Background(), CreateStaffRequest{
		Email:    "New@Store.tn",
		FullName: "New Hire",
		Phone:    utils.Ptr("+216 22 123 456"),
	})
	require.NoError(t, err)
	assert.True(t, res.InvitationSent)
	assert.Equal(t, "new@store.tn", res.User.Email)
	assert.Equal(t, models.RoleWorker, res.User.Role)
	assert.Equal(t, "22123456", *repo.users[res.User.ID].Phone)

	invite := n.last.(notify.StaffInvitation)
	assert.Len(t, invite.Password, generatedPasswordLength)
	assert.NotEqual(t, invite.Password, repo.users[res.User.ID].PasswordHash)
}

func TestStaff_CreateValidation(t *testing.T) {
	svc, _, _ := newStaffFixture()
	ctx := context.Background()

	_, err := svc.CreateStaff(ctx, CreateStaffRequest{Email: "bad", FullName: "Some One"})
	assert.ErrorIs(t, err, ErrStaffValidation)
	_, err = svc.CreateStaff(ctx, CreateStaffRequest{Email: "a@b.tn", FullName: "Some One", Role: "admin"})
	assert.ErrorIs(t, err, ErrStaffValidation)
	_, err = svc.CreateStaff(ctx, CreateStaffRequest{Email: "a@b.tn", FullName: "Some One", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = svc.CreateStaff(ctx, CreateStaffRequest{Email: "worker@store.tn", FullName: "Some One"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestStaff_InvitationTimeoutKeepsUser(t *testing.T) {
	svc, repo, n := newStaffFixture()
	n.block = true
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := svc.CreateStaff(ctx, CreateStaffRequest{Email: "slow@store.tn", FullName: "Slow Mail"})
	assert.ErrorIs(t, err, ErrNotifyTimeout)
	require.NotNil(t, res)
	assert.False(t, res.InvitationSent)
	assert.Contains(t, repo.users, res.User.ID)
}

func TestStaff_LastOwnerIsProtected(t *testing.T) {
	svc, _, _ := newStaffFixture()
	ctx := context.Background()

	_, err := svc.UpdateStaff(ctx, 1, UpdateStaffRequest{Role: utils.Ptr(models.RoleWorker)})
	assert.ErrorIs(t, err, ErrLastOwner)
	_, err = svc.UpdateStaff(ctx, 1, UpdateStaffRequest{IsActive: utils.Ptr(false)})
	assert.ErrorIs(t, err, ErrLastOwner)
	assert.ErrorIs(t, svc.DeleteStaff(ctx, 1, 2), ErrLastOwner)
	assert.ErrorIs(t, svc.DeleteStaff(ctx, 1, 1), ErrCannotDeleteSelf)

	promoted, err := svc.UpdateStaff(ctx, 2, UpdateStaffRequest{Role: utils.Ptr(models.RoleOwner)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, promoted.Role)
	require.NoError(t, svc.DeleteStaff(ctx, 1, 2))

	_, err = svc.GetStaff(ctx, 1)
	assert.ErrorIs(t, err, ErrStaffNotFound)
}
