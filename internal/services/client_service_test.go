package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/pkg/utils"
)

func TestClientService_CreateNormalisesPhone(t *testing.T) {
	repo := newFakeClients()
	svc := NewClientService(repo, nil)

	c, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Phone: "+216 22 123 456", Name: " Yassine ", Email: utils.Ptr("Yassine@Example.COM"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "22123456", c.Phone)
	assert.Equal(t, "Yassine", c.Name)
	assert.Equal(t, "yassine@example.com", *c.Email)

	_, err = svc.CreateClient(context.Background(), CreateClientRequest{Phone: "22123456", Name: "Other"}, nil)
	assert.ErrorIs(t, err, ErrPhoneNumberExists)
}

func TestClientService_Validation(t *testing.T) {
	svc := NewClientService(newFakeClients(), nil)
	ctx := context.Background()

	_, err := svc.CreateClient(ctx, CreateClientRequest{Phone: "12345678", Name: "Ali"}, nil)
	assert.ErrorIs(t, err, ErrClientValidation)
	_, err = svc.CreateClient(ctx, CreateClientRequest{Phone: "22123456", Name: "A"}, nil)
	assert.ErrorIs(t, err, ErrClientValidation)
	_, err = svc.CreateClient(ctx, CreateClientRequest{Phone: "22123456", Name: "Ali", Email: utils.Ptr("not-an-email")}, nil)
	assert.ErrorIs(t, err, ErrClientValidation)
}

func TestClientService_GetByPhone(t *testing.T) {
	repo := newFakeClients(models.Client{ID: 1, Phone: "98765432", Name: "Nour"})
	svc := NewClientService(repo, nil)

	c, err := svc.GetClientByPhone(context.Background(), "00216 98 765 432")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = svc.GetClientByPhone(context.Background(), "22000000")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_UpdateKeepsPoints(t *testing.T) {
	repo := newFakeClients(
		models.Client{ID: 1, Phone: "98765432", Name: "Nour", Points: 40},
		models.Client{ID: 2, Phone: "22111111", Name: "Hedi"},
	)
	svc := NewClientService(repo, nil)
	ctx := context.Background()

	c, err := svc.UpdateClient(ctx, 1, UpdateClientRequest{Name: utils.Ptr("Nour B")})
	require.NoError(t, err)
	assert.Equal(t, "Nour B", c.Name)
	assert.Equal(t, 40, c.Points)

	_, err = svc.UpdateClient(ctx, 1, UpdateClientRequest{Phone: utils.Ptr("22111111")})
	assert.ErrorIs(t, err, ErrPhoneNumberExists)

	assert.ErrorIs(t, svc.DeleteClient(ctx, 9), ErrClientNotFound)
}
