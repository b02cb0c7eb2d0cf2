package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/notify"
)

func TestContact_Validation(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewContactService(n)
	ctx := context.Background()

	err := svc.Send(ctx, ContactRequest{Name: "A", Email: "a@b.tn", Message: "hi"})
	assert.ErrorIs(t, err, ErrContactValidation)
	err = svc.Send(ctx, ContactRequest{Name: "Amine", Email: "nope", Message: "hi"})
	assert.ErrorIs(t, err, ErrContactValidation)

	require.NoError(t, svc.Send(ctx, ContactRequest{Name: "Amine", Email: "a@b.tn", Message: "<b>hello</b>"}))
	assert.Equal(t, "bhello/b", n.last.(notify.ContactForm).Message)
	assert.Equal(t, "Contact", n.last.(notify.ContactForm).Subject)
}

func TestContact_NotifierFailure(t *testing.T) {
	n := &fakeNotifier{err: notify.ErrUnavailable}
	svc := NewContactService(n)

	err := svc.Send(context.Background(), ContactRequest{Name: "Amine", Email: "a@b.tn", Message: "hello"})
	assert.Error(t, err)
}
