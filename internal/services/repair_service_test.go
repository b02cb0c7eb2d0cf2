package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

type fakeRepair struct {
	services map[int64]*models.ServiceCatalogItem
	requests map[int64]*models.ServiceRequest
	next     int64
}

func newFakeRepair(items ...models.ServiceCatalogItem) *fakeRepair {
	f := &fakeRepair{services: map[int64]*models.ServiceCatalogItem{}, requests: map[int64]*models.ServiceRequest{}}
	for i := range items {
		it := items[i]
		f.services[it.ID] = &it
	}
	return f
}

func (f *fakeRepair) CreateService(_ context.Context, _ repositories.SQLExecutor, item *models.ServiceCatalogItem) (int64, error) {
	f.next++
	item.ID = f.next
	cp := *item
	f.services[item.ID] = &cp
	return item.ID, nil
}

func (f *fakeRepair) GetServiceByID(_ context.Context, id int64) (*models.ServiceCatalogItem, error) {
	it, ok := f.services[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeRepair) GetServices(context.Context, *string, bool) ([]models.ServiceCatalogItem, error) {
	out := []models.ServiceCatalogItem{}
	for _, it := range f.services {
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeRepair) UpdateService(_ context.Context, _ repositories.SQLExecutor, item *models.ServiceCatalogItem) error {
	if _, ok := f.services[item.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *item
	f.services[item.ID] = &cp
	return nil
}

func (f *fakeRepair) DeleteService(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.services[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.services, id)
	return nil
}

func (f *fakeRepair) CreateRequest(_ context.Context, _ repositories.SQLExecutor, r *models.ServiceRequest) (int64, error) {
	f.next++
	r.ID = f.next
	cp := *r
	f.requests[r.ID] = &cp
	return r.ID, nil
}

func (f *fakeRepair) GetRequestByID(_ context.Context, id int64) (*models.ServiceRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepair) GetRequests(context.Context, models.ServiceRequestFilters) ([]models.ServiceRequest, int, error) {
	out := []models.ServiceRequest{}
	for _, r := range f.requests {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeRepair) UpdateRequest(_ context.Context, _ repositories.SQLExecutor, r *models.ServiceRequest) error {
	if _, ok := f.requests[r.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *r
	f.requests[r.ID] = &cp
	return nil
}

func (f *fakeRepair) DeleteRequest(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.requests[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.requests, id)
	return nil
}

func newRepairFixture() (*repairService, *fakeRepair, *fakeNotifier) {
	repo := newFakeRepair(models.ServiceCatalogItem{ID: 100, Name: "Board repair", Category: "console_repair", IsComplex: true, IsActive: true})
	repo.next = 100
	clients := newFakeClients(models.Client{ID: 3, Phone: "22123456", Name: "Sami"})
	n := &fakeNotifier{}
	svc := NewRepairService(repo, clients, nil, n, nil).(*repairService)
	svc.async = syncAsync
	return svc, repo, n
}

func TestRepair_CreateRequestLinksClientAndNotifies(t *testing.T) {
	svc, _, n := newRepairFixture()

	r, err := svc.CreateRequest(context.Background(), CreateServiceRequestRequest{
		ServiceID:        utils.Ptr(int64(100)),
		ClientName:       "Sami",
		ClientPhone:      "+216 22 123 456",
		DeviceType:       "PS5",
		IssueDescription: "HDMI port broken",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, r.ClientID)
	assert.Equal(t, int64(3), *r.ClientID)
	assert.True(t, r.IsComplex, "complexity is inherited from the catalog")
	assert.Equal(t, "normal", r.Priority)
	assert.Equal(t, []string{notify.KindServiceRequest}, n.kinds())
}

func TestRepair_CreateRequestValidation(t *testing.T) {
	svc, _, n := newRepairFixture()
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, CreateServiceRequestRequest{ClientName: "Sami", ClientPhone: "12345", DeviceType: "PS5", IssueDescription: "x"}, nil)
	assert.ErrorIs(t, err, ErrRepairValidation)
	_, err = svc.CreateRequest(ctx, CreateServiceRequestRequest{ServiceID: utils.Ptr(int64(7)), ClientName: "Sami", ClientPhone: "22123456", DeviceType: "PS5", IssueDescription: "x"}, nil)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Empty(t, n.kinds())
}

func TestRepair_StatusTransitions(t *testing.T) {
	svc, _, _ := newRepairFixture()
	ctx := context.Background()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	r, err := svc.CreateRequest(ctx, CreateServiceRequestRequest{ClientName: "Nour", ClientPhone: "55123456", DeviceType: "Phone", IssueDescription: "screen"}, nil)
	require.NoError(t, err)

	r, err = svc.UpdateRequest(ctx, r.ID, UpdateServiceRequestRequest{Status: utils.Ptr(models.RequestInProgress)})
	require.NoError(t, err)
	require.NotNil(t, r.StartedAt)
	assert.Equal(t, first, *r.StartedAt)

	svc.now = func() time.Time { return first.Add(time.Hour) }
	r, err = svc.UpdateRequest(ctx, r.ID, UpdateServiceRequestRequest{Status: utils.Ptr(models.RequestWaitingParts)})
	require.NoError(t, err)
	r, err = svc.UpdateRequest(ctx, r.ID, UpdateServiceRequestRequest{Status: utils.Ptr(models.RequestInProgress)})
	require.NoError(t, err)
	assert.Equal(t, first, *r.StartedAt, "started_at is stamped once")

	r, err = svc.UpdateRequest(ctx, r.ID, UpdateServiceRequestRequest{Status: utils.Ptr(models.RequestCompleted), FinalCost: utils.Ptr(45.5)})
	require.NoError(t, err)
	require.NotNil(t, r.CompletedAt)
	assert.Equal(t, 45.5, *r.FinalCost)

	_, err = svc.UpdateRequest(ctx, r.ID, UpdateServiceRequestRequest{Status: utils.Ptr(models.RequestPending)})
	assert.ErrorIs(t, err, ErrRequestClosed)
}
