package sync

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fibertrace/internal/domain/sync"
)

type MockServicer struct {
	mock.Mock
}

func (m *MockServicer) Push(ctx context.Context, req sync.PushRequest) (*sync.PushResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.PushResponse), args.Error(1)
}

func (m *MockServicer) Changes(ctx context.Context, collection string, since time.Time) (*sync.ChangesResponse, error) {
	args := m.Called(ctx, collection, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ChangesResponse), args.Error(1)
}

func (m *MockServicer) Devices(ctx context.Context) ([]sync.Device, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.Device), args.Error(1)
}

func newTestHandler(service sync.Servicer) *Handler {
	return NewHandler(service, slog.Default(), huma.Middlewares{})
}

func TestHandler_push(t *testing.T) {
	serverTime := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("forwards batch and returns service response", func(t *testing.T) {
		service := new(MockServicer)
		req := sync.PushRequest{DeviceID: "dev-a", Collection: "jobs"}
		service.On("Push", mock.Anything, req).Return(&sync.PushResponse{
			ServerTime: serverTime,
		}, nil)

		handler := newTestHandler(service)
		output, err := handler.push(context.Background(), &pushInput{Body: req})

		assert.NoError(t, err)
		assert.Equal(t, serverTime, output.Body.ServerTime)
		service.AssertExpectations(t)
	})

	t.Run("unknown collection becomes 422", func(t *testing.T) {
		service := new(MockServicer)
		service.On("Push", mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		handler := newTestHandler(service)
		output, err := handler.push(context.Background(), &pushInput{
			Body: sync.PushRequest{Collection: "bogus"},
		})

		assert.Nil(t, output)
		assert.Error(t, err)
		var status huma.StatusError
		assert.ErrorAs(t, err, &status)
		assert.Equal(t, 422, status.GetStatus())
	})
}

func TestHandler_changes(t *testing.T) {
	since := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	t.Run("passes watermark through", func(t *testing.T) {
		service := new(MockServicer)
		service.On("Changes", mock.Anything, "nodes", since).Return(&sync.ChangesResponse{
			Collection: "nodes",
		}, nil)

		handler := newTestHandler(service)
		output, err := handler.changes(context.Background(), &changesInput{
			Collection: "nodes",
			Since:      since,
		})

		assert.NoError(t, err)
		assert.Equal(t, "nodes", output.Body.Collection)
		service.AssertExpectations(t)
	})

	t.Run("service error becomes 422", func(t *testing.T) {
		service := new(MockServicer)
		service.On("Changes", mock.Anything, "bogus", mock.Anything).
			Return(nil, assert.AnError)

		handler := newTestHandler(service)
		output, err := handler.changes(context.Background(), &changesInput{Collection: "bogus"})

		assert.Nil(t, output)
		assert.Error(t, err)
	})
}

func TestHandler_devices(t *testing.T) {
	service := new(MockServicer)
	service.On("Devices", mock.Anything).Return([]sync.Device{
		{DeviceID: "dev-a", Technician: "tech-1", TotalPushed: 42},
	}, nil)

	handler := newTestHandler(service)
	output, err := handler.devices(context.Background(), &devicesInput{})

	assert.NoError(t, err)
	assert.Len(t, output.Body.Devices, 1)
	assert.Equal(t, "dev-a", output.Body.Devices[0].DeviceID)
	service.AssertExpectations(t)
}
