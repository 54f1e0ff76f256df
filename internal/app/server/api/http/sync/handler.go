package sync

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"fibertrace/internal/app/server/api/http/middleware/auth"
	"fibertrace/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pushOp(), h.push)
	huma.Register(api, h.changesOp(), h.changes)
	huma.Register(api, h.devicesOp(), h.devices)
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	if input.Body.DeviceID == "" {
		if device, ok := auth.GetDeviceID(ctx); ok {
			input.Body.DeviceID = device
		}
	}

	response, err := h.service.Push(ctx, input.Body)
	if err != nil {
		h.log.Warn("push rejected", "collection", input.Body.Collection, "error", err)
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	return &pushOutput{
		Body: *response,
	}, nil
}

func (h *Handler) changes(ctx context.Context, input *changesInput) (*changesOutput, error) {
	response, err := h.service.Changes(ctx, input.Collection, input.Since)
	if err != nil {
		h.log.Warn("changes request rejected", "collection", input.Collection, "error", err)
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	return &changesOutput{
		Body: *response,
	}, nil
}

func (h *Handler) devices(ctx context.Context, _ *devicesInput) (*devicesOutput, error) {
	devices, err := h.service.Devices(ctx)
	if err != nil {
		h.log.Error("failed to list devices", "error", err)
		return nil, huma.Error500InternalServerError("failed to list devices")
	}

	return &devicesOutput{
		Body: devicesResponse{
			Devices: devices,
		},
	}, nil
}
