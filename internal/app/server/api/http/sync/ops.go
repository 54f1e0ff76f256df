package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-push",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/push",
		Summary:     "Push local changes",
		Description: "Accepts a device's unsynced records for one collection, reassigns colliding identifiers and resolves concurrent edits",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) changesOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-changes",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/changes",
		Summary:     "Pull changes since a watermark",
		Description: "Returns records of a collection updated after the given time, tombstones included",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) devicesOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-devices",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/devices",
		Summary:     "List known devices",
		Description: "Returns every field installation that has pushed to this server",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
