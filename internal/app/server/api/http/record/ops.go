package record

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) overviewOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-overview",
		Method:      http.MethodGet,
		Path:        "/api/v1/records",
		Summary:     "Record counts per collection",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/records/{collection}",
		Summary:     "List records of a collection",
		Description: "Returns the server's view of a collection, optionally with tombstones",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/records/{collection}/{id}",
		Summary:     "Fetch a single record",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}
