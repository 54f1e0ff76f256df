package record

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"fibertrace/internal/infrastructure/storage/postgres"
	"fibertrace/internal/model"
)

// Repository is the read-only record store behind the browse endpoints.
type Repository interface {
	List(ctx context.Context, c model.Collection, includeDeleted bool) ([]model.Record, error)
	Get(ctx context.Context, c model.Collection, id string) (model.Record, error)
	Count(ctx context.Context) (map[model.Collection]int, error)
}

type Handler struct {
	repo       Repository
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(repo Repository, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		repo:       repo,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.overviewOp(), h.overview)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.getOp(), h.get)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	c := model.Collection(input.Collection)
	if !c.Valid() {
		return nil, huma.Error422UnprocessableEntity("unknown collection " + input.Collection)
	}

	records, err := h.repo.List(ctx, c, input.IncludeDeleted)
	if err != nil {
		h.log.Error("failed to list records", "collection", c, "error", err)
		return nil, huma.Error500InternalServerError("failed to list records")
	}

	return &listOutput{
		Body: listResponse{
			Collection: input.Collection,
			Records:    records,
		},
	}, nil
}

func (h *Handler) get(ctx context.Context, input *getInput) (*getOutput, error) {
	c := model.Collection(input.Collection)
	if !c.Valid() {
		return nil, huma.Error422UnprocessableEntity("unknown collection " + input.Collection)
	}

	rec, err := h.repo.Get(ctx, c, input.ID)
	if err != nil {
		if errors.Is(err, postgres.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("record not found")
		}
		h.log.Error("failed to get record", "collection", c, "id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("failed to get record")
	}

	return &getOutput{Body: rec}, nil
}

func (h *Handler) overview(ctx context.Context, _ *overviewInput) (*overviewOutput, error) {
	counts, err := h.repo.Count(ctx)
	if err != nil {
		h.log.Error("failed to count records", "error", err)
		return nil, huma.Error500InternalServerError("failed to count records")
	}

	return &overviewOutput{
		Body: overviewResponse{
			Counts: counts,
		},
	}, nil
}
