package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fibertrace/internal/domain/entity"
	"fibertrace/internal/domain/identifier"
	"fibertrace/internal/model"
	"fibertrace/internal/utils/clock"
)

// Servicer is the sync service interface consumed by the HTTP layer.
type Servicer interface {
	// Push lands a device's batch: validates, renumbers colliding
	// identifiers, resolves concurrent edits last-writer-wins and
	// stores the result.
	Push(ctx context.Context, req PushRequest) (*PushResponse, error)

	// Changes returns records of a collection updated after the
	// watermark, tombstones included.
	Changes(ctx context.Context, collection string, since time.Time) (*ChangesResponse, error)

	// Devices lists every field installation the server has seen.
	Devices(ctx context.Context) ([]Device, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	clk  clock.Clock
}

func NewService(repo Repository, log *slog.Logger, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		repo: repo,
		log:  log,
		clk:  clk,
	}
}

// stagedRecord is an upload that passed validation and id assignment.
type stagedRecord struct {
	localID string
	ent     model.Entity
}

func (s *Service) Push(ctx context.Context, req PushRequest) (*PushResponse, error) {
	c := model.Collection(req.Collection)
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", req.Collection)
	}

	existing, err := s.repo.LoadCollection(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", c, err)
	}

	byID := make(map[string]model.Record, len(existing))
	ids := make([]string, 0, len(existing)+len(req.Records))
	for _, rec := range existing {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	now := s.clk.Now()
	resp := &PushResponse{
		ServerTime: now,
		IDChanges:  make(map[string]string),
	}

	var staged []stagedRecord
	for _, rec := range req.Records {
		if rec.Collection != c {
			resp.Rejected = append(resp.Rejected, RejectedRecord{
				ID:     rec.ID,
				Reason: fmt.Sprintf("record belongs to collection %s, not %s", rec.Collection, c),
			})
			continue
		}

		ent, err := entity.Decode(rec)
		if err != nil {
			resp.Rejected = append(resp.Rejected, RejectedRecord{ID: rec.ID, Reason: err.Error()})
			continue
		}
		env := ent.Env()
		if !env.Deleted {
			if err := ent.Validate(); err != nil {
				resp.Rejected = append(resp.Rejected, RejectedRecord{ID: env.ID, Reason: err.Error()})
				continue
			}
		}

		localID := env.ID
		srv, exists := byID[localID]

		// Two devices can allocate the same code offline. A colliding
		// id with a different creation time is a different record and
		// gets renumbered; temporary ids are always renumbered.
		if strings.HasPrefix(localID, model.TempIDPrefix) ||
			(exists && !srv.CreatedAt.Equal(env.CreatedAt)) {
			newID := identifier.NextID(ent.CodePrefix(), identifier.DefaultWidth, ids)
			ids = append(ids, newID)
			resp.IDChanges[localID] = newID
			env.ApplyChange("id", localID, newID, model.RemoteSyncActor, "id reassigned during sync", now)
			env.ID = newID
			exists = false
		} else if !exists {
			ids = append(ids, localID)
		}

		// Same record edited on another device since this copy left the
		// field: the newer server version wins and travels back.
		if exists && srv.UpdatedAt.After(env.UpdatedAt) {
			srv.Synced = true
			resp.Accepted = append(resp.Accepted, PushedRecord{
				LocalID:  localID,
				Record:   srv,
				Conflict: true,
			})
			continue
		}

		staged = append(staged, stagedRecord{localID: localID, ent: ent})
	}

	toStore := make([]model.Record, 0, len(staged))
	for _, st := range staged {
		st.ent.Env().Synced = true
		rec, err := entity.Encode(st.ent)
		if err != nil {
			resp.Rejected = append(resp.Rejected, RejectedRecord{ID: st.ent.Env().ID, Reason: err.Error()})
			continue
		}
		toStore = append(toStore, rec)
		resp.Accepted = append(resp.Accepted, PushedRecord{LocalID: st.localID, Record: rec})
	}

	if len(toStore) > 0 {
		if err := s.repo.UpsertRecords(ctx, toStore); err != nil {
			return nil, fmt.Errorf("failed to store records: %w", err)
		}
	}

	if req.DeviceID != "" {
		if err := s.repo.TouchDevice(ctx, req.DeviceID, req.Technician, len(toStore), now); err != nil {
			s.log.Warn("failed to record device sighting", "device", req.DeviceID, "error", err)
		}
	}

	if len(resp.IDChanges) == 0 {
		resp.IDChanges = nil
	}

	s.log.Info("push processed",
		"collection", c,
		"device", req.DeviceID,
		"accepted", len(resp.Accepted),
		"rejected", len(resp.Rejected),
		"reassigned", len(resp.IDChanges),
	)

	return resp, nil
}

func (s *Service) Changes(ctx context.Context, collection string, since time.Time) (*ChangesResponse, error) {
	c := model.Collection(collection)
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	records, err := s.repo.ChangedSince(ctx, c, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load changes for %s: %w", c, err)
	}

	return &ChangesResponse{
		Collection: collection,
		Records:    records,
		ServerTime: s.clk.Now(),
	}, nil
}

func (s *Service) Devices(ctx context.Context) ([]Device, error) {
	return s.repo.ListDevices(ctx)
}
