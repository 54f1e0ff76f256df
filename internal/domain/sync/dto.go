package sync

import (
	"time"

	"fibertrace/internal/model"
)

// PushRequest carries a device's unsynced records for one collection.
type PushRequest struct {
	DeviceID   string         `json:"device_id"`
	Technician string         `json:"technician"`
	Collection string         `json:"collection"`
	Records    []model.Record `json:"records"`
}

// PushedRecord is the server's verdict on one uploaded record.
// LocalID is the id the client sent; Record is the authoritative
// server copy, which may carry a reassigned id or, on conflict, the
// newer server-side version the client must adopt.
type PushedRecord struct {
	LocalID  string       `json:"local_id"`
	Record   model.Record `json:"record"`
	Conflict bool         `json:"conflict,omitempty"`
}

// RejectedRecord names an upload the server refused outright.
type RejectedRecord struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type PushResponse struct {
	Accepted []PushedRecord   `json:"accepted"`
	Rejected []RejectedRecord `json:"rejected,omitempty"`
	// IDChanges maps old client-side ids to the ids the server
	// assigned, so the client can re-key cross-references.
	IDChanges  map[string]string `json:"id_changes,omitempty"`
	ServerTime time.Time         `json:"server_time"`
}

// ChangesResponse is the pull side: every record in the collection
// changed since the requested watermark, tombstones included.
type ChangesResponse struct {
	Collection string         `json:"collection"`
	Records    []model.Record `json:"records"`
	ServerTime time.Time      `json:"server_time"`
}
