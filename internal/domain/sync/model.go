package sync

import "time"

// Device is one field installation known to the server.
type Device struct {
	DeviceID    string    `json:"device_id"`
	Technician  string    `json:"technician,omitempty"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	TotalPushed int       `json:"total_pushed"`
}
