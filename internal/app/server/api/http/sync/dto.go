package sync

import (
	"time"

	"fibertrace/internal/domain/sync"
)

type pushInput struct {
	Body sync.PushRequest
}

type pushOutput struct {
	Body sync.PushResponse
}

type changesInput struct {
	Collection string    `query:"collection" example:"jobs" doc:"Collection to pull changes from"`
	Since      time.Time `query:"since" required:"false" doc:"Watermark; records updated after it are returned"`
}

type changesOutput struct {
	Body sync.ChangesResponse
}

type devicesInput struct{}

type devicesOutput struct {
	Body devicesResponse
}

type devicesResponse struct {
	Devices []sync.Device `json:"devices"`
}
