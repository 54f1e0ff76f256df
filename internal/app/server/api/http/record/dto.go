package record

import (
	"fibertrace/internal/model"
)

type listInput struct {
	Collection     string `path:"collection" example:"jobs" doc:"Collection name"`
	IncludeDeleted bool   `query:"include_deleted" doc:"Include tombstoned records"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Collection string         `json:"collection"`
	Records    []model.Record `json:"records"`
}

type getInput struct {
	Collection string `path:"collection" example:"jobs"`
	ID         string `path:"id" example:"JOB-001"`
}

type getOutput struct {
	Body model.Record
}

type overviewInput struct{}

type overviewOutput struct {
	Body overviewResponse
}

type overviewResponse struct {
	Counts map[model.Collection]int `json:"counts" doc:"Live record count per collection"`
}
