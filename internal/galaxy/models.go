package galaxy

import (
	"time"

	"galaxy-server/internal/galaxyobject"
	"galaxy-server/internal/sector"
)

// Report summarizes one generate or resume run
type Report struct {
	RootID           int64         `json:"root_id"`
	Sectors          int           `json:"sectors"`
	Systems          int           `json:"systems"`
	Links            int           `json:"links"`
	ExhaustedBatches int           `json:"exhausted_batches"`
	PendingFutures   int           `json:"pending_futures"`
	Duration         time.Duration `json:"duration"`
}

func (r *Report) add(expansion *sector.Expansion) {
	r.Sectors++
	r.Systems += expansion.Systems
	r.Links += expansion.Links
	if expansion.LinksExhausted {
		r.ExhaustedBatches++
	}
}

type Stats struct {
	galaxyobject.Counts
	Roots int `json:"roots"`
	Links int `json:"links"`
}

type GenerateRequest struct {
	Radius float64 `json:"radius"`
	Stars  float64 `json:"stars"`
}

type ExpandRequest struct {
	Stars    float64 `json:"stars"`
	Radius   float64 `json:"radius"`
	ParentID *int64  `json:"parent_id"`
}

type FutureRequest struct {
	Stars  float64 `json:"stars"`
	Radius float64 `json:"radius"`
}
