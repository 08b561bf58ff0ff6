package sector

import (
	"galaxy-server/internal/galaxyobject"
	"galaxy-server/internal/link"
	"galaxy-server/internal/system"
)

type Sector struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parent_id"`
}

func (s Sector) Handle() galaxyobject.Handle {
	return galaxyobject.Handle{ID: s.ID, Kind: galaxyobject.KindSector}
}

// Future is a sector whose contents have not been generated yet
type Future struct {
	ID       int64   `json:"id"`
	ParentID int64   `json:"parent_id"`
	Stars    float64 `json:"stars"`
	Radius   float64 `json:"radius"`
}

func (f Future) Handle() galaxyobject.Handle {
	return galaxyobject.Handle{ID: f.ID, Kind: galaxyobject.KindSectorFuture}
}

// Expansion describes what one expand or fulfill step created
type Expansion struct {
	Sector         Sector   `json:"sector"`
	Systems        int      `json:"systems"`
	Futures        []Future `json:"futures"`
	Links          int      `json:"links"`
	LinksRequested int      `json:"links_requested"`
	LinksExhausted bool     `json:"links_exhausted"`
}

// Deletion counts the rows removed by a cascading delete
type Deletion struct {
	SectorID int64 `json:"sector_id"`
	Sectors  int64 `json:"sectors"`
	Futures  int64 `json:"futures"`
	Systems  int64 `json:"systems"`
	Links    int64 `json:"links"`
}

// Detail is a sector with its direct children and every link touching one of them
type Detail struct {
	Sector  Sector              `json:"sector"`
	Sectors []Sector            `json:"sectors"`
	Futures []Future            `json:"futures"`
	Systems []system.StarSystem `json:"systems"`
	Links   []link.Link         `json:"links"`
}
