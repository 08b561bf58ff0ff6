package system

import "galaxy-server/internal/galaxyobject"

// StarSystem is a leaf of the sector tree
type StarSystem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SectorID int64  `json:"sector_id"`
}

func (s StarSystem) Handle() galaxyobject.Handle {
	return galaxyobject.Handle{ID: s.ID, Kind: galaxyobject.KindSystem}
}
