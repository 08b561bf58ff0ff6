package galaxyobject

import (
	"database/sql/driver"
	"fmt"
)

// Kind tags which concrete table currently holds a galaxy object id
type Kind string

const (
	KindSystem       Kind = "system"
	KindSector       Kind = "sector"
	KindSectorFuture Kind = "sector_future"
)

var Kinds = []Kind{KindSystem, KindSector, KindSectorFuture}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSystem, KindSector, KindSectorFuture:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown galaxy object kind %q", s)
	}
}

func (k Kind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *Kind) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into galaxy object kind", src)
	}

	parsed, err := ParseKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Handle is the shared identity of a sector, future or system
type Handle struct {
	ID   int64 `json:"id"`
	Kind Kind  `json:"kind"`
}

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d", h.Kind, h.ID)
}

// Less orders handles by id, then kind
func (h Handle) Less(other Handle) bool {
	if h.ID != other.ID {
		return h.ID < other.ID
	}
	return h.Kind < other.Kind
}

// Handles tags every id with kind
func Handles(ids []int64, kind Kind) []Handle {
	handles := make([]Handle, len(ids))
	for i, id := range ids {
		handles[i] = Handle{ID: id, Kind: kind}
	}
	return handles
}

type Counts struct {
	Systems       int `json:"systems"`
	Sectors       int `json:"sectors"`
	SectorFutures int `json:"sector_futures"`
}

func (c Counts) Total() int {
	return c.Systems + c.Sectors + c.SectorFutures
}
