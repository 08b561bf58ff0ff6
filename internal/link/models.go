package link

import (
	"galaxy-server/internal/galaxyobject"
)

// Link is an undirected edge between two sibling galaxy objects. Sides are
// kept in canonical order so that Link(a, b) and Link(b, a) are the same value.
type Link struct {
	ID int64               `json:"id,omitempty"`
	A  galaxyobject.Handle `json:"a"`
	B  galaxyobject.Handle `json:"b"`
}

// Key identifies a link independently of its orientation and row id
type Key struct {
	Lo galaxyobject.Handle
	Hi galaxyobject.Handle
}

func New(a, b galaxyobject.Handle) Link {
	if b.Less(a) {
		a, b = b, a
	}
	return Link{A: a, B: b}
}

func (l Link) Key() Key {
	if l.B.Less(l.A) {
		return Key{Lo: l.B, Hi: l.A}
	}
	return Key{Lo: l.A, Hi: l.B}
}

// Equal compares the endpoints only
func (l Link) Equal(other Link) bool {
	return l.Key() == other.Key()
}

func (l Link) IsLoop() bool {
	return l.A == l.B
}

// Touches reports whether id is one of the link endpoints
func (l Link) Touches(id int64) bool {
	return l.A.ID == id || l.B.ID == id
}
