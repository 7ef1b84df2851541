package client

import "sync"

// vuelo tracks which document identifiers have a request in flight.
// One mutating request per document at a time; different documents
// proceed concurrently.
type vuelo struct {
	mu  sync.Mutex
	ids map[int64]bool
}

func nuevoVuelo() *vuelo {
	return &vuelo{ids: map[int64]bool{}}
}

func (v *vuelo) adquirir(id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ids[id] {
		return ErrOperacionEnCurso
	}
	v.ids[id] = true
	return nil
}

func (v *vuelo) liberar(id int64) {
	v.mu.Lock()
	delete(v.ids, id)
	v.mu.Unlock()
}

// EnVuelo reports whether the document currently has a request in
// flight, for UI state (disabled buttons, spinners).
func (c *Client) EnVuelo(id int64) bool {
	c.enVuelo.mu.Lock()
	defer c.enVuelo.mu.Unlock()
	return c.enVuelo.ids[id]
}
