package search

import "github.com/vburojevic/logsift/internal/domain"

// ring keeps the most recent records of a pass
type ring struct {
	buf   []*domain.Record
	head  int
	count int
}

func newRing(size int) *ring {
	if size <= 0 {
		size = 1
	}
	return &ring{buf: make([]*domain.Record, size)}
}

func (r *ring) push(rec *domain.Record) {
	r.buf[r.head] = rec
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// all returns the records oldest first
func (r *ring) all() []*domain.Record {
	out := make([]*domain.Record, r.count)
	if r.count < len(r.buf) {
		copy(out, r.buf[:r.count])
		return out
	}
	n := copy(out, r.buf[r.head:])
	copy(out[n:], r.buf[:r.head])
	return out
}
