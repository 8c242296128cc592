package store

import (
	"go.uber.org/zap"

	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/domain"
)

// Store is the process-wide order collection every role view reads from.
// All mutation funnels through a single loop goroutine, so the merge policy
// (whole-record replace, last-applied-wins) is literally the order in which
// operations arrive on the channel. No component mutates a record in place.
type Store struct {
	lg *logger.Logger

	ops  chan func(*state)
	quit chan struct{}
}

type state struct {
	orders []domain.OrderRecord
	index  map[string]int // id -> position in orders
}

// Init starts the merge loop. Call Teardown when the session ends.
func Init(lg *logger.Logger) *Store {
	s := &Store{
		lg:   lg,
		ops:  make(chan func(*state)),
		quit: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Store) loop() {
	st := state{index: make(map[string]int)}
	for {
		select {
		case op := <-s.ops:
			op(&st)
		case <-s.quit:
			return
		}
	}
}

// do runs op on the loop goroutine and waits for it. Returns false after
// Teardown.
func (s *Store) do(op func(*state)) bool {
	done := make(chan struct{})
	wrapped := func(st *state) {
		op(st)
		close(done)
	}
	select {
	case s.ops <- wrapped:
	case <-s.quit:
		return false
	}
	select {
	case <-done:
		return true
	case <-s.quit:
		return false
	}
}

// Teardown stops the loop. Subsequent calls are no-ops and reads return
// zero values.
func (s *Store) Teardown() {
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
}

func prepend(st *state, rec domain.OrderRecord) {
	st.orders = append([]domain.OrderRecord{rec}, st.orders...)
	for id, i := range st.index {
		st.index[id] = i + 1
	}
	st.index[rec.ID] = 0
}

// Put is the direct path: the authoritative record returned by a successful
// create or transition call. Replaces in place when known, prepends when new.
func (s *Store) Put(rec domain.OrderRecord) {
	if rec.ID == "" {
		return
	}
	s.do(func(st *state) {
		if i, ok := st.index[rec.ID]; ok {
			st.orders[i] = rec
			return
		}
		prepend(st, rec)
	})
}

// Apply is the push-event path. order:new prepends only when the id is
// absent; updates for unknown ids are dropped without error, since the record
// may belong to a different actor's filtered view.
func (s *Store) Apply(ev domain.PushEvent) {
	s.do(func(st *state) {
		i, known := st.index[ev.OrderID]
		switch ev.Event {
		case domain.EventOrderNew:
			if known {
				return
			}
			prepend(st, *ev.Order)
		default:
			if !known {
				s.lg.Debug("push_update_for_unknown_order", zap.String("order_id", ev.OrderID))
				return
			}
			st.orders[i] = *ev.Order
		}
	})
}

// ReplaceAll swaps the whole collection; used by the re-fetch-on-mount
// backstop since the push channel guarantees nothing.
func (s *Store) ReplaceAll(recs []domain.OrderRecord) {
	s.do(func(st *state) {
		st.orders = append([]domain.OrderRecord(nil), recs...)
		st.index = make(map[string]int, len(recs))
		for i, r := range st.orders {
			st.index[r.ID] = i
		}
	})
}

func (s *Store) Get(id string) (domain.OrderRecord, bool) {
	var rec domain.OrderRecord
	var ok bool
	s.do(func(st *state) {
		var i int
		if i, ok = st.index[id]; ok {
			rec = st.orders[i]
		}
	})
	return rec, ok
}

// List returns a copy in store order (newest first).
func (s *Store) List() []domain.OrderRecord {
	var out []domain.OrderRecord
	s.do(func(st *state) {
		out = append([]domain.OrderRecord(nil), st.orders...)
	})
	return out
}

func (s *Store) Len() int {
	n := 0
	s.do(func(st *state) { n = len(st.orders) })
	return n
}
