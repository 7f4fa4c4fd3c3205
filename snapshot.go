package constrain

import "github.com/reglet-dev/constrain/observable"

// scalarSink is the deferred snapshot of a scalar property: values that pass
// individual constraints are staged, and the staged value is published only
// when a pass ends with every constraint valid. The snapshot therefore never
// exposes an intermediate invalid value.
type scalarSink[T any] struct {
	out    *observable.Value[T]
	staged T
	has    bool
}

func (s *scalarSink[T]) store(value T) {
	s.staged = value
	s.has = true
}

func (s *scalarSink[T]) commit() func() {
	if !s.has {
		return nil
	}
	value := s.staged
	s.has = false
	return func() { s.out.Set(value) }
}

// listSink commits by replaying the aggregated structural diff onto the
// snapshot list, so observers of the constrained list see incremental
// events instead of full replacements. The live structural-change path
// feeds the aggregator directly; store is therefore a no-op.
type listSink[E comparable] struct {
	agg *listChangeAggregator[E]
	out *observable.List[E]
}

func (s *listSink[E]) store([]E) {}

func (s *listSink[E]) commit() func() {
	patch, ok := s.agg.complete()
	if !ok {
		return nil
	}
	return func() {
		s.out.ReplaceRange(patch.from, patch.from+patch.removeSize, patch.added...)
	}
}

// setSink commits the aggregated added/removed element sets.
type setSink[E comparable] struct {
	agg *setChangeAggregator[E]
	out *observable.Set[E]
}

func (s *setSink[E]) store([]E) {}

func (s *setSink[E]) commit() func() {
	removed, added := s.agg.complete()
	if len(removed) == 0 && len(added) == 0 {
		return nil
	}
	return func() {
		for e := range removed {
			s.out.Remove(e)
		}
		for e := range added {
			s.out.Add(e)
		}
	}
}

// mapSink commits the aggregated removed-key and added-entry sets.
type mapSink[K comparable, V any] struct {
	agg *mapChangeAggregator[K, V]
	out *observable.Map[K, V]
}

func (s *mapSink[K, V]) store(map[K]V) {}

func (s *mapSink[K, V]) commit() func() {
	removed, added := s.agg.complete()
	if len(removed) == 0 && len(added) == 0 {
		return nil
	}
	return func() {
		for k := range removed {
			s.out.Delete(k)
		}
		for k, v := range added {
			s.out.Put(k, v)
		}
	}
}
