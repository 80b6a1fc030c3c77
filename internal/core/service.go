package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"ohana/pkg/domain"
)

// Operation names reported to loggers, metrics and tracers.
const (
	OpGetPerson       = "get_person"
	OpGetPeople       = "get_people"
	OpGetShortestPath = "get_shortest_path"
	OpSearchPeople    = "search_people"
	OpSearchPlaces    = "search_places"
	OpGetLocation     = "get_location"
)

// Service is the query engine. It answers read-only queries over one
// immutable Snapshot and is safe for concurrent use.
type Service struct {
	snap    *Snapshot
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	now     func() time.Time
}

// NewService constructs a query engine over snap. A nil snapshot serves an
// empty population.
func NewService(snap *Snapshot, opts ...ServiceOption) *Service {
	if snap == nil {
		snap = EmptySnapshot()
	}
	s := &Service{
		snap:    snap,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the snapshot the service answers from.
func (s *Service) Snapshot() *Snapshot { return s.snap }

// Stats reports the counts of the served snapshot.
func (s *Service) Stats() SnapshotStats { return s.snap.Stats() }

func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	elapsed := s.now().Sub(start)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		if domain.IsValidation(err) {
			s.logger.Debug("query rejected", "operation", op, "error", err)
		} else {
			s.logger.Warn("query failed", "operation", op, "error", err)
		}
		return err
	}
	s.logger.Debug("query served", "operation", op, "duration", elapsed)
	return nil
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return domain.NewValidationError(field, "must be a positive integer")
	}
	return nil
}

// GetPerson returns the person with id, or nil when no such person exists.
func (s *Service) GetPerson(ctx context.Context, id int64) (*Person, error) {
	var out *Person
	err := s.run(ctx, OpGetPerson, func(context.Context) error {
		if err := validateID("id", id); err != nil {
			return err
		}
		if p, ok := s.snap.store.Person(id); ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetLocation returns the location with id, or nil when no such location exists.
func (s *Service) GetLocation(ctx context.Context, id int64) (*Location, error) {
	var out *Location
	err := s.run(ctx, OpGetLocation, func(context.Context) error {
		if err := validateID("id", id); err != nil {
			return err
		}
		if l, ok := s.snap.store.Location(id); ok {
			out = &l
		}
		return nil
	})
	return out, err
}

// GetPeople pages through the population in ascending id order. A nil limit
// returns every record from offset on; a nil offset starts at zero.
func (s *Service) GetPeople(ctx context.Context, limit, offset *int) ([]Person, error) {
	var out []Person
	err := s.run(ctx, OpGetPeople, func(context.Context) error {
		start, count := 0, -1
		if offset != nil {
			if *offset < 0 {
				return domain.NewValidationError("offset", "must not be negative")
			}
			start = *offset
		}
		if limit != nil {
			if *limit < 0 {
				return domain.NewValidationError("limit", "must not be negative")
			}
			count = *limit
		}
		out = s.snap.store.ListPeople(start, count)
		return nil
	})
	return out, err
}

// GetShortestPath returns the people on a shortest parent/child path from
// person1 to person2, both inclusive. When either person is unknown or the two
// are not related the result is empty, not an error.
func (s *Service) GetShortestPath(ctx context.Context, person1, person2 int64) ([]Person, error) {
	path, err := s.ShortestPathDetail(ctx, person1, person2)
	if errors.Is(err, domain.ErrNotFound) {
		return []Person{}, nil
	}
	return path, err
}

// ShortestPathDetail is GetShortestPath for callers that need to tell an
// unknown person (domain.ErrUnknownPerson) from unrelated people (domain.ErrNoPath).
func (s *Service) ShortestPathDetail(ctx context.Context, person1, person2 int64) ([]Person, error) {
	var out []Person
	var notFound error
	err := s.run(ctx, OpGetShortestPath, func(ctx context.Context) error {
		if err := validateID("person1", person1); err != nil {
			return err
		}
		if err := validateID("person2", person2); err != nil {
			return err
		}
		ids, err := s.snap.graph.ShortestPath(ctx, person1, person2)
		if errors.Is(err, domain.ErrNotFound) {
			// Absence is a valid answer; it is not counted as a failed operation.
			notFound = err
			return nil
		}
		if err != nil {
			return err
		}
		out = s.snap.store.People(ids)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return out, nil
}

func validateSearchText(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewValidationError("text", "must contain at least one non-space character")
	}
	return nil
}

// SearchPeople returns people whose names match text, best matches first.
func (s *Service) SearchPeople(ctx context.Context, text string) ([]Person, error) {
	var out []Person
	err := s.run(ctx, OpSearchPeople, func(context.Context) error {
		if err := validateSearchText(text); err != nil {
			return err
		}
		out = s.snap.store.People(hitIDs(s.snap.index.SearchPeople(text)))
		return nil
	})
	return out, err
}

// SearchPlaces returns locations whose name or description match text, best matches first.
func (s *Service) SearchPlaces(ctx context.Context, text string) ([]Location, error) {
	var out []Location
	err := s.run(ctx, OpSearchPlaces, func(context.Context) error {
		if err := validateSearchText(text); err != nil {
			return err
		}
		out = s.snap.store.Locations(hitIDs(s.snap.index.SearchPlaces(text)))
		return nil
	})
	return out, err
}
