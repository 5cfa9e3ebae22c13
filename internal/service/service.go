// Package service exposes the per-entity query and mutation accessors
// that UI surfaces call. Reads go through the query cache; writes go
// straight to the backend and trigger one invalidation pass over the
// declared dependent entities. All writes are pessimistic: nothing is
// reflected locally until the server confirms it.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"banhangso/client/internal/api"
	"banhangso/client/internal/domain"
	"banhangso/client/internal/notify"
	"banhangso/client/internal/querycache"
)

type Service struct {
	api      *api.Client
	cache    *querycache.Cache
	notifier notify.Notifier
	validate *validator.Validate
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]int
}

func New(client *api.Client, cache *querycache.Cache, notifier notify.Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:      client,
		cache:    cache,
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		pending:  make(map[string]int),
	}
}

// Cache exposes the query cache for subscription by view layers.
func (s *Service) Cache() *querycache.Cache { return s.cache }

// Saving reports whether a save of the entity is in flight. Callers
// must disable the triggering control while this is true; the service
// itself does not block a second dispatch.
func (s *Service) Saving(entity string) bool { return s.isPending(entity + ":save") }

// Deleting reports whether a delete of the entity is in flight.
func (s *Service) Deleting(entity string) bool { return s.isPending(entity + ":delete") }

func (s *Service) isPending(op string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[op] > 0
}

func (s *Service) begin(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[op]++
}

func (s *Service) end(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[op]--
	if s.pending[op] <= 0 {
		delete(s.pending, op)
	}
}

// listKey derives the cache key for a list read. Free-form values are
// escaped so no search string can collide with another key tuple.
func listKey(entity string, p domain.ListParams) querycache.Key {
	params := make([]string, 0, 4)
	if p.Page > 0 {
		params = append(params, "page="+strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		params = append(params, "limit="+strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		params = append(params, "search="+url.QueryEscape(p.Search))
	}
	if p.PartyID != "" {
		params = append(params, "party="+url.QueryEscape(p.PartyID))
	}
	return querycache.NewKey(entity, params...)
}

func detailKey(entity, id string) querycache.Key {
	return querycache.NewKey(entity, "id="+id)
}

// list is the shared read path: cache key from params, fetch on
// miss/stale via the normalized api.List. Read errors return to the
// caller only; no notification is raised for read failures.
func list[T any](ctx context.Context, s *Service, entity, path string, p domain.ListParams) (domain.Page[T], error) {
	return querycache.Fetch(ctx, s.cache, listKey(entity, p), func(ctx context.Context) (domain.Page[T], error) {
		return api.List[T](ctx, s.api, path, p)
	})
}

func get[T any](ctx context.Context, s *Service, entity, path, id string) (T, error) {
	return querycache.Fetch(ctx, s.cache, detailKey(entity, id), func(ctx context.Context) (T, error) {
		var raw json.RawMessage
		if err := s.api.Get(ctx, path+"/"+id, &raw); err != nil {
			var zero T
			return zero, err
		}
		return api.DecodeEntity[T](raw)
	})
}

// save performs exactly one HTTP call per dispatch: POST when the input
// has no identity, PUT when it does. On success it runs one invalidation
// pass over the entity and its dependents and raises a success toast;
// on failure the error is returned unchanged so the calling form stays
// open, and an error toast is raised as a side channel.
func save[T any](ctx context.Context, s *Service, entity, path, id string, input T, label string) (T, error) {
	var zero T
	if err := s.validate.Struct(input); err != nil {
		return zero, fmt.Errorf("validate %s: %w", entity, err)
	}

	op := entity + ":save"
	s.begin(op)
	defer s.end(op)

	method, target := http.MethodPost, path
	if id != "" {
		method, target = http.MethodPut, path+"/"+id
	}
	opts := &api.RequestOptions{Headers: map[string]string{"Idempotency-Key": uuid.NewString()}}

	var raw json.RawMessage
	if err := s.api.Do(ctx, method, target, input, &raw, opts); err != nil {
		s.notifier.Error(fmt.Sprintf("%s: %v", label, err))
		return zero, err
	}
	saved, err := api.DecodeEntity[T](raw)
	if err != nil {
		return zero, err
	}

	s.cache.InvalidateWithDependents(entity)
	s.notifier.Success(label + " saved")
	return saved, nil
}

func del(ctx context.Context, s *Service, entity, path, id, label string) error {
	op := entity + ":delete"
	s.begin(op)
	defer s.end(op)

	if err := s.api.Delete(ctx, path+"/"+id); err != nil {
		s.notifier.Error(fmt.Sprintf("%s: %v", label, err))
		return err
	}
	s.cache.InvalidateWithDependents(entity)
	s.notifier.Success(label + " deleted")
	return nil
}

// convert posts to a document conversion endpoint (quote -> order,
// order -> invoice) and invalidates both sides.
func convert[T any](ctx context.Context, s *Service, srcEntity, dstEntity, path string) (T, error) {
	var zero T
	op := dstEntity + ":save"
	s.begin(op)
	defer s.end(op)

	opts := &api.RequestOptions{Headers: map[string]string{"Idempotency-Key": uuid.NewString()}}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, path, nil, &raw, opts); err != nil {
		s.notifier.Error(fmt.Sprintf("convert: %v", err))
		return zero, err
	}
	created, err := api.DecodeEntity[T](raw)
	if err != nil {
		return zero, err
	}

	s.cache.Invalidate(srcEntity)
	s.cache.InvalidateWithDependents(dstEntity)
	return created, nil
}
