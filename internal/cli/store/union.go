package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
)

// UnionsPath is the union collection endpoint.
const UnionsPath = "/unions/"

var errEmptyName = errors.New("name is empty")

// Union is a union record. Fields the client does not model are kept in
// Extra and written back on marshal.
type Union struct {
	ID    int64                      `json:"id" yaml:"id" table:"ID"`
	Name  string                     `json:"name" yaml:"name" table:"NAME"`
	Extra map[string]json.RawMessage `json:"-" yaml:"-" table:"-"`
}

type unionFields struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON decodes id and name and keeps every other field in Extra.
func (u *Union) UnmarshalJSON(data []byte) error {
	var known unionFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "id")
	delete(all, "name")

	u.ID, u.Name = known.ID, known.Name
	u.Extra = nil
	if len(all) > 0 {
		u.Extra = all
	}
	return nil
}

// MarshalJSON encodes id, name and Extra as one object.
func (u Union) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+2)
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	out["name"] = u.Name
	return json.Marshal(out)
}

type unionRequest struct {
	Name string `json:"name"`
}

// UnionStore is the union collection.
type UnionStore struct {
	api    API
	logger logger.Logger

	mu     sync.Mutex
	unions []Union
}

// NewUnionStore creates an empty UnionStore.
func NewUnionStore(api API, log logger.Logger) *UnionStore {
	if log == nil {
		log = logger.Default()
	}
	return &UnionStore{api: api, logger: log.With("component", "union_store")}
}

// List fetches all unions and replaces the collection.
func (s *UnionStore) List(ctx context.Context) ([]Union, error) {
	ctx = connection.WithNewRequestID(ctx)
	resp, err := s.api.Get(ctx, UnionsPath)
	if err != nil {
		return nil, err
	}
	var unions []Union
	if err := connection.DecodeJSON(resp, &unions); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.unions = unions
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("unions loaded", "count", len(unions))
	return cloneUnions(unions), nil
}

// Create adds a union and appends the server's record to the collection.
func (s *UnionStore) Create(ctx context.Context, name string) (Union, error) {
	ctx = connection.WithNewRequestID(ctx)
	name, err := unionName(name)
	if err != nil {
		return Union{}, err
	}

	resp, err := s.api.PostJSON(ctx, nameQuery(UnionsPath, name), unionRequest{Name: name})
	if err != nil {
		return Union{}, err
	}
	var created Union
	if err := connection.DecodeJSON(resp, &created); err != nil {
		return Union{}, err
	}

	s.mu.Lock()
	s.unions = append(s.unions, created)
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("union created", "id", created.ID)
	return created, nil
}

// Update renames a union and replaces the entry with the same id.
func (s *UnionStore) Update(ctx context.Context, id int64, name string) (Union, error) {
	ctx = connection.WithNewRequestID(ctx)
	name, err := unionName(name)
	if err != nil {
		return Union{}, err
	}

	resp, err := s.api.PutJSON(ctx, nameQuery(unionPath(id), name), unionRequest{Name: name})
	if err != nil {
		return Union{}, err
	}
	var updated Union
	if err := connection.DecodeJSON(resp, &updated); err != nil {
		return Union{}, err
	}

	s.mu.Lock()
	for i := range s.unions {
		if s.unions[i].ID == updated.ID {
			s.unions[i] = updated
			break
		}
	}
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("union updated", "id", updated.ID)
	return updated, nil
}

// Delete removes a union on the server and then from the collection.
func (s *UnionStore) Delete(ctx context.Context, id int64) error {
	ctx = connection.WithNewRequestID(ctx)
	if _, err := s.api.Delete(ctx, unionPath(id)); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.unions[:0:0]
	for _, u := range s.unions {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.unions = kept
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("union deleted", "id", id)
	return nil
}

// Unions returns a copy of the collection.
func (s *UnionStore) Unions() []Union {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUnions(s.unions)
}

// Find returns the union with id from the collection.
func (s *UnionStore) Find(id int64) (Union, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.unions {
		if u.ID == id {
			return u, true
		}
	}
	return Union{}, false
}

func unionPath(id int64) string {
	return UnionsPath + strconv.FormatInt(id, 10)
}

func nameQuery(path, name string) string {
	return connection.WithQuery(path, url.Values{"name": {name}})
}

func unionName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", connection.NewSetupError("union name is required", errEmptyName)
	}
	return name, nil
}

func cloneUnions(in []Union) []Union {
	if in == nil {
		return nil
	}
	out := make([]Union, len(in))
	copy(out, in)
	return out
}
