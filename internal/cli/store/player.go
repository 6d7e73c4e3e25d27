package store

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"sync"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
)

// Player and upload endpoints.
const (
	PlayersPath = "/players/"
	UploadPath  = "/upload/"
)

// UploadField is the multipart field each uploaded file is sent under.
const UploadField = "files"

var errNoFiles = errors.New("no files given")

// Player is a player row.
type Player struct {
	ID                  int64  `json:"id" yaml:"id" table:"ID,wide"`
	Name                string `json:"name" yaml:"name" table:"NAME"`
	SynchroLevel        int    `json:"synchro_level" yaml:"synchro_level" table:"SYNCHRO"`
	ResilienceCubeLevel int    `json:"resilience_cube_level" yaml:"resilience_cube_level" table:"RESILIENCE"`
	BastionCubeLevel    int    `json:"bastion_cube_level" yaml:"bastion_cube_level" table:"BASTION"`
	UnionID             *int64 `json:"union_id" yaml:"union_id" table:"UNION_ID,wide"`
	UnionName           string `json:"union_name" yaml:"union_name" table:"UNION"`
}

// PlayerQuery filters and sorts the player list. Zero values are omitted
// and the server defaults apply.
type PlayerQuery struct {
	UnionIDs []int64
	SortBy   string
	Order    string
}

func (q PlayerQuery) values() url.Values {
	v := url.Values{}
	if len(q.UnionIDs) > 0 {
		v.Set("union_ids", JoinIDs(q.UnionIDs))
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	return v
}

// UploadFile is one file to upload.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadRequest describes a player data upload.
type UploadRequest struct {
	Files    []UploadFile
	UnionID  *int64
	Progress connection.ProgressFunc
}

// UploadResult is the server's upload summary.
type UploadResult struct {
	SuccessfulFiles int `json:"successful_files" yaml:"successful_files" table:"SUCCESSFUL"`
	FailedFiles     int `json:"failed_files" yaml:"failed_files" table:"FAILED"`
}

// PlayerStore is the player collection.
type PlayerStore struct {
	api    API
	logger logger.Logger

	mu      sync.Mutex
	players []Player
}

// NewPlayerStore creates an empty PlayerStore.
func NewPlayerStore(api API, log logger.Logger) *PlayerStore {
	if log == nil {
		log = logger.Default()
	}
	return &PlayerStore{api: api, logger: log.With("component", "player_store")}
}

// List fetches players matching q and replaces the collection.
func (s *PlayerStore) List(ctx context.Context, q PlayerQuery) ([]Player, error) {
	ctx = connection.WithNewRequestID(ctx)
	if err := checkOrder(q.Order); err != nil {
		return nil, err
	}
	resp, err := s.api.Get(ctx, connection.WithQuery(PlayersPath, q.values()))
	if err != nil {
		return nil, err
	}
	var players []Player
	if err := connection.DecodeJSON(resp, &players); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.players = players
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("players loaded", "count", len(players))
	return clonePlayers(players), nil
}

// Delete removes a player by name on the server and then from the
// collection.
func (s *PlayerStore) Delete(ctx context.Context, name string) error {
	ctx = connection.WithNewRequestID(ctx)
	if name == "" {
		return connection.NewSetupError("player name is required", errEmptyName)
	}
	if _, err := s.api.Delete(ctx, PlayersPath+url.PathEscape(name)); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.players[:0:0]
	for _, p := range s.players {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	s.players = kept
	s.mu.Unlock()

	s.logger.WithContext(ctx).Debug("player deleted", "player", name)
	return nil
}

// Upload sends player data files as one multipart request. The collection
// is not touched; list again to see the imported players.
func (s *PlayerStore) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	ctx = connection.WithNewRequestID(ctx)
	if len(req.Files) == 0 {
		return UploadResult{}, connection.NewSetupError("nothing to upload", errNoFiles)
	}

	parts := make([]connection.FilePart, len(req.Files))
	for i, f := range req.Files {
		parts[i] = connection.FilePart{Field: UploadField, Name: f.Name, Content: f.Content}
	}
	var fields map[string]string
	if req.UnionID != nil {
		fields = map[string]string{"union_id": strconv.FormatInt(*req.UnionID, 10)}
	}

	resp, err := s.api.PostMultipart(ctx, UploadPath, fields, parts, req.Progress)
	if err != nil {
		return UploadResult{}, err
	}
	var result UploadResult
	if err := connection.DecodeJSON(resp, &result); err != nil {
		return UploadResult{}, err
	}

	s.logger.WithContext(ctx).Debug("upload finished", "files", len(parts), "successful", result.SuccessfulFiles, "failed", result.FailedFiles)
	return result, nil
}

// Players returns a copy of the collection.
func (s *PlayerStore) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlayers(s.players)
}

func clonePlayers(in []Player) []Player {
	if in == nil {
		return nil
	}
	out := make([]Player, len(in))
	copy(out, in)
	return out
}
