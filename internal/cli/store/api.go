package store

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
)

// API is the subset of the HTTP client the stores use.
type API interface {
	Get(ctx context.Context, path string) (*connection.Response, error)
	PostJSON(ctx context.Context, path string, body any) (*connection.Response, error)
	PostForm(ctx context.Context, path string, form url.Values) (*connection.Response, error)
	PutJSON(ctx context.Context, path string, body any) (*connection.Response, error)
	Delete(ctx context.Context, path string) (*connection.Response, error)
	PostMultipart(ctx context.Context, path string, fields map[string]string, files []connection.FilePart, progress connection.ProgressFunc) (*connection.Response, error)
}

// Sort orders accepted by list endpoints.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var errBadOrder = errors.New(`order must be "asc" or "desc"`)

func checkOrder(order string) error {
	switch order {
	case "", OrderAsc, OrderDesc:
		return nil
	}
	return connection.NewSetupError("invalid sort order "+strconv.Quote(order), errBadOrder)
}

// JoinIDs renders ids as the comma-separated list the API expects.
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
