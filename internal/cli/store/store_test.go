package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
)

// newTestClient starts a mock API server and returns a client pointed at it.
func newTestClient(t *testing.T, h http.HandlerFunc) *connection.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := connection.NewClient(connection.Options{BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestJoinIDs(t *testing.T) {
	tests := []struct {
		ids  []int64
		want string
	}{
		{nil, ""},
		{[]int64{7}, "7"},
		{[]int64{1, 2, 30}, "1,2,30"},
	}
	for _, tt := range tests {
		if got := JoinIDs(tt.ids); got != tt.want {
			t.Errorf("JoinIDs(%v) = %q, want %q", tt.ids, got, tt.want)
		}
	}
}

func TestCheckOrder(t *testing.T) {
	for _, ok := range []string{"", OrderAsc, OrderDesc} {
		if err := checkOrder(ok); err != nil {
			t.Errorf("checkOrder(%q) error = %v", ok, err)
		}
	}
	err := checkOrder("sideways")
	if connection.KindOf(err) != connection.KindRequestSetup {
		t.Errorf("checkOrder(sideways) kind = %v, want request_setup", connection.KindOf(err))
	}
}
