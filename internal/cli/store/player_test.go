package store

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
)

var samplePlayers = []map[string]any{
	{"id": 1, "name": "Rapi", "synchro_level": 200, "resilience_cube_level": 7, "bastion_cube_level": 5, "union_id": 1, "union_name": "Alpha"},
	{"id": 2, "name": "Anis", "synchro_level": 180, "resilience_cube_level": 4, "bastion_cube_level": 3, "union_id": 1, "union_name": "Alpha"},
	{"id": 3, "name": "Neon", "synchro_level": 160, "resilience_cube_level": 2, "bastion_cube_level": 1, "union_id": nil, "union_name": nil},
}

func TestPlayerStore_ListQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/players/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("union_ids"); got != "1,2" {
			t.Errorf("union_ids = %q, want 1,2", got)
		}
		if got := q.Get("sort_by"); got != "synchro_level" {
			t.Errorf("sort_by = %q", got)
		}
		if got := q.Get("order"); got != "desc" {
			t.Errorf("order = %q", got)
		}
		writeJSON(w, http.StatusOK, samplePlayers)
	})
	s := NewPlayerStore(c, nil)

	got, err := s.List(context.Background(), PlayerQuery{UnionIDs: []int64{1, 2}, SortBy: "synchro_level", Order: OrderDesc})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].UnionID == nil || *got[0].UnionID != 1 {
		t.Errorf("players[0].UnionID = %v", got[0].UnionID)
	}
	if got[2].UnionID != nil || got[2].UnionName != "" {
		t.Errorf("unaffiliated player = %+v", got[2])
	}
}

func TestPlayerStore_ListOmitsEmptyQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want empty", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, []any{})
	})

	got, err := NewPlayerStore(c, nil).List(context.Background(), PlayerQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List() = %v", got)
	}
}

func TestPlayerStore_DeleteRemovesExactlyOne(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, samplePlayers)
		case http.MethodDelete:
			if r.URL.EscapedPath() != "/api/players/Anis" {
				t.Errorf("path = %s", r.URL.EscapedPath())
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Player Anis deleted"})
		}
	})
	s := NewPlayerStore(c, nil)
	ctx := context.Background()
	if _, err := s.List(ctx, PlayerQuery{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if err := s.Delete(ctx, "Anis"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	names := []string{}
	for _, p := range s.Players() {
		names = append(names, p.Name)
	}
	if strings.Join(names, ",") != "Rapi,Neon" {
		t.Errorf("players after delete = %v", names)
	}
}

func TestPlayerStore_DeleteEscapesName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/players/Red%20Hood" {
			t.Errorf("path = %s", r.URL.EscapedPath())
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Player not found"})
	})

	err := NewPlayerStore(c, nil).Delete(context.Background(), "Red Hood")
	if connection.StatusOf(err) != http.StatusNotFound {
		t.Errorf("Delete() error = %v, want 404", err)
	}
}

func TestPlayerStore_Upload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/upload/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm() error = %v", err)
		}
		if got := r.FormValue("union_id"); got != "3" {
			t.Errorf("union_id = %q, want 3", got)
		}
		files := r.MultipartForm.File[UploadField]
		if len(files) != 2 {
			t.Fatalf("files parts = %d, want 2", len(files))
		}
		writeJSON(w, http.StatusOK, map[string]any{"successful_files": 1, "failed_files": 1})
	})

	unionID := int64(3)
	var lastSent, lastTotal atomic.Int64
	res, err := NewPlayerStore(c, nil).Upload(context.Background(), UploadRequest{
		Files: []UploadFile{
			{Name: "rapi.json", Content: strings.NewReader(`{"name":"Rapi"}`)},
			{Name: "broken.json", Content: strings.NewReader(`{`)},
		},
		UnionID:  &unionID,
		Progress: func(sent, total int64) {
			lastSent.Store(sent)
			lastTotal.Store(total)
		},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.SuccessfulFiles != 1 || res.FailedFiles != 1 {
		t.Errorf("Upload() = %+v", res)
	}
	if lastTotal.Load() == 0 || lastSent.Load() != lastTotal.Load() {
		t.Errorf("progress ended at %d/%d", lastSent.Load(), lastTotal.Load())
	}
}

func TestPlayerStore_UploadWithoutUnion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm() error = %v", err)
		}
		if _, ok := r.MultipartForm.Value["union_id"]; ok {
			t.Error("union_id sent without a union")
		}
		writeJSON(w, http.StatusOK, map[string]any{"successful_files": 1, "failed_files": 0})
	})

	res, err := NewPlayerStore(c, nil).Upload(context.Background(), UploadRequest{
		Files: []UploadFile{{Name: "a.json", Content: strings.NewReader("{}")}},
	})
	if err != nil || res.SuccessfulFiles != 1 {
		t.Errorf("Upload() = %+v, %v", res, err)
	}
}

func TestPlayerStore_UploadNothing(t *testing.T) {
	s := NewPlayerStore(nil, nil)
	_, err := s.Upload(context.Background(), UploadRequest{})
	if connection.KindOf(err) != connection.KindRequestSetup {
		t.Errorf("Upload(empty) error = %v, want request setup", err)
	}
}
