package connection

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_PostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength <= 0 {
			t.Errorf("ContentLength = %d, want known length", r.ContentLength)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.MultipartForm.Value["union_id"]; len(got) != 1 || got[0] != "4" {
			t.Errorf("union_id = %v, want [4]", got)
		}

		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Fatalf("files parts = %d, want 2", len(files))
		}
		if files[0].Filename != "alpha.json" || files[1].Filename != "beta.json" {
			t.Errorf("filenames = %q, %q", files[0].Filename, files[1].Filename)
		}
		if ct := files[0].Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		f, _ := files[1].Open()
		data, _ := io.ReadAll(f)
		f.Close()
		if string(data) != "beta-bytes" {
			t.Errorf("beta content = %q", data)
		}

		w.Write([]byte(`{"successful_files":2,"failed_files":0}`))
	}))
	defer srv.Close()

	var last, total int64
	calls := 0
	progress := func(sent, tot int64) {
		calls++
		last, total = sent, tot
	}

	files := []FilePart{
		{Field: "files", Name: "/tmp/exports/alpha.json", Content: strings.NewReader("alpha-bytes")},
		{Field: "files", Name: "beta.json", Content: strings.NewReader("beta-bytes")},
	}
	resp, err := newTestClient(t, srv).PostMultipart(context.Background(), "/upload/",
		map[string]string{"union_id": "4"}, files, progress)
	if err != nil {
		t.Fatalf("PostMultipart() error = %v", err)
	}
	if !strings.Contains(string(resp.Body), "successful_files") {
		t.Errorf("body = %s", resp.Body)
	}

	if calls == 0 {
		t.Fatal("progress never reported")
	}
	if last != total || total == 0 {
		t.Errorf("final progress = %d/%d, want complete", last, total)
	}
}

func TestFilePartHeader(t *testing.T) {
	tests := []struct {
		part     FilePart
		wantDisp string
		wantCT   string
	}{
		{
			FilePart{Field: "files", Name: "dir/data.bin"},
			`form-data; name="files"; filename="data.bin"`,
			"application/octet-stream",
		},
		{
			FilePart{Field: "files", Name: `we"ird.csv`, ContentType: "text/csv"},
			`form-data; name="files"; filename="we\"ird.csv"`,
			"text/csv",
		},
	}
	for _, tt := range tests {
		h := filePartHeader(tt.part)
		if got := h.Get("Content-Disposition"); got != tt.wantDisp {
			t.Errorf("Content-Disposition = %q, want %q", got, tt.wantDisp)
		}
		if got := h.Get("Content-Type"); got != tt.wantCT {
			t.Errorf("Content-Type = %q, want %q", got, tt.wantCT)
		}
	}
}
