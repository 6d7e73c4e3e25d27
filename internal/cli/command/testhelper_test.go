package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/unionhub-go/internal/storage"
)

// mockServer is a test API server with handlers keyed by path prefix.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []*http.Request
}

// newMockServer creates a mock server that is closed with the test.
func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r.Clone(context.Background()))
		// Longest matching prefix wins.
		var (
			handler http.HandlerFunc
			best    int
		)
		for pattern, h := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) && len(pattern) > best {
				handler, best = h, len(pattern)
			}
		}
		m.mu.Unlock()

		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// handle registers a handler for a path prefix.
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[pattern] = handler
}

// requestsTo returns the recorded requests whose path starts with prefix.
func (m *mockServer) requestsTo(prefix string) []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*http.Request
	for _, r := range m.requests {
		if strings.HasPrefix(r.URL.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse writes a FastAPI style error.
func errorResponse(w http.ResponseWriter, status int, detail string) {
	jsonResponse(w, status, map[string]string{"detail": detail})
}

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// testEnv runs the CLI against a mock server with HOME in a temp dir.
type testEnv struct {
	t    *testing.T
	srv  *mockServer
	home string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "C")
	return &testEnv{t: t, srv: newMockServer(t), home: home}
}

type result struct {
	code   int
	stdout string
	stderr string
}

// run executes the CLI with --server pointing at the mock server.
func (e *testEnv) run(stdin string, args ...string) result {
	e.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{appName, "--server", e.srv.URL}, args...)
	code := Run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// mustRun is run that fails the test on a non-zero exit code.
func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	res := e.run("", args...)
	if res.code != 0 {
		e.t.Fatalf("%v: exit %d\nstdout:\n%s\nstderr:\n%s", args, res.code, res.stdout, res.stderr)
	}
	return res
}

func (e *testEnv) statePath() string {
	return filepath.Join(e.home, ".unionhub", "state.json")
}

// seedToken stores a token as a previous login would.
func (e *testEnv) seedToken(tok string) {
	e.t.Helper()
	kv, err := storage.NewFileKV(e.statePath())
	if err != nil {
		e.t.Fatalf("NewFileKV() error = %v", err)
	}
	defer kv.Close()
	if err := kv.Set(context.Background(), storage.KeyToken, tok); err != nil {
		e.t.Fatalf("seed token: %v", err)
	}
}

func (e *testEnv) storedToken() string {
	e.t.Helper()
	kv, err := storage.NewFileKV(e.statePath())
	if err != nil {
		e.t.Fatalf("NewFileKV() error = %v", err)
	}
	defer kv.Close()
	tok, err := kv.Get(context.Background(), storage.KeyToken)
	if err != nil {
		return ""
	}
	return tok
}

// tokenHandler accepts one username and password.
func tokenHandler(t *testing.T, username, password, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if r.PostForm.Get("username") != username || r.PostForm.Get("password") != password {
			errorResponse(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
	}
}

// Sample response data

var sampleUnions = []map[string]any{
	{"id": 1, "name": "Alpha"},
	{"id": 2, "name": "Beta"},
}

var samplePlayers = []map[string]any{
	{"id": 10, "name": "kestrel", "synchro_level": 400, "resilience_cube_level": 9, "bastion_cube_level": 7, "union_id": 1, "union_name": "Alpha"},
}

var sampleCharacters = []map[string]any{
	{"id": 100, "player_name": "kestrel", "union_id": 1, "union_name": "Alpha", "name_cn": "Rapi", "element": "Fire", "class_": "Attacker", "weapon_type": "AR", "use_burst_skill": "Step3", "absolute_training_degree": 81.5, "relative_training_degree": 0.75},
}
