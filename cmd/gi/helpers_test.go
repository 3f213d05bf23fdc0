// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gi-cli/gi/internal/clock"
	"github.com/gi-cli/gi/internal/config"
)

type (
	// testRepo is a fake GitHub contents API plus raw template downloads.
	testRepo struct {
		srv      *httptest.Server
		requests atomic.Int64
	}

	// testContentItem is the JSON wire format of a contents API entry.
	testContentItem struct {
		Name        string `json:"name"`
		Path        string `json:"path"`
		Type        string `json:"type"`
		DownloadURL string `json:"download_url"`
	}

	// staticConfig is a ConfigProvider returning a copy of a fixed config.
	staticConfig struct {
		cfg *config.Config
	}

	// testEnv is an App wired to a testRepo with captured output.
	testEnv struct {
		app    *App
		repo   *testRepo
		cfg    *config.Config
		clock  *clock.Fake
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		dir    string
	}
)

var errNotOnPath = errors.New("executable file not found in $PATH")

var testTemplates = map[string]string{
	"Go.gitignore":           "*.exe\n*.test\n",
	"Python.gitignore":       "__pycache__/\n*.exe\n",
	"Global/macOS.gitignore": ".DS_Store\n",
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	repo := &testRepo{}
	var srv *httptest.Server
	item := func(path string) testContentItem {
		name := strings.TrimPrefix(path, "Global/")
		return testContentItem{Name: name, Path: path, Type: "file", DownloadURL: srv.URL + "/raw/" + path}
	}

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		repo.requests.Add(1)
		switch r.URL.Path {
		case "/repos/github/gitignore/contents":
			writeTestJSON(t, w, []testContentItem{
				item("Go.gitignore"),
				item("Python.gitignore"),
				{Name: "Global", Path: "Global", Type: "dir"},
			})
		case "/repos/github/gitignore/contents/Global":
			writeTestJSON(t, w, []testContentItem{item("Global/macOS.gitignore")})
		default:
			if path, ok := strings.CutPrefix(r.URL.Path, "/raw/"); ok {
				if body, found := testTemplates[path]; found {
					_, _ = w.Write([]byte(body))
					return
				}
			}
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	repo.srv = srv
	return repo
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func (s staticConfig) Load(ctx context.Context, _ config.LoadOptions) (*config.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := *s.cfg
	return &c, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newTestRepo(t)
	cfg := config.DefaultConfig()
	cfg.Source.APIURL = repo.srv.URL
	cfg.CacheDir = t.TempDir()
	cfg.NetworkTimeout = 5 * time.Second

	env := &testEnv{
		repo:   repo,
		cfg:    cfg,
		clock:  clock.NewFake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		dir:    t.TempDir(),
	}
	app, err := NewApp(Dependencies{
		Config:     staticConfig{cfg: cfg},
		HTTPClient: repo.srv.Client(),
		Clock:      env.clock,
		Getenv:     func(string) string { return "" },
		LookPath:   func(string) (string, error) { return "", errNotOnPath },
		ConfigDir:  t.TempDir(),
		WorkDir:    env.dir,
		Stdout:     env.stdout,
		Stderr:     env.stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	env.app = app
	return env
}

// run executes the command line args against env's App.
func (e *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	e.stdout.Reset()
	e.stderr.Reset()

	root := NewRootCommand(e.app)
	root.SetArgs(args)
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)
	return root.ExecuteContext(t.Context())
}
