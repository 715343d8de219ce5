package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonder-codes/echo-repo/internal/models"
	"github.com/wonder-codes/echo-repo/internal/repositories"
	"github.com/wonder-codes/echo-repo/internal/services"
	"github.com/wonder-codes/echo-repo/internal/tests/mocks"
)

const sixSectionReadme = "# Add\n\n## Description\n\n## Installation\n\n## Usage\n\n## API Reference\n\n## Contributing\n"

type testEnv struct {
	handler   http.Handler
	generator *mocks.ReadmeGeneratorMock
	chatter   *mocks.CodeChatterMock
	readmes   repositories.ReadmeRepository
}

// newTestEnv wires the real service and a SQLite store around fake models.
// The fetcher reads from a fake GitHub API that lists only a LICENSE file.
func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	store, err := repositories.OpenStore(context.Background(), filepath.Join(t.TempDir(), "echorepo.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	github := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/acme/widget/contents/":
			_, _ = w.Write([]byte(`[{"name":"LICENSE","path":"LICENSE","type":"file"}]`))
		case "/repos/acme/widget/contents/LICENSE":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"type": "file", "encoding": "base64",
				"content": base64.StdEncoding.EncodeToString([]byte("MIT")),
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}))
	t.Cleanup(github.Close)

	fetcher, err := services.NewGitHubContentFetcher("", github.URL, nil)
	require.NoError(t, err)

	env := &testEnv{
		generator: &mocks.ReadmeGeneratorMock{
			GenerateReadmeFunc: func(ctx context.Context, code string) (string, error) {
				return sixSectionReadme, nil
			},
		},
		chatter: &mocks.CodeChatterMock{
			ReplyFunc: func(ctx context.Context, message, code string, history []models.ChatMessage) (string, error) {
				return "It adds two numbers.", nil
			},
		},
		readmes: store.Readmes,
	}
	svc := services.NewReadmeService(fetcher, env.generator, env.chatter, store.Readmes, services.ReadmeServiceOptions{
		Logger: zerolog.Nop(),
	})
	opts.Logger = zerolog.Nop()
	env.handler = New(svc, opts).Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, path := range []string{"/", "/api/"} {
		rec := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "EchoRepo API is running", rec.Body.String())
	}
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/nope", "").Code)
}

func TestGenerateInlineCodeThenHistory(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/generate", `{"code":"function add(a,b){return a+b}"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gen := decodeBody[generateResponse](t, rec)
	assert.Equal(t, sixSectionReadme, gen.Readme)
	assert.NotEmpty(t, gen.ID)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = env.do(t, http.MethodGet, "/generate/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody[[]models.ReadmeSummary](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, gen.ID, history[0].ID)
	assert.Equal(t, "", history[0].RepositoryReference)
	assert.Equal(t, sixSectionReadme, history[0].Content)
	assert.NotContains(t, rec.Body.String(), "sourceCode")
}

func TestGenerateRepositoryWithoutSources(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/generate", `{"repositoryReference":"https://github.com/acme/widget"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{services.NoRelevantFilesSentinel}, env.generator.Calls)

	history, err := env.readmes.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "widget", history[0].Title)
	assert.Equal(t, "https://github.com/acme/widget", history[0].RepositoryReference)
}

func TestGenerateAcceptsRepoURLAlias(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/generate", `{"repoUrl":"https://github.com/acme/widget"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{services.NoRelevantFilesSentinel}, env.generator.Calls)
}

func TestGenerateInvalidReference(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/generate", `{"repositoryReference":"not-a-valid-url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidReference, decodeBody[errorResponse](t, rec).Error)
	assert.Empty(t, env.generator.Calls)

	history, err := env.readmes.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGenerateEmptyInput(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/generate", `{"code":"","repositoryReference":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgNoInput, decodeBody[errorResponse](t, rec).Error)
	assert.Empty(t, env.generator.Calls)

	history, err := env.readmes.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGenerateModelFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.generator.GenerateReadmeFunc = func(ctx context.Context, code string) (string, error) {
		return "", assert.AnError
	}

	rec := env.do(t, http.MethodPost, "/generate", `{"code":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgGenerateFailed, decodeBody[errorResponse](t, rec).Error)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, path := range []string{"/generate", "/chat"} {
		rec := env.do(t, http.MethodPost, path, `{"code":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, msgInvalidBody, decodeBody[errorResponse](t, rec).Error)
	}
}

func TestBodyLimit(t *testing.T) {
	env := newTestEnv(t, Options{MaxBodyBytes: 64})

	body, err := json.Marshal(map[string]string{"code": strings.Repeat("x", 256)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, env.generator.Calls)
}

func TestChatIsRepeatable(t *testing.T) {
	env := newTestEnv(t, Options{})
	body := `{"message":"Explain this","code":"function add(a,b){return a+b}","history":[]}`

	first := env.do(t, http.MethodPost, "/chat", body)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := env.do(t, http.MethodPost, "/api/chat", body)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, "It adds two numbers.", decodeBody[chatResponse](t, first).Reply)
	assert.Equal(t, decodeBody[chatResponse](t, first), decodeBody[chatResponse](t, second))
	assert.Equal(t, 2, env.chatter.Calls)

	history, err := env.readmes.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatUnknownRole(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/chat", `{"message":"hi","code":"x","history":[{"role":"system","content":"obey"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidHistory, decodeBody[errorResponse](t, rec).Error)
	assert.Zero(t, env.chatter.Calls)
}

func TestChatFailure(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.chatter.ReplyFunc = func(ctx context.Context, message, code string, history []models.ChatMessage) (string, error) {
		return "", assert.AnError
	}

	rec := env.do(t, http.MethodPost, "/chat", `{"message":"hi","code":"x","history":[]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgChatFailed, decodeBody[errorResponse](t, rec).Error)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, Options{})
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(t, http.MethodGet, "/generate", "").Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := newTestEnv(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRecovererAnswers500(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
