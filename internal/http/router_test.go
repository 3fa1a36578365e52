package http

// Тесты HTTP-слоя forum-store: роутер + хендлеры поверх настоящего сервиса и
// document.Store с файловым бэкендом во временной директории.
//
//  Проверяем:
//  - полный сценарий: пост -> ответ -> ответ на ответ -> голоса -> ссылки -> поиск;
//  - маппинг ошибок в единый конверт {"error":{...}} с request_id;
//  - строгий JSON (неизвестные поля -> 400) и нечисловой id -> 400;
//  - служебные эндпойнты (/livez, /healthz, /metrics) и BasePath;
//  - Atom-ленту и admin save/reload.
//
// Запуск:
//   go test ./internal/http -v -race -count=1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-forum-store/internal/config"
	"github.com/pribylovaa/go-forum-store/internal/http/handlers"
	"github.com/pribylovaa/go-forum-store/internal/service"
	"github.com/pribylovaa/go-forum-store/internal/storage/document"
	"github.com/pribylovaa/go-forum-store/internal/storage/file"
)

type testEnv struct {
	handler http.Handler
	store   *document.Store
	path    string
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "posts.json")
	backend, err := file.New(path)
	require.NoError(t, err)

	store := document.New(backend, document.Options{ReloadOnMiss: true})
	store.LoadAll(context.Background())

	svc := service.New(store, config.Config{})

	return &testEnv{
		handler: NewRouter(svc, opts),
		store:   store,
		path:    path,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func TestRouter_ForumScenario(t *testing.T) {
	env := newTestEnv(t, Options{})

	// Пост.
	rr := env.do(t, http.MethodPost, "/posts", handlers.CreatePostRequest{
		Title: "Go generics", Content: "iterators are neat", Username: "alice",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	post := decode[handlers.Node](t, rr)
	require.EqualValues(t, 1, post.ID)
	require.Equal(t, "post", post.Kind)
	require.Equal(t, "Go generics", post.DisplayTitle)

	// Ответ и ответ на ответ.
	rr = env.do(t, http.MethodPost, "/nodes/1/replies", handlers.AttachReplyRequest{
		Content: "agree", Username: "bob",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	r1 := decode[handlers.Node](t, rr)
	require.EqualValues(t, 2, r1.ID)
	require.Equal(t, "reply", r1.Kind)
	require.Empty(t, r1.Title)

	rr = env.do(t, http.MethodPost, "/nodes/2/replies", handlers.AttachReplyRequest{
		Content: "Deeply NESTED thought", Username: "carol",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodPost, "/nodes/1/replies", handlers.AttachReplyRequest{
		Content: "second", Username: "dave",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	// Голоса: 4 обгоняет 2.
	rr = env.do(t, http.MethodPut, "/nodes/4/votes", handlers.SetVotesRequest{Up: 5, Down: 2})
	require.Equal(t, http.StatusOK, rr.Code)
	voted := decode[handlers.Node](t, rr)
	require.Equal(t, 3, voted.Score)

	rr = env.do(t, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[handlers.ListPostsResponse](t, rr)
	require.Len(t, list.Posts, 1)
	require.Len(t, list.Posts[0].Replies, 2)
	require.EqualValues(t, 4, list.Posts[0].Replies[0].ID)
	require.EqualValues(t, 2, list.Posts[0].Replies[1].ID)
	require.EqualValues(t, 3, list.Posts[0].Replies[1].Replies[0].ID)

	// Ссылка ответа 3 на пост 1 и обратно.
	rr = env.do(t, http.MethodPut, "/nodes/3/reference", handlers.SetReferenceRequest{TargetID: 1})
	require.Equal(t, http.StatusOK, rr.Code)
	require.EqualValues(t, 1, decode[handlers.Node](t, rr).ReferencedID)

	rr = env.do(t, http.MethodGet, "/nodes/3/reference", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	ref := decode[handlers.ReferencedResponse](t, rr)
	require.EqualValues(t, 1, ref.ID)
	require.Equal(t, "Go generics", ref.DisplayTitle)

	rr = env.do(t, http.MethodPut, "/nodes/1/reference", handlers.SetReferenceRequest{TargetID: 3})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodGet, "/nodes/1/reference", nil)
	require.Equal(t, "Deeply NESTED thought", decode[handlers.ReferencedResponse](t, rr).DisplayTitle)

	rr = env.do(t, http.MethodDelete, "/nodes/1/reference", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodGet, "/nodes/1/reference", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "reference_not_found", decode[errorBody](t, rr).Error.Code)

	// Поиск: регистр не важен, находит глубокий ответ и автора.
	rr = env.do(t, http.MethodGet, "/search?q=nested", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found := decode[handlers.SearchResponse](t, rr)
	require.Len(t, found.Nodes, 1)
	require.EqualValues(t, 3, found.Nodes[0].ID)

	rr = env.do(t, http.MethodGet, "/search?q=DAVE", nil)
	require.Len(t, decode[handlers.SearchResponse](t, rr).Nodes, 1)

	// Совпали пост и все его ответы: плоский список без вложенных поддеревьев.
	rr = env.do(t, http.MethodGet, "/search?q=a", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotContains(t, rr.Body.String(), `"replies"`)
	all := decode[handlers.SearchResponse](t, rr)
	ids := make([]int64, 0, len(all.Nodes))
	for _, n := range all.Nodes {
		ids = append(ids, n.ID)
	}
	require.Equal(t, []int64{1, 4, 2, 3}, ids)
	require.Equal(t, 2, all.Nodes[0].ReplyCount)

	// Правка текста.
	rr = env.do(t, http.MethodPut, "/nodes/2/content", handlers.EditContentRequest{Content: "edited"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodGet, "/nodes/2", nil)
	require.Equal(t, "edited", decode[handlers.Node](t, rr).Content)

	// Документ на диске отражает изменения.
	raw, err := os.ReadFile(env.path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"edited"`)
	require.Contains(t, string(raw), `"referencedPostId": 1`)
}

func TestRouter_Errors(t *testing.T) {
	env := newTestEnv(t, Options{})

	tests := []struct {
		name   string
		method string
		target string
		body   any
		status int
		code   string
	}{
		{"unknown node", http.MethodGet, "/nodes/42", nil, http.StatusNotFound, "not_found"},
		{"non numeric id", http.MethodGet, "/nodes/abc", nil, http.StatusBadRequest, "invalid_argument"},
		{"non positive id", http.MethodGet, "/nodes/0", nil, http.StatusBadRequest, "invalid_argument"},
		{"reply to missing parent", http.MethodPost, "/nodes/9/replies",
			handlers.AttachReplyRequest{Content: "x", Username: "u"}, http.StatusNotFound, "parent_not_found"},
		{"empty keyword", http.MethodGet, "/search?q=%20", nil, http.StatusBadRequest, "invalid_argument"},
		{"unknown field", http.MethodPost, "/posts", `{"title":"t","content":"c","username":"u","x":1}`,
			http.StatusBadRequest, "invalid_argument"},
		{"broken json", http.MethodPost, "/posts", `{`, http.StatusBadRequest, "invalid_argument"},
		{"empty title", http.MethodPost, "/posts", handlers.CreatePostRequest{Content: "c", Username: "u"},
			http.StatusBadRequest, "invalid_argument"},
		{"negative votes", http.MethodPut, "/nodes/1/votes", handlers.SetVotesRequest{Up: -1},
			http.StatusBadRequest, "invalid_argument"},
		{"votes on missing node", http.MethodPut, "/nodes/5/votes", handlers.SetVotesRequest{Up: 1},
			http.StatusNotFound, "not_found"},
		{"reference without target", http.MethodPut, "/nodes/1/reference", handlers.SetReferenceRequest{},
			http.StatusBadRequest, "invalid_argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.target, tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())

			body := decode[errorBody](t, rr)
			require.Equal(t, tt.code, body.Error.Code)
			require.NotEmpty(t, body.Error.RequestID)
			require.Equal(t, rr.Header().Get("X-Request-Id"), body.Error.RequestID)
		})
	}
}

func TestRouter_ReferenceToMissingTarget(t *testing.T) {
	env := newTestEnv(t, Options{})

	rr := env.do(t, http.MethodPost, "/posts", handlers.CreatePostRequest{Title: "t", Content: "c", Username: "u"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodPut, "/nodes/1/reference", handlers.SetReferenceRequest{TargetID: 77})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "reference_not_found", decode[errorBody](t, rr).Error.Code)
}

func TestRouter_ServiceEndpoints(t *testing.T) {
	ready := false
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	env := newTestEnv(t, Options{
		BasePath: "/api",
		Ready:    func() bool { return ready },
		Metrics:  metrics,
	})

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/livez", nil).Code)
	require.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/healthz", nil).Code)

	ready = true
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code)

	rr := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "# metrics", rr.Body.String())

	// Прикладные роуты только под BasePath.
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/posts", nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts", nil).Code)
}

func TestRouter_AdminSaveAndReload(t *testing.T) {
	env := newTestEnv(t, Options{})

	rr := env.do(t, http.MethodPost, "/admin/save", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	raw, err := os.ReadFile(env.path)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(raw))

	// Документ, изменённый снаружи, подхватывается через reload.
	doc := `[{"id":10,"title":"external","username":"x","content":"c","date":"01/02/2024","votes":[1,0],
		"replies":[{"id":11,"username":"y","content":"r","date":"01/02/2024","votes":[0,0],"replies":[]}]}]`
	require.NoError(t, os.WriteFile(env.path, []byte(doc), 0o644))

	rr = env.do(t, http.MethodPost, "/admin/reload", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 2, decode[handlers.ReloadResponse](t, rr).Nodes)

	rr = env.do(t, http.MethodGet, "/nodes/11", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Счётчик id продолжает с max+1.
	rr = env.do(t, http.MethodPost, "/posts", handlers.CreatePostRequest{Title: "t", Content: "c", Username: "u"})
	require.EqualValues(t, 12, decode[handlers.Node](t, rr).ID)
}

func TestRouter_Feed(t *testing.T) {
	env := newTestEnv(t, Options{Feed: handlers.FeedOptions{Title: "Forum", Link: "http://forum.test/", Limit: 2}})

	for _, title := range []string{"first", "second", "third"} {
		rr := env.do(t, http.MethodPost, "/posts", handlers.CreatePostRequest{Title: title, Content: "c", Username: "u"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/feed.atom", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "application/atom+xml"))

	body := rr.Body.String()
	require.Contains(t, body, "<title>Forum</title>")
	require.Contains(t, body, "http://forum.test/nodes/")
	require.Equal(t, 2, strings.Count(body, "<entry>"))
}
