package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/service"
	"github.com/starford/vellum/internal/testutil"
)

// testEnv sets up a temp inbox, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	router, _ := testEnvWithInbox(t, authToken != "", authToken, nil)
	return router
}

func testEnvWithInbox(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (http.Handler, string) {
	t.Helper()
	inbox, store := testutil.TestInbox(t)
	svc := service.NewService(testutil.TestDB(t), store, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/", NewRouter(svc, authEnabled, authToken, sseHandler))
	return r, inbox
}

func do(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func regionBody(message string) map[string]any {
	return map[string]any{
		"type": "region",
		"target": map[string]any{
			"location": map[string]any{"type": "page", "value": 1},
			"shape":    map[string]any{"x": 10, "y": 10, "width": 5, "height": 5},
		},
		"description":  map[string]any{"message": message},
		"file_version": map[string]any{"id": "v1"},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var e models.APIError
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return e
}

func TestCreateAndGetAnnotation(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/files/f1/annotations", regionBody("hello"),
		HeaderUserID, "u7", HeaderUserName, "Grace")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Annotation
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || created.CreatedBy.Name != "Grace" || created.CreatedBy.ID != "u7" {
		t.Errorf("created = %+v", created)
	}

	w = do(t, router, http.MethodGet, "/annotations/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Annotation
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Message() != "hello" || got.Target.Location != models.Page(1) {
		t.Errorf("got = %+v", got)
	}
}

func TestCreateAnnotation_DefaultAuthor(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/files/f1/annotations", regionBody(""))
	var created models.Annotation
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.CreatedBy.ID != "anonymous" {
		t.Errorf("created_by = %+v", created.CreatedBy)
	}
}

func TestCreateAnnotation_Invalid(t *testing.T) {
	router := testEnv(t, "")

	body := regionBody("")
	delete(body["target"].(map[string]any), "shape")
	w := do(t, router, http.MethodPost, "/files/f1/annotations", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	e := decodeError(t, w)
	if e.Type != "error" || e.Code != codeBadRequest || e.Status != http.StatusBadRequest {
		t.Errorf("error body = %+v", e)
	}
	if e.RequestID == "" || w.Header().Get("X-Request-Id") != e.RequestID {
		t.Errorf("request id missing: body %q header %q", e.RequestID, w.Header().Get("X-Request-Id"))
	}

	req := httptest.NewRequest(http.MethodPost, "/files/f1/annotations", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", rec.Code)
	}
}

func TestListAnnotations_Paginated(t *testing.T) {
	router := testEnv(t, "")
	for i := 0; i < 3; i++ {
		if w := do(t, router, http.MethodPost, "/files/f1/annotations", regionBody("")); w.Code != http.StatusCreated {
			t.Fatalf("create = %d", w.Code)
		}
	}

	w := do(t, router, http.MethodGet, "/files/f1/annotations?version_id=v1&limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var page models.AnnotationPage
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if len(page.Entries) != 2 || page.Limit != 2 || page.NextMarker == nil {
		t.Fatalf("first page = %+v", page)
	}

	w = do(t, router, http.MethodGet, "/files/f1/annotations?version_id=v1&limit=2&marker="+*page.NextMarker, nil)
	var second models.AnnotationPage
	_ = json.Unmarshal(w.Body.Bytes(), &second)
	if len(second.Entries) != 1 || second.NextMarker != nil {
		t.Errorf("second page = %+v", second)
	}

	w = do(t, router, http.MethodGet, "/files/f1/annotations?marker=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad marker = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodGet, "/files/empty/annotations", nil)
	if !bytes.Contains(w.Body.Bytes(), []byte(`"entries":[]`)) || !bytes.Contains(w.Body.Bytes(), []byte(`"next_marker":null`)) {
		t.Errorf("empty listing = %s", w.Body.String())
	}
}

func TestDeleteAnnotation(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/files/f1/annotations", regionBody(""))
	var created models.Annotation
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = do(t, router, http.MethodDelete, "/annotations/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/annotations/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("after delete = %d, want 404", w.Code)
	}
	if e := decodeError(t, w); e.Code != codeNotFound {
		t.Errorf("code = %q", e.Code)
	}
	w = do(t, router, http.MethodDelete, "/annotations/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestCollaborators(t *testing.T) {
	router := testEnv(t, "")
	for _, c := range []models.Collaborator{
		{ID: "u1", Name: "Ann", Type: "user", IsUploader: true},
		{ID: "u2", Name: "Bob", Type: "user"},
		{ID: "g1", Name: "Team", Type: "group"},
	} {
		if w := do(t, router, http.MethodPost, "/files/f1/collaborators", c); w.Code != http.StatusCreated {
			t.Fatalf("add = %d, body = %s", w.Code, w.Body.String())
		}
	}
	if w := do(t, router, http.MethodPost, "/files/f1/collaborators", models.Collaborator{ID: "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid collaborator = %d, want 400", w.Code)
	}

	count := func(query string) int {
		w := do(t, router, http.MethodGet, "/files/f1/collaborators"+query, nil)
		var resp CollaboratorsResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return len(resp.Entries)
	}
	if n := count(""); n != 1 {
		t.Errorf("default = %d, want 1", n)
	}
	if n := count("?include_groups=true&include_uploader_collabs=true"); n != 3 {
		t.Errorf("all = %d, want 3", n)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/files/f1/annotations", regionBody("the quokka smiles"))

	w := do(t, router, http.MethodGet, "/search?q=quokka", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].FileID != "f1" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := do(t, router, http.MethodPost, "/files/f1/annotations", regionBody(""), "Authorization", "Bearer secret123")
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/files/f1/annotations", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
	if e := decodeError(t, w); e.Code != codeUnauthorized {
		t.Errorf("code = %q", e.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/files/f1/annotations", nil, "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/files/f1/annotations", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	router, _ := testEnvWithInbox(t, true, "secret", sseStub())
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router, _ := testEnvWithInbox(t, true, "tok", sseStub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

// Import tests.

const batchYAML = `file_id: f1
file_version_id: v1
annotations:
  - id: batch-1
    type: highlight
    message: imported
    target:
      location: {type: page, value: 2}
      shapes: [{x: 1, y: 1, width: 10, height: 2}]
`

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadListDeleteImport(t *testing.T) {
	router, inbox := testEnvWithInbox(t, false, "", nil)

	w := uploadFile(t, router, "review.yaml", []byte(batchYAML))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ImportUploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Filename != "review.yaml" || resp.Annotations != 1 {
		t.Errorf("response = %+v", resp)
	}

	if _, err := os.Stat(filepath.Join(inbox, "review.yaml")); err != nil {
		t.Errorf("batch not written to inbox: %v", err)
	}
	if w := do(t, router, http.MethodGet, "/annotations/batch-1", nil); w.Code != http.StatusOK {
		t.Errorf("imported annotation = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/imports", nil)
	var list ImportListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Entries) != 1 || list.Entries[0].Path != "review.yaml" {
		t.Errorf("imports = %+v", list.Entries)
	}

	if w := uploadFile(t, router, "review.yaml", []byte(batchYAML)); w.Code != http.StatusConflict {
		t.Errorf("duplicate upload = %d, want 409", w.Code)
	}

	if w := do(t, router, http.MethodDelete, "/imports/review.yaml", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete import = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/annotations/batch-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("annotation after import delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/imports/review.yaml", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestUploadImport_Invalid(t *testing.T) {
	router := testEnv(t, "")
	if w := uploadFile(t, router, "notes.txt", []byte(batchYAML)); w.Code != http.StatusBadRequest {
		t.Errorf("wrong extension = %d, want 400", w.Code)
	}
	if w := uploadFile(t, router, "bad.yaml", []byte("annotations: []")); w.Code != http.StatusBadRequest {
		t.Errorf("invalid batch = %d, want 400", w.Code)
	}
}

func TestUploadImport_MissingFileField(t *testing.T) {
	router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file field = %d, want 400", w.Code)
	}
}

func TestUploadImport_AuthProtected(t *testing.T) {
	router := testEnv(t, "secret")
	if w := uploadFile(t, router, "a.yaml", []byte(batchYAML)); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed upload = %d, want 401", w.Code)
	}
}
