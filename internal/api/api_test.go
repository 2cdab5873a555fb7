package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/database"
	"resumeforge/internal/errcode"
	"resumeforge/internal/render"
	"resumeforge/internal/tasks"
	"resumeforge/internal/templates"
)

const testSecret = "s3cret"

const resumeJSON = `{
  "type": "resume",
  "templateId": "classic",
  "data": {
    "basics": {"name": "Jane Doe", "email": "jane@example.com"},
    "experiences": [{"id": "e1", "company": "Acme", "position": "Engineer"}]
  }
}`

type fakeStorage struct {
	presignParams map[string]map[string]string
	deleted       []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{presignParams: map[string]map[string]string{}}
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedURLWithParams(_ context.Context, objectKey string, _ time.Duration, params map[string]string) (string, error) {
	s.presignParams[objectKey] = params
	return "https://example.invalid/" + objectKey + "?signed=1", nil
}

func (s *fakeStorage) DeletePrefix(_ context.Context, prefix string) error {
	s.deleted = append(s.deleted, prefix)
	return nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
	// onEnqueue runs before EnqueueContext returns, like a worker that finishes immediately.
	onEnqueue func(task *asynq.Task)
}

func (q *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.onEnqueue != nil {
		q.onEnqueue(task)
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-" + strconv.Itoa(len(q.tasks)), Type: task.Type()}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := database.Open(sqlite.Open(dsn), "silent")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	storage *fakeStorage
	queue   *fakeEnqueuer
}

func newTestServer(t *testing.T, catalog *templates.Catalog) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		db:      newTestDB(t),
		storage: newFakeStorage(),
		queue:   &fakeEnqueuer{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = NewRouter(logger)
	RegisterRoutes(s.router, Dependencies{
		DB:             s.db,
		Engine:         render.NewEngine(catalog),
		Tasks:          s.queue,
		Storage:        s.storage,
		Logger:         logger,
		InternalSecret: testSecret,
	})
	return s
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func TestRenderPreviewReturnsHTML(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	w := s.do(http.MethodPost, "/v1/render/preview", resumeJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Jane Doe") {
		t.Fatalf("preview is missing the name")
	}
	if w.Header().Get(middleware.CorrelationIDHeader) == "" {
		t.Fatalf("expected correlation id header")
	}
}

func TestRenderPDFReturnsAttachment(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	w := s.do(http.MethodPost, "/v1/render/pdf", resumeJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a pdf")
	}
	if got := w.Header().Get("X-Page-Count"); got != "1" {
		t.Fatalf("unexpected page count %q", got)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Jane_Doe_-_Resume.pdf"`) {
		t.Fatalf("unexpected content disposition %q", cd)
	}
}

func TestRenderRejectsInvalidDocument(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	cases := map[string]string{
		"not json":     `{`,
		"unknown type": `{"type":"memo","data":{}}`,
		"missing id":   `{"type":"resume","data":{"basics":{},"experiences":[{"company":"Acme"}]}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/v1/render/pdf", body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422 got %d body=%s", w.Code, w.Body.String())
			}
			var resp struct {
				Code int `json:"code"`
			}
			decodeBody(t, w, &resp)
			if resp.Code != errcode.InvalidDocument {
				t.Fatalf("unexpected code %d", resp.Code)
			}
		})
	}
}

func TestRenderPDFWithoutTemplatesFails(t *testing.T) {
	empty, err := templates.NewCatalog(nil)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	s := newTestServer(t, empty)

	w := s.do(http.MethodPost, "/v1/render/pdf", resumeJSON)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	decodeBody(t, w, &resp)
	if resp.Error != msgExportFailed || resp.Code != errcode.TemplateUnavailable {
		t.Fatalf("unexpected response %+v", resp)
	}

	// the preview still renders with built-in defaults
	if w := s.do(http.MethodPost, "/v1/render/preview", resumeJSON); w.Code != http.StatusOK {
		t.Fatalf("preview expected 200 got %d", w.Code)
	}
}

func TestListTemplatesFuzzyFilter(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	w := s.do(http.MethodGet, "/v1/templates", "")
	var all []templateListItem
	decodeBody(t, w, &all)
	if len(all) != len(templates.MustLoadBuiltin().Entries()) {
		t.Fatalf("expected every template, got %d", len(all))
	}

	w = s.do(http.MethodGet, "/v1/templates?q=executive", "")
	var filtered []templateListItem
	decodeBody(t, w, &filtered)
	if len(filtered) == 0 || filtered[0].ID != "executive" {
		t.Fatalf("expected executive first, got %+v", filtered)
	}
}

func TestGetTemplate(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	if w := s.do(http.MethodGet, "/v1/templates/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	if err := s.db.Create(&database.TemplatePreview{TemplateID: "executive", ObjectKey: "thumbnails/template/executive/preview.jpg"}).Error; err != nil {
		t.Fatalf("seed preview: %v", err)
	}
	w := s.do(http.MethodGet, "/v1/templates/executive", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var resp templateDetailResponse
	decodeBody(t, w, &resp)
	if resp.Config.Layout != templates.LayoutSidebarLeft {
		t.Fatalf("unexpected layout %q", resp.Config.Layout)
	}
	if !strings.HasSuffix(resp.ThumbnailURL, "thumbnails/template/executive/preview.jpg") {
		t.Fatalf("unexpected thumbnail url %q", resp.ThumbnailURL)
	}
}

func TestEnqueuePreviewImage(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	w := s.do(http.MethodPost, "/v1/templates/modern/preview-image", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", w.Code)
	}
	if len(s.queue.tasks) != 1 || s.queue.tasks[0].Type() != tasks.TypeTemplatePreview {
		t.Fatalf("expected one template preview task, got %+v", s.queue.tasks)
	}

	s.queue.err = asynq.ErrTaskIDConflict
	if w := s.do(http.MethodPost, "/v1/templates/modern/preview-image", ""); w.Code != http.StatusAccepted {
		t.Fatalf("duplicate request expected 202 got %d", w.Code)
	}
}

func TestInternalSampleRequiresSecret(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	if w := s.do(http.MethodGet, "/internal/templates/modern/sample", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	w := s.do(http.MethodGet, "/internal/templates/modern/sample?kind=cover-letter", "", middleware.InternalSecretHeader, testSecret)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `id="pdf-render-ready"`) || !strings.Contains(body, `data-kind="cover-letter"`) {
		t.Fatalf("sample page is missing markers")
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	w := s.do(http.MethodPost, "/v1/documents", `{"document":`+resumeJSON+`}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created documentResponse
	decodeBody(t, w, &created)
	if created.Title != "Jane Doe - Resume" || created.Kind != "resume" || created.TemplateID != "classic" {
		t.Fatalf("unexpected document %+v", created.documentListItem)
	}
	base := "/v1/documents/" + strconv.Itoa(int(created.ID))

	if w := s.do(http.MethodGet, base, ""); w.Code != http.StatusOK {
		t.Fatalf("get expected 200 got %d", w.Code)
	}

	w = s.do(http.MethodPost, base+"/export", "", middleware.CorrelationIDHeader, "corr-42")
	if w.Code != http.StatusAccepted {
		t.Fatalf("export expected 202 got %d", w.Code)
	}
	if len(s.queue.tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(s.queue.tasks))
	}
	var payload tasks.DocumentExportPayload
	if err := json.Unmarshal(s.queue.tasks[0].Payload(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.DocumentID != created.ID || payload.CorrelationID != "corr-42" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if w := s.do(http.MethodGet, base+"/download-link", ""); w.Code != http.StatusConflict {
		t.Fatalf("download-link before export expected 409 got %d", w.Code)
	}

	if err := s.db.Model(&database.Document{}).Where("id = ?", created.ID).
		Updates(map[string]any{"status": database.StatusCompleted, "pdf_key": "generated-documents/1/x.pdf", "pages": 2}).Error; err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	w = s.do(http.MethodGet, base+"/download-link", "")
	if w.Code != http.StatusOK {
		t.Fatalf("download-link expected 200 got %d", w.Code)
	}
	if cd := s.storage.presignParams["generated-documents/1/x.pdf"]["response-content-disposition"]; !strings.Contains(cd, "Jane_Doe_-_Resume.pdf") {
		t.Fatalf("unexpected disposition %q", cd)
	}

	w = s.do(http.MethodPut, base, `{"title":"Edited","document":`+resumeJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update expected 200 got %d", w.Code)
	}
	var updated documentResponse
	decodeBody(t, w, &updated)
	if updated.Title != "Edited" || updated.Status != database.StatusDraft {
		t.Fatalf("unexpected updated document %+v", updated.documentListItem)
	}

	if w := s.do(http.MethodDelete, base, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete expected 204 got %d", w.Code)
	}
	if len(s.storage.deleted) != 1 || s.storage.deleted[0] != "generated-documents/"+strconv.Itoa(int(created.ID))+"/" {
		t.Fatalf("expected export prefix to be removed, got %v", s.storage.deleted)
	}
	if w := s.do(http.MethodGet, base, ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete expected 404 got %d", w.Code)
	}
}

func createDocument(t *testing.T, s *testServer) documentResponse {
	t.Helper()
	w := s.do(http.MethodPost, "/v1/documents", `{"document":`+resumeJSON+`}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created documentResponse
	decodeBody(t, w, &created)
	return created
}

func TestExportCompletedBeforeEnqueueReturnsStaysCompleted(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())
	created := createDocument(t, s)
	base := "/v1/documents/" + strconv.Itoa(int(created.ID))

	s.queue.onEnqueue = func(*asynq.Task) {
		var doc database.Document
		if err := s.db.First(&doc, created.ID).Error; err != nil {
			t.Fatalf("load document: %v", err)
		}
		if doc.Status != database.StatusQueued {
			t.Fatalf("document must be queued before the task is visible, got %q", doc.Status)
		}
		err := s.db.Model(&database.Document{}).
			Where("id = ? AND status = ?", created.ID, database.StatusQueued).
			Updates(map[string]any{"status": database.StatusCompleted, "pdf_key": "generated-documents/1/fast.pdf", "pages": 1}).Error
		if err != nil {
			t.Fatalf("complete export: %v", err)
		}
	}

	if w := s.do(http.MethodPost, base+"/export", ""); w.Code != http.StatusAccepted {
		t.Fatalf("export expected 202 got %d", w.Code)
	}
	if w := s.do(http.MethodGet, base+"/download-link", ""); w.Code != http.StatusOK {
		t.Fatalf("download-link expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestExportEnqueueFailureRestoresStatus(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())
	created := createDocument(t, s)
	s.queue.err = errors.New("redis down")

	w := s.do(http.MethodPost, "/v1/documents/"+strconv.Itoa(int(created.ID))+"/export", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("export expected 500 got %d", w.Code)
	}
	var doc database.Document
	if err := s.db.First(&doc, created.ID).Error; err != nil {
		t.Fatalf("load document: %v", err)
	}
	if doc.Status != database.StatusDraft {
		t.Fatalf("expected status restored to draft, got %q", doc.Status)
	}
}

func TestDocumentValidation(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())

	if w := s.do(http.MethodPost, "/v1/documents", `{"title":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing document expected 400 got %d", w.Code)
	}
	if w := s.do(http.MethodPost, "/v1/documents", `{"document":{"type":"cover-letter","data":{"basics":{}}}}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid cover letter expected 422 got %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/v1/documents/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id expected 400 got %d", w.Code)
	}
}

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(ctx context.Context, key string, _ time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func TestRenderRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/render", RenderRateLimit(&fakeCounter{counts: map[string]int64{}}, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/render", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestWsRejectsMissingDocumentID(t *testing.T) {
	s := newTestServer(t, templates.MustLoadBuiltin())
	if w := s.do(http.MethodGet, "/v1/ws", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
