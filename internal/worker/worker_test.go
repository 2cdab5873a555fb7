package worker

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeforge/internal/database"
	"resumeforge/internal/document"
	"resumeforge/internal/errcode"
	"resumeforge/internal/render"
	"resumeforge/internal/tasks"
	"resumeforge/internal/templates"
)

type storedObject struct {
	data        []byte
	contentType string
}

type fakeStore struct {
	objects map[string]storedObject
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]storedObject{}}
}

func (s *fakeStore) ReadObject(_ context.Context, key string) ([]byte, string, error) {
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("get object %q: %w", key, minio.ErrorResponse{Code: "NoSuchKey"})
	}
	return obj.data, obj.contentType, nil
}

func (s *fakeStore) UploadFile(_ context.Context, name string, reader io.Reader, _ int64, contentType string) (*minio.UploadInfo, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.objects[name] = storedObject{data: b, contentType: contentType}
	return &minio.UploadInfo{Key: name, Size: int64(len(b))}, nil
}

func (s *fakeStore) DeleteObject(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) GeneratePresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + key, nil
}

func (s *fakeStore) keysWithPrefix(prefix string) []string {
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

type published struct {
	channel string
	message ExportNotifyMessage
}

type fakePublisher struct {
	messages []published
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	var msg ExportNotifyMessage
	if b, ok := message.([]byte); ok {
		_ = json.Unmarshal(b, &msg)
	}
	p.messages = append(p.messages, published{channel: channel, message: msg})
	return redis.NewIntResult(1, nil)
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func seedDocument(t *testing.T, db *gorm.DB, in document.Input) database.Document {
	t.Helper()
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	doc := database.Document{
		Title:      "test",
		Kind:       string(in.Type),
		TemplateID: in.TemplateID,
		Content:    datatypes.JSON(raw),
		Status:     database.StatusQueued,
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func exportTask(t *testing.T, id uint) *asynq.Task {
	t.Helper()
	task, err := tasks.NewDocumentExportTask(id, "corr-1")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

type exportFixture struct {
	db      *gorm.DB
	store   *fakeStore
	pub     *fakePublisher
	handler *ExportHandler
}

func newExportFixture(t *testing.T) exportFixture {
	f := exportFixture{db: newTestDB(t), store: newFakeStore(), pub: &fakePublisher{}}
	f.handler = NewExportHandler(f.db, render.NewEngine(templates.MustLoadBuiltin()), f.store, f.pub, discardLogger())
	return f
}

func (f exportFixture) reload(t *testing.T, id uint) database.Document {
	t.Helper()
	var doc database.Document
	if err := f.db.First(&doc, id).Error; err != nil {
		t.Fatalf("reload document: %v", err)
	}
	return doc
}

func TestExportHandlerRendersAndUploads(t *testing.T) {
	f := newExportFixture(t)
	doc := seedDocument(t, f.db, document.Sample(document.KindResume, "classic"))

	if err := f.handler.ProcessTask(context.Background(), exportTask(t, doc.ID)); err != nil {
		t.Fatalf("process task: %v", err)
	}

	got := f.reload(t, doc.ID)
	if got.Status != database.StatusCompleted || got.Pages < 1 {
		t.Fatalf("unexpected document state %+v", got)
	}
	keys := f.store.keysWithPrefix(fmt.Sprintf("generated-documents/%d/", doc.ID))
	if len(keys) != 1 || keys[0] != got.PdfKey {
		t.Fatalf("expected uploaded pdf at %q, got %v", got.PdfKey, keys)
	}
	if obj := f.store.objects[got.PdfKey]; !bytes.HasPrefix(obj.data, []byte("%PDF")) || obj.contentType != "application/pdf" {
		t.Fatalf("uploaded object is not a pdf")
	}

	if len(f.pub.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.pub.messages))
	}
	msg := f.pub.messages[0]
	if msg.channel != tasks.DocumentNotifyChannel(doc.ID) {
		t.Fatalf("unexpected channel %q", msg.channel)
	}
	if msg.message.Status != database.StatusCompleted || msg.message.ErrorCode != errcode.OK || msg.message.CorrelationID != "corr-1" {
		t.Fatalf("unexpected notification %+v", msg.message)
	}
}

func TestExportHandlerInlinesStoredPhoto(t *testing.T) {
	f := newExportFixture(t)
	f.store.objects["photos/me.png"] = storedObject{data: pngBytes(t), contentType: "image/png"}

	in := document.Sample(document.KindResume, "executive")
	in.Resume.Basics.Photo = "photos/me.png"
	doc := seedDocument(t, f.db, in)

	if err := f.handler.ProcessTask(context.Background(), exportTask(t, doc.ID)); err != nil {
		t.Fatalf("process task: %v", err)
	}

	got := f.reload(t, doc.ID)
	if !bytes.Contains(f.store.objects[got.PdfKey].data, []byte("/Subtype /Image")) {
		t.Fatalf("expected the photo to be embedded")
	}
	if code := f.pub.messages[0].message.ErrorCode; code != errcode.OK {
		t.Fatalf("unexpected error code %d", code)
	}
}

// adam7PNG is a 1x1 interlaced PNG; image/png cannot write one.
func adam7PNG(t *testing.T) []byte {
	t.Helper()
	chunk := func(buf *bytes.Buffer, kind string, data []byte) {
		_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(kind), data...)
		buf.Write(body)
		_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	if _, err := zw.Write([]byte{0, 10, 120, 200}); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compress: %v", err)
	}
	ihdr := []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 1}

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	chunk(&out, "IHDR", ihdr)
	chunk(&out, "IDAT", idat.Bytes())
	chunk(&out, "IEND", nil)
	return out.Bytes()
}

func TestExportHandlerEmbedsInterlacedPhoto(t *testing.T) {
	f := newExportFixture(t)
	f.store.objects["photos/adam7.png"] = storedObject{data: adam7PNG(t), contentType: "image/png"}

	in := document.Sample(document.KindResume, "executive")
	in.Resume.Basics.Photo = "photos/adam7.png"
	doc := seedDocument(t, f.db, in)

	if err := f.handler.ProcessTask(context.Background(), exportTask(t, doc.ID)); err != nil {
		t.Fatalf("process task: %v", err)
	}
	got := f.reload(t, doc.ID)
	if got.Status != database.StatusCompleted {
		t.Fatalf("expected completed, got %q", got.Status)
	}
	if !bytes.Contains(f.store.objects[got.PdfKey].data, []byte("/Subtype /Image")) {
		t.Fatalf("expected the photo to be embedded")
	}
}

func TestExportHandlerReportsMissingPhoto(t *testing.T) {
	f := newExportFixture(t)
	in := document.Sample(document.KindResume, "executive")
	in.Resume.Basics.Photo = "photos/missing.png"
	doc := seedDocument(t, f.db, in)

	if err := f.handler.ProcessTask(context.Background(), exportTask(t, doc.ID)); err != nil {
		t.Fatalf("process task: %v", err)
	}

	if got := f.reload(t, doc.ID); got.Status != database.StatusCompleted {
		t.Fatalf("export should still complete, got status %q", got.Status)
	}
	msg := f.pub.messages[0].message
	if msg.ErrorCode != errcode.ResourceMissing {
		t.Fatalf("expected resource missing code, got %d", msg.ErrorCode)
	}
	if len(msg.MissingKeys) != 1 || msg.MissingKeys[0] != "photos/missing.png" {
		t.Fatalf("unexpected missing keys %v", msg.MissingKeys)
	}
}

func TestExportHandlerInvalidDocumentSkipsRetry(t *testing.T) {
	f := newExportFixture(t)
	doc := database.Document{
		Title:   "broken",
		Kind:    "resume",
		Content: datatypes.JSON(`{"type":"memo","data":{}}`),
		Status:  database.StatusQueued,
	}
	if err := f.db.Create(&doc).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := f.handler.ProcessTask(context.Background(), exportTask(t, doc.ID))
	if !errors.Is(err, asynq.SkipRetry) || !errors.Is(err, document.ErrInvalidInput) {
		t.Fatalf("expected non-retryable invalid input error, got %v", err)
	}
	if got := f.reload(t, doc.ID); got.Status != database.StatusFailed {
		t.Fatalf("expected failed status, got %q", got.Status)
	}
	if len(f.pub.messages) != 1 || f.pub.messages[0].message.ErrorCode != errcode.InvalidDocument {
		t.Fatalf("expected invalid document notification, got %+v", f.pub.messages)
	}
}

func TestExportHandlerDiscardsPDFWhenDocumentChanged(t *testing.T) {
	f := newExportFixture(t)
	doc := seedDocument(t, f.db, document.Sample(document.KindResume, "classic"))
	// edited after the export was queued
	if err := f.db.Model(&doc).Update("status", database.StatusDraft).Error; err != nil {
		t.Fatalf("mark draft: %v", err)
	}

	if err := f.handler.ProcessTask(context.Background(), exportTask(t, doc.ID)); err != nil {
		t.Fatalf("process task: %v", err)
	}

	got := f.reload(t, doc.ID)
	if got.Status != database.StatusDraft || got.PdfKey != "" {
		t.Fatalf("stale export must not complete the document, got %+v", got)
	}
	if keys := f.store.keysWithPrefix(fmt.Sprintf("generated-documents/%d/", doc.ID)); len(keys) != 0 {
		t.Fatalf("stale pdf should be removed, got %v", keys)
	}
	if len(f.pub.messages) != 0 {
		t.Fatalf("unexpected notifications %+v", f.pub.messages)
	}
}

func TestExportHandlerSkipsMissingDocument(t *testing.T) {
	f := newExportFixture(t)
	if err := f.handler.ProcessTask(context.Background(), exportTask(t, 999)); err != nil {
		t.Fatalf("expected nil for missing document, got %v", err)
	}
	if len(f.pub.messages) != 0 {
		t.Fatalf("unexpected notifications %+v", f.pub.messages)
	}
}

func TestInlinePhoto(t *testing.T) {
	store := newFakeStore()
	store.objects["photos/note.txt"] = storedObject{data: []byte("hello"), contentType: "text/plain"}
	store.objects["photos/raw"] = storedObject{data: pngBytes(t)}
	store.objects["photos/me.webp"] = storedObject{data: []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00"), contentType: "image/webp"}
	store.objects["photos/mislabelled"] = storedObject{data: []byte("plain text"), contentType: "image/png"}

	cases := []struct {
		name       string
		photo      string
		wantPrefix string
		missing    int
	}{
		{"empty", "", "", 0},
		{"data uri kept", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA", 0},
		{"remote kept", "https://example.com/me.png", "https://example.com/me.png", 0},
		{"not an image", "photos/note.txt", "", 1},
		{"sniffed type", "/photos/raw", "data:image/png;base64,", 0},
		{"webp not embeddable", "photos/me.webp", "", 1},
		{"content type not trusted", "photos/mislabelled", "", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := document.Input{Type: document.KindCoverLetter, CoverLetter: &document.CoverLetterData{
				Basics: document.Basics{Name: "Jane", Photo: tc.photo},
			}}
			missing, err := inlinePhoto(context.Background(), store, &in)
			if err != nil {
				t.Fatalf("inline photo: %v", err)
			}
			if len(missing) != tc.missing {
				t.Fatalf("missing = %v, want %d keys", missing, tc.missing)
			}
			got := in.CoverLetter.Basics.Photo
			if !strings.HasPrefix(got, tc.wantPrefix) || (tc.wantPrefix == "" && got != "") {
				t.Fatalf("photo = %q, want prefix %q", got, tc.wantPrefix)
			}
		})
	}
}

func TestExportErrorCode(t *testing.T) {
	if got := exportErrorCode(fmt.Errorf("x: %w", templates.ErrTemplateUnavailable)); got != errcode.TemplateUnavailable {
		t.Fatalf("unexpected code %d", got)
	}
	if got := exportErrorCode(errors.New("disk full")); got != errcode.SystemError {
		t.Fatalf("unexpected code %d", got)
	}
}

func TestTemplatePreviewHandlerStoresThumbnail(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	h := NewTemplatePreviewHandler(db, templates.MustLoadBuiltin(), store, discardLogger(), "http://api:8080/", "s3cret")

	var calls []string
	h.capture = func(_ context.Context, _ *slog.Logger, targetURL string, headers map[string]string, _ int) ([]byte, error) {
		if headers["X-Internal-Secret"] != "s3cret" {
			t.Fatalf("missing internal secret header")
		}
		calls = append(calls, targetURL)
		return []byte("jpeg"), nil
	}

	task, err := tasks.NewTemplatePreviewTask("modern", "")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := h.ProcessTask(context.Background(), task); err != nil {
			t.Fatalf("process task: %v", err)
		}
	}

	if len(calls) != 2 || calls[0] != "http://api:8080/internal/templates/modern/sample" {
		t.Fatalf("unexpected capture calls %v", calls)
	}
	if _, ok := store.objects["thumbnails/template/modern/preview.jpg"]; !ok {
		t.Fatalf("thumbnail was not uploaded")
	}
	var count int64
	db.Model(&database.TemplatePreview{}).Where("template_id = ?", "modern").Count(&count)
	if count != 1 {
		t.Fatalf("expected one preview row, got %d", count)
	}
}

func TestTemplatePreviewHandlerSkipsUnknownTemplate(t *testing.T) {
	h := NewTemplatePreviewHandler(newTestDB(t), templates.MustLoadBuiltin(), newFakeStore(), discardLogger(), "http://api", "s3cret")
	h.capture = func(context.Context, *slog.Logger, string, map[string]string, int) ([]byte, error) {
		t.Fatalf("capture must not run for unknown templates")
		return nil, nil
	}
	task, _ := tasks.NewTemplatePreviewTask("nope", "")
	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
