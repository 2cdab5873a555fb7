package database

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func TestMigrateAndUniqueTemplatePreview(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Open(sqlite.Open(dsn), "silent")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	doc := Document{
		Title:   "Jane Doe - Resume",
		Kind:    "resume",
		Content: datatypes.JSON(`{"type":"resume","data":{"basics":{"name":"Jane Doe"}}}`),
		Status:  StatusDraft,
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}
	if doc.ID == 0 {
		t.Fatalf("expected document id to be assigned")
	}

	if err := db.Create(&TemplatePreview{TemplateID: "modern", ObjectKey: "a"}).Error; err != nil {
		t.Fatalf("create preview: %v", err)
	}
	if err := db.Create(&TemplatePreview{TemplateID: "modern", ObjectKey: "b"}).Error; err == nil {
		t.Fatalf("expected unique index violation for duplicate template id")
	}
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"ERROR":  logger.Error,
		" info ": logger.Info,
		"warn":   logger.Warn,
		"":       logger.Warn,
		"bogus":  logger.Warn,
	}
	for in, want := range cases {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
