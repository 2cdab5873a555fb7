package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestParseBucketLookup(t *testing.T) {
	cases := map[string]minio.BucketLookupType{
		"":      minio.BucketLookupAuto,
		"auto":  minio.BucketLookupAuto,
		" DNS ": minio.BucketLookupDNS,
		"path":  minio.BucketLookupPath,
	}
	for in, want := range cases {
		got, err := parseBucketLookup(in)
		if err != nil {
			t.Fatalf("parseBucketLookup(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("parseBucketLookup(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseBucketLookup("virtual"); err == nil {
		t.Fatalf("expected error for unknown lookup")
	}
}

func TestPublicEndpoint(t *testing.T) {
	host, secure, err := publicEndpoint("https://cdn.example.com", "minio:9000", false)
	if err != nil || host != "cdn.example.com" || !secure {
		t.Fatalf("unexpected result %q %v %v", host, secure, err)
	}
	host, secure, err = publicEndpoint("", "minio:9000", true)
	if err != nil || host != "minio:9000" || !secure {
		t.Fatalf("fallback not used: %q %v %v", host, secure, err)
	}
	if _, _, err := publicEndpoint("no-scheme", "minio:9000", false); err == nil {
		t.Fatalf("expected error when host is missing")
	}
}

func TestIsNoSuchKey(t *testing.T) {
	wrapped := fmt.Errorf("get object: %w", minio.ErrorResponse{Code: "NoSuchKey"})
	if !IsNoSuchKey(wrapped) {
		t.Fatalf("expected wrapped NoSuchKey to match")
	}
	if IsNoSuchKey(errors.New("connection refused")) {
		t.Fatalf("unexpected match")
	}
	if IsNoSuchKey(nil) {
		t.Fatalf("nil must not match")
	}
	if !IsNoSuchBucket(minio.ErrorResponse{Code: "NoSuchBucket"}) {
		t.Fatalf("expected NoSuchBucket to match")
	}
}

func TestObjectKeys(t *testing.T) {
	if got := DocumentExportKey(7, "abc"); got != "generated-documents/7/abc.pdf" {
		t.Fatalf("unexpected export key %q", got)
	}
	if got := TemplateThumbnailKey("modern"); got != "thumbnails/template/modern/preview.jpg" {
		t.Fatalf("unexpected thumbnail key %q", got)
	}
}
