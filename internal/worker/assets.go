package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"resumeforge/internal/document"
	"resumeforge/internal/storage"
)

var embeddableTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
}

// photoField returns the basics photo of whichever payload the input carries.
func photoField(in *document.Input) *string {
	switch {
	case in.Resume != nil:
		return &in.Resume.Basics.Photo
	case in.CoverLetter != nil:
		return &in.CoverLetter.Basics.Photo
	}
	return nil
}

func isInlineOrRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://")
}

// inlinePhoto 把存储在 MinIO 中的照片替换为 data URI，渲染器因此无需访问网络。
// 资源缺失或不是 png/jpeg/gif 时清空照片并返回缺失的 key；其它存储错误原样返回以便重试。
func inlinePhoto(ctx context.Context, store objectReader, in *document.Input) (missing []string, err error) {
	photo := photoField(in)
	if photo == nil {
		return nil, nil
	}
	src := strings.TrimSpace(*photo)
	if src == "" || isInlineOrRemote(src) {
		return nil, nil
	}

	key := strings.TrimPrefix(src, "/")
	data, contentType, err := store.ReadObject(ctx, key)
	switch {
	case storage.IsNoSuchKey(err), errors.Is(err, storage.ErrObjectTooLarge):
		*photo = ""
		return []string{key}, nil
	case err != nil:
		return nil, fmt.Errorf("read photo %q: %w", key, err)
	}

	// 以内容嗅探为准，只内联 PDF 能嵌入的格式
	contentType = http.DetectContentType(data)
	if _, ok := embeddableTypes[contentType]; !ok {
		*photo = ""
		return []string{key}, nil
	}

	*photo = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return nil, nil
}
