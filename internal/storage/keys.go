package storage

import "fmt"

// Object key layout inside the bucket.

func DocumentExportPrefix(documentID uint) string {
	return fmt.Sprintf("generated-documents/%d/", documentID)
}

// DocumentExportKey 每次导出使用新的随机文件名，旧链接不会被覆盖。
func DocumentExportKey(documentID uint, name string) string {
	return DocumentExportPrefix(documentID) + name + ".pdf"
}

func TemplateThumbnailKey(templateID string) string {
	return fmt.Sprintf("thumbnails/template/%s/preview.jpg", templateID)
}
