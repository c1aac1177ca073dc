// Package views は画面テンプレートを埋め込みで提供します。
package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates は埋め込まれた全テンプレートを解析して返します。テンプレート名はファイル名です。
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.html")
}
