package http

import (
	"html/template"
	"net/http"
)

var placeholderPage = template.Must(template.New("placeholder").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>glamsite admin</title></head>
<body><h1>glamsite admin</h1><p>No dashboard build is configured for {{.}}.</p></body>
</html>
`))

// NewStaticHandler serves the built dashboard and login pages from dir.
// With no dir it serves a placeholder page for every path.
func NewStaticHandler(dir string) http.Handler {
	if dir == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_ = placeholderPage.Execute(w, r.URL.Path)
		})
	}
	return http.FileServer(http.Dir(dir))
}
