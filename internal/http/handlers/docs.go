package handlers

import (
	_ "embed"
	"html/template"
	"net/http"
)

//go:embed openapi.json
var apiDocument []byte

const apiDocumentPath = "/v1/openapi.json"

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body style="margin:0">
<redoc spec-url="{{.SpecURL}}"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
</body>
</html>
`))

// APIDocument serves the OpenAPI description of the salawat endpoints.
func (a *App) APIDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(apiDocument)
}

// APIDocs renders APIDocument with Redoc.
func (a *App) APIDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := docsPage.Execute(w, struct{ Title, SpecURL string }{
		Title:   "Salawat Campaign API",
		SpecURL: apiDocumentPath,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("docs: render page")
	}
}
