package api

import (
	"bytes"
	"html/template"
	"net/http"
)

var scalarPage = template.Must(template.New("scalar").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{ .Title }} - API Documentation</title>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<style>
		body {
			margin: 0;
			padding: 0;
		}
	</style>
</head>
<body>
	<script id="api-reference" data-url="{{ .SpecURL }}"></script>
	<script>
		var configuration = {
			theme: 'purple',
			layout: 'modern',
			showSidebar: true,
			hideDownloadButton: false,
			hideTestRequestButton: false,
			darkMode: true,
			metaData: {
				title: {{ .Title }},
				description: {{ .Description }}
			}
		};
		document.getElementById('api-reference').dataset.configuration = JSON.stringify(configuration);
	</script>
	<script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`))

// ScalarHandler serves the Scalar API reference for the spec at specURL.
func ScalarHandler(specURL, title, description string) http.Handler {
	var buf bytes.Buffer
	err := scalarPage.Execute(&buf, struct {
		SpecURL, Title, Description string
	}{specURL, title, description})

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if err != nil {
			http.Error(w, "Failed to render API reference", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	})
}
