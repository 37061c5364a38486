package gateway

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	phttp "cardduel/internal/platform/net/http"
)

//go:embed openapi.json
var openapiJSON []byte

// MountDocs serves the API document and its swagger-ui viewer
func MountDocs(r phttp.Router) {
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(openapiJSON)
	})
	r.Handle("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
