package handlers

import (
	"net/http"

	"github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
)

type route struct {
	method  string
	path    string
	handler drift.HandlerFunc
}

// newTestApp mounts routes behind the body parser and, when protected, the
// bearer token middleware.
func newTestApp(protected bool, routes ...route) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	if protected {
		app.Use(middleware.Auth(testutil.TestJWTService()))
	}
	for _, r := range routes {
		switch r.method {
		case http.MethodGet:
			app.Get(r.path, r.handler)
		case http.MethodPost:
			app.Post(r.path, r.handler)
		case http.MethodPatch:
			app.Patch(r.path, r.handler)
		case http.MethodDelete:
			app.Delete(r.path, r.handler)
		}
	}
	return app
}
