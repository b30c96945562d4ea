package router

import (
	"net/http"

	"go.uber.org/zap"

	"coursesched/internal/engine"
	"coursesched/internal/handlers"
	"coursesched/internal/middleware"
	"coursesched/pkg/metrics"
	"coursesched/pkg/solvecache"
)

// Router handles HTTP routing for the scheduling service.
type Router struct {
	mux *http.ServeMux
}

// Deps bundles everything Setup needs to build the handler tree.
type Deps struct {
	Log     *zap.Logger
	Config  engine.Config
	Metrics *metrics.Recorder
	Gate    *solvecache.ConcurrencyGate
	Reports *solvecache.ReportCache
}

// New creates a new Router.
func New() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Setup registers every route and wraps the mux in the logging/error
// middleware chain.
func (r *Router) Setup(deps Deps) {
	// deps.Metrics is a *metrics.Recorder; passing a nil one straight into
	// the engine.Recorder interface parameter would produce a non-nil
	// interface wrapping a nil pointer, defeating engine.Solve's rec == nil
	// check. Convert explicitly so a nil Metrics stays a nil interface.
	var rec engine.Recorder
	if deps.Metrics != nil {
		rec = deps.Metrics
	}
	scheduleHandler := handlers.NewScheduleHandler(deps.Log, deps.Config, rec, deps.Gate, deps.Reports)

	r.mux.HandleFunc("GET /", middleware.WithErrorHandling(deps.Log, scheduleHandler.Health))
	r.mux.HandleFunc("POST /solve", middleware.WithErrorHandling(deps.Log, scheduleHandler.Solve))
	r.mux.HandleFunc("GET /solve/report", middleware.WithErrorHandling(deps.Log, scheduleHandler.Report))

	if deps.Metrics != nil {
		r.mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	r.mux.HandleFunc("GET /docs", serveOpenAPIUI)
	r.mux.HandleFunc("GET /docs/openapi.yaml", serveOpenAPISpec)

	handler := middleware.Chain(
		middleware.RequestLogger(deps.Log),
	)(r.mux)

	r.mux = http.NewServeMux()
	r.mux.Handle("/", handler)
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// serveOpenAPISpec serves the OpenAPI specification file
func serveOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "docs/openapi.yaml")
}

// serveOpenAPIUI serves a simple HTML page that loads Swagger UI
func serveOpenAPIUI(w http.ResponseWriter, r *http.Request) {
	html := `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Scheduler API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
    <style>
        html { box-sizing: border-box; overflow: -moz-scrollbars-vertical; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin: 0; background: #fafafa; }
        .topbar { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "/docs/openapi.yaml",
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.SwaggerUIStandalonePreset
                ],
                layout: "BaseLayout",
                supportedSubmitMethods: []
            });
        };
    </script>
</body>
</html>
`
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}
