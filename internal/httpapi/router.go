package httpapi

import (
	"context"

	"github.com/go-chi/chi/v5"

	"jobboard-engine/internal/logging"
	"jobboard-engine/internal/metrics"
)

// NewRouter returns the chi router so main() can still attach /shutdown
// (needs srv+token).
func NewRouter(d Deps) chi.Router {
	d.Log = logging.OrNop(d.Log)
	if d.BaseCtx == nil {
		d.BaseCtx = context.Background()
	}
	metrics.Init()

	r := chi.NewRouter()
	r.Use(RequestID, Recover(d.Log), AccessLog(d.Log), Cors, metrics.Middleware)

	r.Get("/health", HealthHandler{}.Health)
	r.Handle("/metrics", metrics.Handler())

	lh := ListingsHandler{Board: d.Board}
	r.Get("/listings", lh.All)
	r.Get("/listings/{tier}", lh.Tier)
	r.Get("/news", lh.News)

	jh := JobsHandler{DB: d.DB, Board: d.Board, Hub: d.Hub}
	r.Delete("/jobs/{id}", jh.Delete)

	rh := RefreshHandler{Poller: d.Poller, BaseCtx: d.BaseCtx, Log: d.Log}
	r.Post("/refresh", rh.Run)
	r.Get("/refresh/status", rh.Status)

	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	r.Get("/config", ch.Get)
	r.Put("/config", ch.Put)
	r.Get("/config/path", ch.Path)
	r.Get("/config/validate", ch.Validate)

	sh := SecretsHandler{CfgVal: d.CfgVal}
	r.Post("/api/secrets/token", sh.SetToken)
	r.Delete("/api/secrets/token", sh.DeleteToken)

	r.Post("/db/checkpoint", DBHandler{DB: d.DB}.Checkpoint)

	r.Get("/events", EventsHandler{Hub: d.Hub}.ServeSSE)

	return r
}
