// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditfeature "github.com/dalemusser/influencerhub/internal/app/features/auditlog"
	healthfeature "github.com/dalemusser/influencerhub/internal/app/features/health"
	influencersfeature "github.com/dalemusser/influencerhub/internal/app/features/influencers"
	loginfeature "github.com/dalemusser/influencerhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/influencerhub/internal/app/features/logout"
	"github.com/dalemusser/influencerhub/internal/app/system/auth"
	"github.com/dalemusser/influencerhub/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Everything under /api is JSON;
// /health and /metrics are unauthenticated for load balancers and
// scrapers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	s := current(appCfg, deps, logger)

	var tok *tokens.Service
	if appCfg.JWTSigningKey != "" {
		var err error
		tok, err = tokens.New(appCfg.JWTSigningKey, appCfg.JWTIssuer, appCfg.JWTTTL)
		if err != nil {
			logger.Error("token service init failed", zap.Error(err))
			return nil, err
		}
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, tok, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Store, deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		// Loads the operator from a bearer token or session cookie.
		api.Use(sessionMgr.LoadSessionUser)

		loginHandler := loginfeature.NewHandler(s.operators, sessionMgr, s.limiter, s.auditLog, s.metrics, logger)
		api.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, s.auditLog, logger)
		api.Mount("/logout", logoutfeature.Routes(logoutHandler))

		api.Group(func(pr chi.Router) {
			pr.Use(sessionMgr.RequireSignedIn)

			pr.Get("/me", loginHandler.ServeMe)

			influencersHandler := influencersfeature.NewHandler(s.influencers, s.auditLog, appCfg.BackfillBatch, logger)
			pr.Mount("/influencers", influencersfeature.Routes(influencersHandler))

			auditHandler := auditfeature.NewHandler(s.audit, logger)
			pr.Mount("/audit", auditfeature.Routes(auditHandler))
		})
	})

	return r, nil
}
