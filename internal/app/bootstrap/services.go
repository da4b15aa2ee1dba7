// internal/app/bootstrap/services.go
package bootstrap

import (
	"sync"

	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/system/auditlog"
	"github.com/dalemusser/influencerhub/internal/app/system/metrics"
	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/app/system/ratelimit"
	"github.com/dalemusser/influencerhub/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// services are the long-lived components shared by Startup, BuildHandler
// and Shutdown.
type services struct {
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	influencers *influencerstore.Store
	operators   *operatorstore.Store
	audit       *audit.Store
	auditLog    *auditlog.Logger
	limiter     *ratelimit.LoginLimiter
	backfill    *workers.Backfill
}

var (
	svcMu sync.Mutex
	svc   *services
)

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	as := audit.New(deps.Store)
	return &services{
		registry: reg,
		metrics:  m,
		influencers: influencerstore.New(deps.Store,
			influencerstore.WithNormalizer(normalize.New(appCfg.KeywordCap, appCfg.KeywordPrefixLen)),
			influencerstore.WithLogger(logger),
			influencerstore.WithMetrics(m),
			influencerstore.WithPageSize(appCfg.ListPageSize),
			influencerstore.WithSearchLimit(appCfg.SearchDefaultLimit),
			influencerstore.WithBackfillConcurrency(appCfg.BackfillConcurrency),
		),
		operators: operatorstore.New(deps.Store),
		audit:     as,
		auditLog: auditlog.New(as, logger, auditlog.Config{
			Auth:   appCfg.AuditLogAuth,
			Roster: appCfg.AuditLogRoster,
		}),
		limiter: ratelimit.NewLoginLimiter(ratelimit.LoginConfig{
			IPLimit:     appCfg.LoginIPLimit,
			IPWindow:    appCfg.LoginIPWindow,
			EmailLimit:  appCfg.LoginEmailLimit,
			EmailWindow: appCfg.LoginEmailWindow,
		}),
	}
}

// current returns the services built by Startup, building them on first
// use when Startup did not run.
func current(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	svcMu.Lock()
	defer svcMu.Unlock()
	if svc == nil {
		svc = newServices(appCfg, deps, logger)
	}
	return svc
}

// release hands back the services and forgets them.
func release() *services {
	svcMu.Lock()
	defer svcMu.Unlock()
	s := svc
	svc = nil
	return s
}
