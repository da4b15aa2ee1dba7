// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"github.com/dalemusser/influencerhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: it
// applies timeouts, ensures the bootstrap operator and starts the backfill
// worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:     appCfg.TimeoutPing,
		Read:     appCfg.TimeoutRead,
		Search:   appCfg.TimeoutSearch,
		Write:    appCfg.TimeoutWrite,
		Backfill: appCfg.TimeoutBackfill,
	})
	t := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", t.Ping),
		zap.Duration("read", t.Read),
		zap.Duration("search", t.Search),
		zap.Duration("write", t.Write),
		zap.Duration("backfill", t.Backfill))

	s := current(appCfg, deps, logger)

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, s.operators, appCfg.AdminEmail, appCfg.AdminName, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}

	if appCfg.BackfillInterval > 0 {
		s.backfill = workers.NewBackfill(s.influencers, s.auditLog, logger, appCfg.BackfillInterval, appCfg.BackfillBatch)
		s.backfill.Start()
	} else {
		logger.Info("backfill worker disabled")
	}
	return nil
}

// ensureAdmin creates the bootstrap operator unless one with the email
// already exists. An existing operator's password and status are left
// alone.
func ensureAdmin(ctx context.Context, ops *operatorstore.Store, email, name, password string, logger *zap.Logger) error {
	_, found, err := ops.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up bootstrap operator: %w", err)
	}
	if found {
		logger.Info("bootstrap operator present", zap.String("email", email))
		return nil
	}

	op, err := ops.Create(ctx, email, name, password)
	if errors.Is(err, operatorstore.ErrDuplicateEmail) {
		// Another instance created it between lookup and insert.
		return nil
	}
	if err != nil {
		return fmt.Errorf("create bootstrap operator: %w", err)
	}
	logger.Info("bootstrap operator created", zap.String("email", op.Email), zap.String("operator_id", op.ID))
	return nil
}
