// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work and closes the document store.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if s := release(); s != nil {
		if s.backfill != nil {
			s.backfill.Stop()
		}
		s.limiter.Close()
	}
	if deps.Store != nil {
		logger.Info("closing document store", zap.String("backend", deps.Backend))
		if err := deps.Store.Close(ctx); err != nil {
			logger.Error("document store close failed", zap.Error(err))
			return err
		}
	}
	return nil
}
