package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dalemusser/influencerhub/internal/app/bootstrap"
	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/system/authutil"
	"go.uber.org/zap"
)

func runAddOperator(ctx context.Context, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("add-operator", flag.ContinueOnError)
	cfg := storeFlags(fs)
	email := fs.String("email", "", "operator email")
	name := fs.String("name", "", "display name")
	password := fs.String("password", "", "password (default $"+bootstrap.EnvPrefix+"_OPERATOR_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(bootstrap.EnvPrefix + "_OPERATOR_PASSWORD")
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("add-operator: -email and a password are required (%s)", authutil.PasswordRules())
	}

	deps, err := openStore(ctx, *cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Store.Close(context.Background()) }()

	op, err := operatorstore.New(deps.Store).Create(ctx, *email, *name, *password)
	if err != nil {
		return fmt.Errorf("add-operator: %w", err)
	}
	logger.Info("operator created", zap.String("email", op.Email), zap.String("operator_id", op.ID))
	return nil
}
