package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/travelreviews/webclient/internal/app"
	"github.com/travelreviews/webclient/internal/cli"
	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/pkg/config"
	"github.com/travelreviews/webclient/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var application *app.App
	root := cli.NewRootCommand(func(ctx context.Context, opts *cli.RootOptions) (*cli.Env, error) {
		cfg, err := config.Load(ctx)
		if err != nil {
			return nil, err
		}
		level := cfg.LogLevel
		if opts.Verbose {
			level = "debug"
		}
		log := logger.Init(logger.Options{Level: level, Pretty: cfg.LogPretty, App: "travelctl"})

		expired := ports.NavigatorFunc(func(context.Context) {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `travelctl login` to sign in again.")
		})
		application, err = app.New(ctx, cfg, log, app.WithNavigator(expired))
		if err != nil {
			return nil, err
		}
		return application.Env(), nil
	})

	err := root.ExecuteContext(ctx)
	if application != nil {
		if closeErr := application.Close(context.Background()); closeErr != nil {
			log := logger.Get()
			log.Warn().Err(closeErr).Msg("close storage")
		}
	}
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
