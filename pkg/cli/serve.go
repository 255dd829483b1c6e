package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/cli/config"
	server "github.com/m-kurita/promptreg/pkg/controller/http"
	"github.com/m-kurita/promptreg/pkg/usecase"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func cmdServe() *cli.Command {
	var (
		addr    string
		cfgPath string
		dbCfg   config.Database
		fsCfg   config.Firestore
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Sources:     cli.EnvVars("PROMPTREG_ADDR"),
			Usage:       "Listen address (default: 127.0.0.1:8080)",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Sources:     cli.EnvVars("PROMPTREG_CONFIG"),
			Usage:       "Path to YAML configuration file",
			Destination: &cfgPath,
		},
	}
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, fsCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run registry server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// Values from the config file fill in anything not set
			// explicitly via flag or environment variable
			if cfgPath != "" {
				file, err := config.LoadFile(cfgPath)
				if err != nil {
					return err
				}
				if !cmd.IsSet("addr") && file.Addr != "" {
					addr = file.Addr
				}
				if !cmd.IsSet("db-backend") && file.Database.Backend != "" {
					dbCfg.Backend = file.Database.Backend
				}
				if !cmd.IsSet("db-sqlite-path") && file.Database.SQLitePath != "" {
					dbCfg.SQLitePath = file.Database.SQLitePath
				}
				if !cmd.IsSet("firestore-project-id") && file.Firestore.ProjectID != "" {
					fsCfg.ProjectID = file.Firestore.ProjectID
				}
				if !cmd.IsSet("firestore-database-id") && file.Firestore.DatabaseID != "" {
					fsCfg.DatabaseID = file.Firestore.DatabaseID
				}
			}
			fsCfg.SetDefaults()

			logger := ctxlog.From(ctx)
			logger.Info("starting server",
				"addr", addr,
				"database", dbCfg,
			)

			repo, closeRepo, err := dbCfg.Configure(ctx, &fsCfg)
			if err != nil {
				return goerr.Wrap(err, "failed to configure database")
			}
			defer closeRepo()

			uc := usecase.NewPromptUseCases(repo)
			ctrl := server.NewPromptController(uc)

			httpServer := http.Server{
				Addr:              addr,
				Handler:           server.New(server.WithPromptController(ctrl)),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			eg.Go(func() error {
				ctxlog.From(ctx).Info("server started", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "server failed")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				ctxlog.From(ctx).Info("shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			return eg.Wait()
		},
	}
}
