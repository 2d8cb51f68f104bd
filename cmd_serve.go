package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/geosurvey/geosurvey/app"
	"github.com/geosurvey/geosurvey/config"
	"github.com/geosurvey/geosurvey/httpx"
	"github.com/geosurvey/geosurvey/log"
	"github.com/geosurvey/geosurvey/routes"
	"github.com/geosurvey/geosurvey/store"
)

func serveCmd() *cobra.Command {
	var host string
	var port uint
	var tokenSecret string
	var tokenTTL uint

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Server(host, port, dbUrl, tokenSecret, tokenTTL, debug)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			a := app.App{
				Store:        store.New(db),
				BearerServer: httpx.NewBearerServer(db, cfg),
				Config:       cfg,
			}
			handler := routes.Wire(a)

			err = runServer(cfg, handler)
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "listen host name")
	cmd.Flags().UintVar(&port, "port", 80, "listen port number")
	cmd.Flags().StringVar(&tokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	cmd.Flags().UintVar(&tokenTTL, "token-ttl", 120, "token TTL in seconds")
	return cmd
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
