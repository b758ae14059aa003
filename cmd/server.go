/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blnkfinance/blnk-atm/api"
	"github.com/blnkfinance/blnk-atm/config"
	"github.com/caddyserver/certmagic"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	certStoragePath = "./certmagic"
	shutdownTimeout = 10 * time.Second
)

// newTLSServer manages certificates for the configured domain with CertMagic.
// An empty domain falls back to localhost.
func newTLSServer(r *gin.Engine, conf config.ServerConfig) (*http.Server, error) {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = conf.Email
	cfg := certmagic.NewDefault()
	cfg.Storage = &certmagic.FileStorage{Path: certStoragePath}

	domains := []string{conf.Domain}
	if conf.Domain == "" {
		logrus.Warn("No domain specified, defaulting to localhost")
		domains = []string{"localhost"}
	}

	if err := cfg.ManageSync(context.Background(), domains); err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:      ":" + conf.Port,
		Handler:   r,
		TLSConfig: cfg.TLSConfig(),
	}, nil
}

// startServer serves the router until SIGINT or SIGTERM, then drains
// in-flight requests.
func startServer(router *gin.Engine, conf config.ServerConfig) error {
	var (
		server *http.Server
		err    error
	)
	if conf.SSL {
		server, err = newTLSServer(router, conf)
		if err != nil {
			return err
		}
	} else {
		server = &http.Server{Addr: ":" + conf.Port, Handler: router}
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting server on %s (tls=%t)", server.Addr, conf.SSL)
		if conf.SSL {
			errCh <- server.ListenAndServeTLS("", "")
			return
		}
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logrus.Infof("Received %s, shutting down server", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

// serverCommands defines the "start" command that runs the HTTP API.
func serverCommands(app *atmInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start atm server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				return err
			}
			defer app.close()

			router := api.NewAPI(app.atm, app.cnf).Router()
			return startServer(router, app.cnf.Server)
		},
	}

	return cmd
}
