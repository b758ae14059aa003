package main

import (
	"context"
	"errors"
	"fmt"

	atm "github.com/blnkfinance/blnk-atm"
	"github.com/blnkfinance/blnk-atm/config"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const workerConcurrency = 5

func initializeWorkerServer(conf *config.Configuration) (*asynq.Server, error) {
	redisOption, err := atm.QueueRedisOpt(conf)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		redisOption,
		asynq.Config{
			Concurrency: workerConcurrency,
			Queues:      map[string]int{atm.WEBHOOK_QUEUE: 1},
			Logger:      logrus.StandardLogger(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logrus.WithField("task", task.Type()).Errorf("webhook delivery failed: %v", err)
			}),
		},
	), nil
}

// workerCommands defines the "workers" command, which delivers queued
// transaction webhooks.
func workerCommands(app *atmInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start atm webhook workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.cnf.Redis.Enabled() {
				return errors.New("workers need a redis server; set redis.dns in the config")
			}

			srv, err := initializeWorkerServer(app.cnf)
			if err != nil {
				return err
			}

			logrus.Infof(" [*] Waiting for %s tasks", atm.WEBHOOK_QUEUE)
			return srv.Run(atm.NewWebhookServeMux())
		},
	}

	return cmd
}
