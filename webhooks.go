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

package atm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/blnk-atm/config"
	redis_db "github.com/blnkfinance/blnk-atm/internal/redis-db"
	"github.com/blnkfinance/blnk-atm/internal/request"
	"github.com/blnkfinance/blnk-atm/model"
)

const (
	WEBHOOK_QUEUE = "atm-webhooks"

	EventTransactionApplied = "transaction.applied"

	webhookMaxRetry = 5
	webhookTimeout  = 10 * time.Second
)

// NewWebhook represents the structure of a webhook notification. ID lets
// receivers drop duplicate deliveries.
type NewWebhook struct {
	ID      string      `json:"id"`
	Event   string      `json:"event"`
	Payload interface{} `json:"data"`
}

// TransactionWebhookData is the payload of transaction.applied. Amounts are
// rendered as decimal strings.
type TransactionWebhookData struct {
	TransactionID int64         `json:"transaction_id"`
	AccountID     int64         `json:"account_id"`
	CardLast4     string        `json:"card_last_4"`
	TxnType       model.TxnType `json:"txn_type"`
	Amount        string        `json:"amount"`
	BalanceAfter  string        `json:"balance_after"`
	Timestamp     time.Time     `json:"timestamp"`
}

func NewTransactionWebhook(account *model.Account, txn *model.Transaction) NewWebhook {
	return NewWebhook{
		ID:    uuid.NewString(),
		Event: EventTransactionApplied,
		Payload: TransactionWebhookData{
			TransactionID: txn.ID,
			AccountID:     txn.AccountID,
			CardLast4:     account.CardLast4(),
			TxnType:       txn.Type,
			Amount:        model.FormatAmount(txn.Amount),
			BalanceAfter:  model.FormatAmount(txn.BalanceAfter),
			Timestamp:     txn.CreatedAt,
		},
	}
}

// WebhookSender publishes engine events.
type WebhookSender interface {
	SendWebhook(ctx context.Context, webhook NewWebhook) error
}

// Queue hands webhooks to asynq so delivery happens in the workers process.
type Queue struct {
	Client *asynq.Client
}

// QueueRedisOpt converts the configured Redis DSN into asynq connection options.
func QueueRedisOpt(conf *config.Configuration) (asynq.RedisClientOpt, error) {
	addresses := redis_db.SplitAddresses(conf.Redis.Dns)
	if len(addresses) == 0 {
		return asynq.RedisClientOpt{}, errors.New("webhook queue requires a redis dns")
	}
	redisOption, err := redis_db.ParseRedisURL(addresses[0], conf.Redis.SkipTLSVerify)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      redisOption.Addr,
		Username:  redisOption.Username,
		Password:  redisOption.Password,
		DB:        redisOption.DB,
		TLSConfig: redisOption.TLSConfig,
	}, nil
}

func NewQueue(conf *config.Configuration) (*Queue, error) {
	opt, err := QueueRedisOpt(conf)
	if err != nil {
		return nil, err
	}
	return &Queue{Client: asynq.NewClient(opt)}, nil
}

func (q *Queue) SendWebhook(ctx context.Context, webhook NewWebhook) error {
	payload, err := json.Marshal(webhook)
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.Queue(WEBHOOK_QUEUE), asynq.MaxRetry(webhookMaxRetry)}
	if webhook.ID != "" {
		opts = append(opts, asynq.TaskID(webhook.ID))
	}
	task := asynq.NewTask(WEBHOOK_QUEUE, payload, opts...)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	logrus.Debugf("webhook %s enqueued as task %s", webhook.Event, info.ID)
	return nil
}

func (q *Queue) Close() error {
	return q.Client.Close()
}

// processHTTP posts the webhook to the configured URL with the configured headers.
func processHTTP(ctx context.Context, conf *config.Configuration, data NewWebhook) error {
	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	_, err := request.PostJSON(ctx, conf.Notification.Webhook.Url, data, conf.Notification.Webhook.Headers)
	return err
}

// ProcessWebhook delivers a queued webhook. A returned error makes asynq
// retry the task.
func ProcessWebhook(ctx context.Context, task *asynq.Task) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	var payload NewWebhook
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logrus.Errorf("Error unmarshaling task payload: %v", err)
		return errors.Wrap(asynq.SkipRetry, err.Error())
	}

	logrus.Infof("Processing webhook: %s", payload.Event)
	return processHTTP(ctx, conf, payload)
}

// NewWebhookServeMux routes queued tasks to their handlers.
func NewWebhookServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(WEBHOOK_QUEUE, ProcessWebhook)
	return mux
}
