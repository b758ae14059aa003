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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT          = "5002"
	DEFAULT_DRIVER        = "postgres"
	DEFAULT_QUERY_TIMEOUT = 5
	DEFAULT_LOCK_TTL      = 30
	DEFAULT_LOCK_WAIT     = 5
	DEFAULT_HISTORY_LIMIT = 10
)

var supportedDrivers = map[string]bool{"postgres": true, "mysql": true, "sqlite3": true}

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"ATM_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"ATM_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"ATM_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"ATM_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"ATM_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"ATM_SERVER_PORT"`
}

type DataSourceConfig struct {
	Driver          string `json:"driver" envconfig:"ATM_DATA_SOURCE_DRIVER"`
	Dns             string `json:"dns" envconfig:"ATM_DATA_SOURCE_DNS"`
	QueryTimeoutSec int    `json:"query_timeout_sec" envconfig:"ATM_DATA_SOURCE_QUERY_TIMEOUT_SEC"`
}

// QueryTimeout is the deadline applied to every store call.
func (d DataSourceConfig) QueryTimeout() time.Duration {
	return time.Duration(d.QueryTimeoutSec) * time.Second
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"ATM_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"ATM_REDIS_SKIP_TLS_VERIFY"`
}

// Enabled reports whether a redis server was configured. Without one the
// service keeps locks and receipts in process and sends no webhooks.
func (r RedisConfig) Enabled() bool {
	return r.Dns != ""
}

type LockConfig struct {
	TTLSec         int `json:"ttl_sec" envconfig:"ATM_LOCK_TTL_SEC"`
	WaitTimeoutSec int `json:"wait_timeout_sec" envconfig:"ATM_LOCK_WAIT_TIMEOUT_SEC"`
}

func (l LockConfig) TTL() time.Duration {
	return time.Duration(l.TTLSec) * time.Second
}

func (l LockConfig) WaitTimeout() time.Duration {
	return time.Duration(l.WaitTimeoutSec) * time.Second
}

type HistoryConfig struct {
	DefaultLimit int `json:"default_limit" envconfig:"ATM_HISTORY_DEFAULT_LIMIT"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"ATM_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"ATM_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"ATM_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"ATM_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url" envconfig:"ATM_WEBHOOK_URL"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"ATM_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Lock         LockConfig       `json:"lock"`
	History      HistoryConfig    `json:"history"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("atm", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called atm.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Blnk ATM"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.DataSource.Driver = strings.ToLower(strings.TrimSpace(cnf.DataSource.Driver))
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.DataSource.Driver == "" {
		cnf.DataSource.Driver = DEFAULT_DRIVER
	}
	if !supportedDrivers[cnf.DataSource.Driver] {
		return errors.New("data source driver must be one of postgres, mysql or sqlite3")
	}

	if cnf.DataSource.QueryTimeoutSec <= 0 {
		cnf.DataSource.QueryTimeoutSec = DEFAULT_QUERY_TIMEOUT
	}

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Lock.TTLSec <= 0 {
		cnf.Lock.TTLSec = DEFAULT_LOCK_TTL
	}
	if cnf.Lock.WaitTimeoutSec <= 0 {
		cnf.Lock.WaitTimeoutSec = DEFAULT_LOCK_WAIT
	}

	if cnf.History.DefaultLimit <= 0 {
		cnf.History.DefaultLimit = DEFAULT_HISTORY_LIMIT
	}

	if cnf.Server.Secure && cnf.Server.SecretKey == "" {
		return errors.New("secret key is required when the server is secure")
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
