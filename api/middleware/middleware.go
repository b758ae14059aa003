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

package middleware

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/blnk-atm/config"
	"github.com/blnkfinance/blnk-atm/model"
)

const KeyHeader = "X-Atm-Key"

// newLimiter returns nil when rate limiting is not configured.
func newLimiter(conf config.RateLimitConfig) *limiter.Limiter {
	if conf.RequestsPerSecond == nil || conf.Burst == nil {
		return nil
	}

	ttl := time.Hour
	if conf.CleanupIntervalSec != nil {
		ttl = time.Duration(*conf.CleanupIntervalSec) * time.Second
	}

	lmt := tollbooth.NewLimiter(*conf.RequestsPerSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: ttl})
	lmt.SetBurst(*conf.Burst)
	lmt.SetMessage("too many requests, slow down")
	return lmt
}

// RateLimitMiddleware throttles each client per account, so repeated PIN
// guesses against one card are slowed without starving other accounts.
func RateLimitMiddleware(conf *config.Configuration) gin.HandlerFunc {
	lmt := newLimiter(conf.RateLimit)
	if lmt == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if httpError := tollbooth.LimitByKeys(lmt, []string{c.ClientIP(), c.Param("id")}); httpError != nil {
			c.AbortWithStatusJSON(httpError.StatusCode, gin.H{"error": httpError.Message, "code": "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}

// SecretKeyAuthMiddleware guards every route with the configured server secret.
func SecretKeyAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		conf, err := config.Fetch()
		if err != nil || conf.Server.SecretKey == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server secret key is not configured"})
			return
		}

		switch key := c.GetHeader(KeyHeader); {
		case key == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + KeyHeader + " header", "code": "UNAUTHORIZED"})
		case !model.SecureCompare(conf.Server.SecretKey, key):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + KeyHeader + " header", "code": "UNAUTHORIZED"})
		default:
			c.Next()
		}
	}
}
