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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	atm "github.com/blnkfinance/blnk-atm"
	"github.com/blnkfinance/blnk-atm/api/middleware"
	"github.com/blnkfinance/blnk-atm/config"
)

type Api struct {
	atm    *atm.ATM
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/login", a.Login)

	accounts := router.Group("/accounts/:id")
	accounts.GET("", a.GetAccount)
	accounts.POST("/balance", a.CheckBalance)
	accounts.POST("/withdraw", a.Withdraw)
	accounts.POST("/deposit", a.Deposit)
	accounts.POST("/transactions", a.ListTransactions)
	accounts.GET("/receipts/:txn_id", a.GetReceipt)
	return a.router
}

func NewAPI(a *atm.ATM, conf *config.Configuration) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(conf.ProjectName), middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{atm: a, router: r}
}
