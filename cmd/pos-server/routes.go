package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/pos-restaurante/internal/authz"
	"github.com/MikeMC777/pos-restaurante/internal/httpx"
	"github.com/MikeMC777/pos-restaurante/internal/order"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

// app holds what the HTTP handlers need.
type app struct {
	orders        *order.Service
	staff         *staff.Service
	tables        table.Repository
	products      product.Repository
	policy        authz.Policy
	idem          httpx.IdempotencyStore
	sessionSecret string
	log           *slog.Logger
}

func newRouter(a app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Trace("pos-server"), httpx.Logger(a.log))

	store := cookie.NewStore([]byte(a.sessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 12 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(httpx.SessionName, store))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/auth/login", loginHandler(a.staff))
	api.POST("/auth/logout", logoutHandler())

	authed := api.Group("", httpx.RequireStaff(a.staff))
	authed.GET("/auth/me", meHandler())

	p := a.policy
	idem := httpx.Idempotency(a.idem, a.log)

	orders := authed.Group("/orders")
	orders.POST("", httpx.Require(p, authz.OrderCreate), idem, createOrderHandler(a.orders))
	orders.GET("", httpx.Require(p, authz.OrderRead), listOrdersHandler(a.orders))
	orders.GET("/kitchen", httpx.Require(p, authz.OrderKitchen), kitchenQueueHandler(a.orders))
	orders.GET("/cashier/pending", httpx.Require(p, authz.OrderCashier), cashierQueueHandler(a.orders))
	orders.GET("/number/:number", httpx.Require(p, authz.OrderRead), getOrderByNumberHandler(a.orders))
	orders.GET("/:id", httpx.Require(p, authz.OrderRead), getOrderHandler(a.orders))
	orders.PUT("/:id", httpx.Require(p, authz.OrderUpdate), updateOrderHandler(a.orders, p))
	orders.PUT("/:id/status", updateStatusHandler(a.orders, p))
	orders.POST("/:id/items", httpx.Require(p, authz.OrderItems), idem, addItemsHandler(a.orders))
	orders.PUT("/:id/items/:item_id", httpx.Require(p, authz.OrderItems), updateItemHandler(a.orders))
	orders.DELETE("/:id/items/:item_id", httpx.Require(p, authz.OrderItems), removeItemHandler(a.orders))

	tables := authed.Group("/tables")
	tables.GET("", httpx.Require(p, authz.TableRead), listTablesHandler(a.tables))
	tables.GET("/:id", httpx.Require(p, authz.TableRead), getTableHandler(a.tables))
	tables.PUT("/:id/occupy", httpx.Require(p, authz.TableOccupy), occupyTableHandler(a.tables))

	authed.GET("/products", httpx.Require(p, authz.ProductRead), listProductsHandler(a.products))

	return r
}
