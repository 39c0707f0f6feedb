package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-restaurante/internal/authz"
	"github.com/MikeMC777/pos-restaurante/internal/httpx"
	"github.com/MikeMC777/pos-restaurante/internal/order"
)

// createOrderHandler godoc
// @Summary      Create order
// @Description  Creates a table or delivery order. Prices are taken from the catalog at this moment.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string             false  "Idempotency key"
// @Param        body             body    order.CreateInput  true   "Order"
// @Success      201  {object}  order.Order
// @Failure      400  {object}  httpx.HTTPError
// @Failure      404  {object}  httpx.HTTPError
// @Failure      409  {object}  httpx.HTTPError
// @Router       /orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		in.CreatedBy = httpx.CurrentStaff(c).ID

		o, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// listOrdersHandler godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        status      query  string  false  "Status filter, comma separated"
// @Param        order_type  query  string  false  "table or delivery"
// @Param        limit       query  int     false  "Page size (default 100)"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {array}   order.Order
// @Failure      400  {object}  httpx.HTTPError
// @Router       /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f order.Filter
		if raw := c.Query("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				st, err := order.ParseStatus(strings.TrimSpace(s))
				if err != nil {
					httpx.Abort(c, err)
					return
				}
				f.Statuses = append(f.Statuses, st)
			}
		}
		if raw := c.Query("order_type"); raw != "" {
			typ, err := order.ParseType(raw)
			if err != nil {
				httpx.Abort(c, err)
				return
			}
			f.Type = &typ
		}
		f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
		f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

		out, err := svc.List(c.Request.Context(), f)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// kitchenQueueHandler godoc
// @Summary      Kitchen queue
// @Description  Pending and preparing orders, oldest first.
// @Tags         orders
// @Produce      json
// @Success      200  {array}  order.Order
// @Router       /orders/kitchen [get]
func kitchenQueueHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.KitchenQueue(c.Request.Context())
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// cashierQueueHandler godoc
// @Summary      Cashier queue
// @Description  Ready and delivered orders awaiting payment, oldest first.
// @Tags         orders
// @Produce      json
// @Success      200  {array}  order.Order
// @Router       /orders/cashier/pending [get]
func cashierQueueHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.CashierQueue(c.Request.Context())
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// getOrderHandler godoc
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  order.Order
// @Failure      404  {object}  httpx.HTTPError
// @Router       /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// getOrderByNumberHandler godoc
// @Summary      Get order by number
// @Tags         orders
// @Produce      json
// @Param        number  path      string  true  "Order number, e.g. ORD-20240309-7QZ2"
// @Success      200     {object}  order.Order
// @Failure      404     {object}  httpx.HTTPError
// @Router       /orders/number/{number} [get]
func getOrderByNumberHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetByNumber(c.Request.Context(), c.Param("number"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateOrderHandler godoc
// @Summary      Update order header
// @Description  Only the supplied fields change. A status in the body is checked against the role like PUT /orders/{id}/status.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Order ID"
// @Param        body  body      order.HeaderPatch  true  "Fields to change"
// @Success      200   {object}  order.Order
// @Failure      400   {object}  httpx.HTTPError
// @Failure      403   {object}  httpx.HTTPError
// @Failure      404   {object}  httpx.HTTPError
// @Router       /orders/{id} [put]
func updateOrderHandler(svc *order.Service, p authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch order.HeaderPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if patch.Status != nil {
			if _, err := order.ParseStatus(string(*patch.Status)); err != nil {
				httpx.Abort(c, err)
				return
			}
			if !httpx.Allowed(c, p, authz.StatusAction(*patch.Status)) {
				return
			}
		}

		o, err := svc.UpdateHeader(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateStatusHandler godoc
// @Summary      Change order status
// @Description  preparing/ready: kitchen; paid: cashier; delivered: waiter; admin may set any. Paid and delivered free the table.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Order ID"
// @Param        body  body      order.StatusRequest  true  "New status"
// @Success      200   {object}  order.Order
// @Failure      400   {object}  httpx.HTTPError
// @Failure      403   {object}  httpx.HTTPError
// @Failure      404   {object}  httpx.HTTPError
// @Router       /orders/{id}/status [put]
func updateStatusHandler(svc *order.Service, p authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body order.StatusRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		st, err := order.ParseStatus(string(body.Status))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		if !httpx.Allowed(c, p, authz.StatusAction(st)) {
			return
		}

		o, err := svc.SetStatus(c.Request.Context(), c.Param("id"), st)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// addItemsHandler godoc
// @Summary      Add items
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                 false  "Idempotency key"
// @Param        id               path      string                 true   "Order ID"
// @Param        body             body      order.AddItemsRequest  true   "Items"
// @Success      200              {object}  order.Order
// @Failure      400              {object}  httpx.HTTPError
// @Failure      404              {object}  httpx.HTTPError
// @Failure      409              {object}  httpx.HTTPError
// @Router       /orders/{id}/items [post]
func addItemsHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body order.AddItemsRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		o, err := svc.AddItems(c.Request.Context(), c.Param("id"), body.Items)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateItemHandler godoc
// @Summary      Update item
// @Description  Changes quantity and/or notes. The snapshot price is kept.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "Order ID"
// @Param        item_id  path      string           true  "Item ID"
// @Param        body     body      order.ItemPatch  true  "Fields to change"
// @Success      200      {object}  order.Order
// @Failure      400      {object}  httpx.HTTPError
// @Failure      404      {object}  httpx.HTTPError
// @Failure      409      {object}  httpx.HTTPError
// @Router       /orders/{id}/items/{item_id} [put]
func updateItemHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch order.ItemPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		o, err := svc.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("item_id"), patch)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// removeItemHandler godoc
// @Summary      Remove item
// @Tags         orders
// @Produce      json
// @Param        id       path      string  true  "Order ID"
// @Param        item_id  path      string  true  "Item ID"
// @Success      200      {object}  order.Order
// @Failure      404      {object}  httpx.HTTPError
// @Failure      409      {object}  httpx.HTTPError
// @Router       /orders/{id}/items/{item_id} [delete]
func removeItemHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("item_id"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
