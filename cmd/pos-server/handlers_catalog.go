package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-restaurante/internal/httpx"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

// listProductsHandler godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category_id  query  string  false  "Category ID"
// @Param        limit        query  int     false  "Page size (default 20, max 100)"
// @Param        offset       query  int     false  "Offset"
// @Success      200  {object}  product.ListResponse
// @Router       /products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := product.Query{CategoryID: c.Query("category_id"), Limit: limit, Offset: offset}.Normalize()

		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{
			CategoryID: q.CategoryID,
			Limit:      q.Limit,
			Offset:     q.Offset,
			Items:      items,
		})
	}
}

// listTablesHandler godoc
// @Summary      List tables
// @Tags         tables
// @Produce      json
// @Param        is_occupied  query  bool  false  "Occupancy filter"
// @Success      200  {array}   table.Table
// @Failure      400  {object}  httpx.HTTPError
// @Router       /tables [get]
func listTablesHandler(repo table.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f table.Filter
		if raw := c.Query("is_occupied"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				httpx.Fail(c, http.StatusBadRequest, "is_occupied must be true or false")
				return
			}
			f.Occupied = &v
		}
		f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
		f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

		out, err := repo.List(c.Request.Context(), f)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// getTableHandler godoc
// @Summary      Get table
// @Tags         tables
// @Produce      json
// @Param        id   path      string  true  "Table ID"
// @Success      200  {object}  table.Table
// @Failure      404  {object}  httpx.HTTPError
// @Router       /tables/{id} [get]
func getTableHandler(repo table.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// occupyTableHandler godoc
// @Summary      Set table occupancy
// @Description  Manual override of the occupancy flag.
// @Tags         tables
// @Produce      json
// @Param        id           path      string  true  "Table ID"
// @Param        is_occupied  query     bool    true  "New value"
// @Success      200          {object}  table.Table
// @Failure      400          {object}  httpx.HTTPError
// @Failure      404          {object}  httpx.HTTPError
// @Router       /tables/{id}/occupy [put]
func occupyTableHandler(repo table.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := strconv.ParseBool(c.Query("is_occupied"))
		if err != nil {
			httpx.Fail(c, http.StatusBadRequest, "is_occupied must be true or false")
			return
		}
		t, err := repo.SetOccupied(c.Request.Context(), c.Param("id"), v)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}
