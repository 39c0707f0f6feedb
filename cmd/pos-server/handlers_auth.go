package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-restaurante/internal/httpx"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
)

// LoginRequest credentials of a staff member.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" example:"mesero"`
	Password string `json:"password" example:"mesero123"`
}

// loginHandler godoc
// @Summary      Log in
// @Description  Starts a cookie session for the staff member.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  staff.Staff
// @Failure      401   {object}  httpx.HTTPError
// @Failure      403   {object}  httpx.HTTPError
// @Router       /auth/login [post]
func loginHandler(svc *staff.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body LoginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		st, err := svc.Authenticate(c.Request.Context(), body.Username, body.Password)
		switch {
		case errors.Is(err, staff.ErrInvalidCredentials):
			httpx.Fail(c, http.StatusUnauthorized, err.Error())
			return
		case errors.Is(err, staff.ErrInactive):
			httpx.Fail(c, http.StatusForbidden, err.Error())
			return
		case err != nil:
			httpx.Abort(c, err)
			return
		}
		if err := httpx.Login(c, st); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// logoutHandler godoc
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := httpx.Logout(c); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// meHandler godoc
// @Summary      Current staff member
// @Tags         auth
// @Produce      json
// @Success      200  {object}  staff.Staff
// @Failure      401  {object}  httpx.HTTPError
// @Router       /auth/me [get]
func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, httpx.CurrentStaff(c))
	}
}
