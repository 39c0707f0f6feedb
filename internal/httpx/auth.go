package httpx

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-restaurante/internal/authz"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
)

const (
	SessionName = "posess"
	sessionKey  = "staff_id"
	staffKey    = "staff"
)

// StaffLoader resolves the staff member behind a session.
type StaffLoader interface {
	Active(ctx context.Context, id string) (*staff.Staff, error)
}

// Login stores the staff id in the session cookie.
func Login(c *gin.Context, st *staff.Staff) error {
	sess := sessions.Default(c)
	sess.Set(sessionKey, st.ID)
	return sess.Save()
}

func Logout(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

// RequireStaff rejects requests without a session of an active staff member
// and puts the member on the context.
func RequireStaff(loader StaffLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessions.Default(c).Get(sessionKey).(string)
		if !ok || id == "" {
			Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		st, err := loader.Active(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(staffKey, st)
		c.Next()
	}
}

// Require lets the request through only when the current role may perform action.
func Require(p authz.Policy, action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Allowed(c, p, action) {
			return
		}
		c.Next()
	}
}

// Allowed checks action for the current staff member and aborts with 403
// when it is denied.
func Allowed(c *gin.Context, p authz.Policy, action authz.Action) bool {
	st := CurrentStaff(c)
	if st == nil {
		Fail(c, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if !p.Allows(st.Role, action) {
		Fail(c, http.StatusForbidden, "role "+string(st.Role)+" may not "+string(action))
		return false
	}
	return true
}

func CurrentStaff(c *gin.Context) *staff.Staff {
	v, ok := c.Get(staffKey)
	if !ok {
		return nil
	}
	st, _ := v.(*staff.Staff)
	return st
}
