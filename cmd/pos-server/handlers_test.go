package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-restaurante/internal/authz"
	"github.com/MikeMC777/pos-restaurante/internal/httpx"
	"github.com/MikeMC777/pos-restaurante/internal/logging"
	"github.com/MikeMC777/pos-restaurante/internal/memstore"
	"github.com/MikeMC777/pos-restaurante/internal/order"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

//
// ---------- FIXTURE ----------
//

const (
	nachosID = "a1000000-0000-4000-8000-000000000001" // 8.99
	aguaID   = "a1000000-0000-4000-8000-000000000009" // 1.99
	mesa1ID  = "b1000000-0000-4000-8000-000000000001"
	password = "secreto123"
)

// testEnv is the full router over a seeded in-memory store, with one staff
// member per role.
type testEnv struct {
	t      *testing.T
	r      *gin.Engine
	store  *memstore.Store
	cookie map[staff.Role]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.Discard()
	s := memstore.New()
	memstore.Seed(s)

	staffSvc := staff.NewService(s.Staff(), log)
	orders := order.NewService(order.Deps{
		Repo:    s.Orders(),
		Catalog: s.Products(),
		Tables:  s.Tables(),
		Tx:      s,
		Events:  s.Outbox(),
		Calc:    order.NewCalculator(decimal.RequireFromString("0.10")),
		Log:     log,
	})

	env := &testEnv{
		t:     t,
		store: s,
		r: newRouter(app{
			orders:        orders,
			staff:         staffSvc,
			tables:        s.Tables(),
			products:      s.Products(),
			policy:        authz.Default(),
			idem:          httpx.NewMemoryIdempotency(time.Hour),
			sessionSecret: "test-secret",
			log:           log,
		}),
		cookie: map[staff.Role]string{},
	}

	for _, role := range []staff.Role{staff.RoleAdmin, staff.RoleWaiter, staff.RoleKitchen, staff.RoleCashier} {
		_, err := staffSvc.Create(context.Background(), staff.CreateInput{
			Username: string(role),
			Email:    string(role) + "@pos.local",
			Password: password,
			Role:     role,
		})
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		env.cookie[role] = env.login(string(role), password)
	}
	return env
}

// login returns the session cookie header for username.
func (e *testEnv) login(username, pw string) string {
	e.t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, pw)
	w := e.do("", http.MethodPost, "/api/auth/login", body, nil)
	if w.Code != http.StatusOK {
		e.t.Fatalf("login %s: status=%d body=%s", username, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == httpx.SessionName {
			return c.Name + "=" + c.Value
		}
	}
	e.t.Fatalf("login %s: no session cookie", username)
	return ""
}

func (e *testEnv) do(cookie, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) as(role staff.Role, method, path, body string) *httptest.ResponseRecorder {
	return e.do(e.cookie[role], method, path, body, nil)
}

// createTableOrder creates 2x Nachos on Mesa 1 as the waiter.
func (e *testEnv) createTableOrder() order.Order {
	e.t.Helper()
	body := fmt.Sprintf(`{"order_type":"table","table_id":%q,"items":[{"product_id":%q,"quantity":2}]}`, mesa1ID, nachosID)
	w := e.as(staff.RoleWaiter, http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create: status=%d body=%s", w.Code, w.Body.String())
	}
	return decodeOrder(e.t, w)
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) order.Order {
	t.Helper()
	var o order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatalf("json inválido: %v body=%s", err, w.Body.String())
	}
	return o
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

//
// ---------- TESTS ----------
//

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	w := e.do("", http.MethodPost, "/api/auth/login", `{"username":"waiter","password":"nope"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s (esperaba 401)", w.Code, w.Body.String())
	}
}

func TestMe_ReturnsSessionStaff(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	w := e.as(staff.RoleKitchen, http.MethodGet, "/api/auth/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var st staff.Staff
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if st.Role != staff.RoleKitchen || st.PasswordHash != "" {
		t.Fatalf("unexpected staff %+v", st)
	}
}

func TestOrders_RequireSession(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	w := e.do("", http.MethodGet, "/api/orders", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s (esperaba 401)", w.Code, w.Body.String())
	}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	o := e.createTableOrder()
	if o.Status != order.StatusPending || len(o.Items) != 1 {
		t.Fatalf("unexpected order %+v", o)
	}
	// 2 x 8.99 = 17.98, IVA 10% = 1.80
	if !o.Subtotal.Equal(dec("17.98")) || !o.Tax.Equal(dec("1.80")) || !o.Total.Equal(dec("19.78")) {
		t.Fatalf("totals=%s/%s/%s", o.Subtotal, o.Tax, o.Total)
	}
	if o.CreatedBy == "" {
		t.Fatalf("created_by vacío")
	}

	// la mesa queda ocupada
	w := e.as(staff.RoleWaiter, http.MethodGet, "/api/tables/"+mesa1ID, "")
	var tb table.Table
	_ = json.Unmarshal(w.Body.Bytes(), &tb)
	if !tb.IsOccupied {
		t.Fatalf("mesa no ocupada: %s", w.Body.String())
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	cases := map[string]string{
		"table without table_id": `{"order_type":"table","items":[]}`,
		"delivery without phone": `{"order_type":"delivery","customer_name":"Ana","customer_address":"Calle 1","items":[]}`,
		"bad type":               `{"order_type":"takeaway","items":[]}`,
		"zero quantity":          fmt.Sprintf(`{"order_type":"table","table_id":%q,"items":[{"product_id":%q,"quantity":0}]}`, mesa1ID, nachosID),
	}
	for name, body := range cases {
		w := e.as(staff.RoleWaiter, http.MethodPost, "/api/orders", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d body=%s (esperaba 400)", name, w.Code, w.Body.String())
		}
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	body := fmt.Sprintf(`{"order_type":"table","table_id":%q,"items":[{"product_id":%q,"quantity":1}]}`, mesa1ID, uuid.NewString())
	w := e.as(staff.RoleWaiter, http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (esperaba 404)", w.Code, w.Body.String())
	}
}

func TestCreateOrder_KitchenForbidden(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	body := `{"order_type":"delivery","customer_name":"Ana","customer_phone":"555","customer_address":"Calle 1","items":[]}`
	w := e.as(staff.RoleKitchen, http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status=%d body=%s (esperaba 403)", w.Code, w.Body.String())
	}
}

func TestCreateOrder_DuplicateIdempotencyKey(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	body := `{"order_type":"delivery","customer_name":"Ana","customer_phone":"555","customer_address":"Calle 1","items":[]}`
	hdr := map[string]string{httpx.IdempotencyHeader: "k-1"}

	w := e.do(e.cookie[staff.RoleWaiter], http.MethodPost, "/api/orders", body, hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("first: status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(e.cookie[staff.RoleWaiter], http.MethodPost, "/api/orders", body, hdr)
	if w.Code != http.StatusConflict {
		t.Fatalf("second: status=%d body=%s (esperaba 409)", w.Code, w.Body.String())
	}

	// otra persona puede usar la misma clave
	w = e.do(e.cookie[staff.RoleAdmin], http.MethodPost, "/api/orders", body, hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	for _, id := range []string{uuid.NewString(), "no-es-uuid"} {
		w := e.as(staff.RoleWaiter, http.MethodGet, "/api/orders/"+id, "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("id=%s status=%d body=%s (esperaba 404)", id, w.Code, w.Body.String())
		}
	}
}

func TestGetOrder_ByIDAndNumber(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()

	w := e.as(staff.RoleCashier, http.MethodGet, "/api/orders/"+o.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.as(staff.RoleCashier, http.MethodGet, "/api/orders/number/"+o.Number, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decodeOrder(t, w); got.ID != o.ID {
		t.Fatalf("id=%s, esperaba %s", got.ID, o.ID)
	}
}

func TestUpdateStatus_RolePolicy(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()
	path := "/api/orders/" + o.ID + "/status"

	w := e.as(staff.RoleWaiter, http.MethodPut, path, `{"status":"paid"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("waiter: status=%d body=%s (esperaba 403)", w.Code, w.Body.String())
	}
	w = e.as(staff.RoleKitchen, http.MethodPut, path, `{"status":"preparing"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("kitchen: status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.as(staff.RoleCashier, http.MethodPut, path, `{"status":"paid"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("cashier: status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decodeOrder(t, w); got.Status != order.StatusPaid {
		t.Fatalf("status=%s", got.Status)
	}

	// pagar libera la mesa
	w = e.as(staff.RoleWaiter, http.MethodGet, "/api/tables?is_occupied=true", "")
	var tables []table.Table
	_ = json.Unmarshal(w.Body.Bytes(), &tables)
	if len(tables) != 0 {
		t.Fatalf("mesas ocupadas=%d, esperaba 0", len(tables))
	}
}

func TestUpdateStatus_Unknown(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()

	w := e.as(staff.RoleAdmin, http.MethodPut, "/api/orders/"+o.ID+"/status", `{"status":"lost"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (esperaba 400)", w.Code, w.Body.String())
	}
}

func TestUpdateOrder_StatusInPatchChecksRole(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()

	w := e.as(staff.RoleWaiter, http.MethodPut, "/api/orders/"+o.ID, `{"status":"paid"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status=%d body=%s (esperaba 403)", w.Code, w.Body.String())
	}

	w = e.as(staff.RoleWaiter, http.MethodPut, "/api/orders/"+o.ID, `{"customer_name":"  Luis  "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAddItems_ClosedOrder(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()

	w := e.as(staff.RoleCashier, http.MethodPut, "/api/orders/"+o.ID+"/status", `{"status":"paid"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("paid: status=%d body=%s", w.Code, w.Body.String())
	}

	body := fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":1}]}`, aguaID)
	w = e.as(staff.RoleWaiter, http.MethodPost, "/api/orders/"+o.ID+"/items", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s (esperaba 409)", w.Code, w.Body.String())
	}
}

func TestItems_AddUpdateRemove(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()
	base := "/api/orders/" + o.ID + "/items"

	w := e.as(staff.RoleWaiter, http.MethodPost, base, `{"items":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty: status=%d body=%s (esperaba 400)", w.Code, w.Body.String())
	}

	w = e.as(staff.RoleWaiter, http.MethodPost, base, fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":3}]}`, aguaID))
	if w.Code != http.StatusOK {
		t.Fatalf("add: status=%d body=%s", w.Code, w.Body.String())
	}
	got := decodeOrder(t, w)
	// 17.98 + 3 x 1.99 = 23.95
	if len(got.Items) != 2 || !got.Subtotal.Equal(dec("23.95")) {
		t.Fatalf("items=%d subtotal=%s", len(got.Items), got.Subtotal)
	}

	var aguaItem string
	for _, it := range got.Items {
		if it.ProductID == aguaID {
			aguaItem = it.ID
		}
	}
	w = e.as(staff.RoleWaiter, http.MethodPut, base+"/"+aguaItem, `{"quantity":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decodeOrder(t, w); !got.Subtotal.Equal(dec("19.97")) {
		t.Fatalf("subtotal=%s, esperaba 19.97", got.Subtotal)
	}

	w = e.as(staff.RoleWaiter, http.MethodPut, base+"/"+aguaItem, `{"quantity":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("qty 0: status=%d body=%s (esperaba 400)", w.Code, w.Body.String())
	}

	w = e.as(staff.RoleWaiter, http.MethodDelete, base+"/"+aguaItem, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status=%d body=%s", w.Code, w.Body.String())
	}
	got = decodeOrder(t, w)
	if len(got.Items) != 1 || !got.Total.Equal(dec("19.78")) {
		t.Fatalf("items=%d total=%s", len(got.Items), got.Total)
	}

	w = e.as(staff.RoleWaiter, http.MethodDelete, base+"/"+aguaItem, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete again: status=%d body=%s (esperaba 404)", w.Code, w.Body.String())
	}
}

func TestQueues(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()

	w := e.as(staff.RoleWaiter, http.MethodGet, "/api/orders/kitchen", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("waiter: status=%d body=%s (esperaba 403)", w.Code, w.Body.String())
	}

	w = e.as(staff.RoleKitchen, http.MethodGet, "/api/orders/kitchen", "")
	if w.Code != http.StatusOK {
		t.Fatalf("kitchen: status=%d body=%s", w.Code, w.Body.String())
	}
	var arr []order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &arr); err != nil || len(arr) != 1 || arr[0].ID != o.ID {
		t.Fatalf("kitchen queue: err=%v body=%s", err, w.Body.String())
	}

	w = e.as(staff.RoleCashier, http.MethodGet, "/api/orders/cashier/pending", "")
	if w.Code != http.StatusOK {
		t.Fatalf("cashier: status=%d body=%s", w.Code, w.Body.String())
	}
	arr = nil
	_ = json.Unmarshal(w.Body.Bytes(), &arr)
	if len(arr) != 0 {
		t.Fatalf("cashier queue len=%d, esperaba 0", len(arr))
	}
}

func TestListOrders_Filters(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.createTableOrder()

	w := e.as(staff.RoleAdmin, http.MethodGet, "/api/orders?status=pending,preparing&order_type=table", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var arr []order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &arr)
	if len(arr) != 1 {
		t.Fatalf("len=%d, esperaba 1. body=%s", len(arr), w.Body.String())
	}

	w = e.as(staff.RoleAdmin, http.MethodGet, "/api/orders?order_type=delivery", "")
	arr = nil
	_ = json.Unmarshal(w.Body.Bytes(), &arr)
	if w.Code != http.StatusOK || len(arr) != 0 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = e.as(staff.RoleAdmin, http.MethodGet, "/api/orders?status=lost", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (esperaba 400)", w.Code, w.Body.String())
	}
}

func TestTables_OccupyAndFilter(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	w := e.as(staff.RoleWaiter, http.MethodPut, "/api/tables/"+mesa1ID+"/occupy?is_occupied=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("occupy: status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.as(staff.RoleWaiter, http.MethodPut, "/api/tables/"+mesa1ID+"/occupy?is_occupied=quizas", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad flag: status=%d body=%s (esperaba 400)", w.Code, w.Body.String())
	}

	w = e.as(staff.RoleKitchen, http.MethodGet, "/api/tables?is_occupied=false", "")
	var tables []table.Table
	_ = json.Unmarshal(w.Body.Bytes(), &tables)
	if w.Code != http.StatusOK || len(tables) != 4 {
		t.Fatalf("free tables=%d body=%s (esperaba 4)", len(tables), w.Body.String())
	}
}

func TestListProducts(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	w := e.as(staff.RoleCashier, http.MethodGet, "/api/products?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp product.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if resp.Limit != 5 || len(resp.Items) != 5 {
		t.Fatalf("limit=%d items=%d", resp.Limit, len(resp.Items))
	}
}

func TestLogout_EndsSession(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	w := e.as(staff.RoleWaiter, http.MethodPost, "/api/auth/logout", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var cleared string
	for _, c := range w.Result().Cookies() {
		if c.Name == httpx.SessionName {
			cleared = c.Name + "=" + c.Value
		}
	}
	w = e.do(cleared, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s (esperaba 401)", w.Code, w.Body.String())
	}
}

func TestKitchenQueue_ShowsDishesAndTable(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	o := e.createTableOrder()

	w := e.as(staff.RoleKitchen, http.MethodGet, "/api/orders/kitchen", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var arr []struct {
		ID    string `json:"id"`
		Tax   string `json:"tax"`
		Total string `json:"total"`
		Table *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"table"`
		Items []struct {
			Price   string `json:"price"`
			Product *struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"product"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &arr); err != nil || len(arr) != 1 || arr[0].ID != o.ID {
		t.Fatalf("kitchen queue: err=%v body=%s", err, w.Body.String())
	}
	got := arr[0]
	if got.Table == nil || got.Table.ID != mesa1ID || got.Table.Name != "Mesa 1" {
		t.Fatalf("mesa esperada Mesa 1, body=%s", w.Body.String())
	}
	if len(got.Items) != 1 || got.Items[0].Product == nil || got.Items[0].Product.Name != "Nachos" {
		t.Fatalf("plato esperado Nachos, body=%s", w.Body.String())
	}
	// montos con dos decimales, como NUMERIC(12,2)
	if got.Tax != "1.80" || got.Total != "19.78" || got.Items[0].Price != "8.99" {
		t.Fatalf("tax=%s total=%s price=%s", got.Tax, got.Total, got.Items[0].Price)
	}
}

func TestCreateOrder_PaddedTableID(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	body := fmt.Sprintf(`{"order_type":"table","table_id":%q,"items":[]}`, "  "+mesa1ID+" ")
	w := e.as(staff.RoleWaiter, http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if o := decodeOrder(t, w); o.TableID == nil || *o.TableID != mesa1ID || o.Table == nil {
		t.Fatalf("table_id no normalizado: %s", w.Body.String())
	}
}
