package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/export"
	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

var testSecret = []byte("handlers-test-secret")

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	DB      *gorm.DB
	Catalog *CatalogHandler
	Cart    *CartHandler
	Admin   *AdminHandler
	Health  *HealthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := testutil.NewDB(t)
	require.NoError(t, db.Seed(context.Background(), gdb, "admin", "password"))

	r := repo.New(gdb)
	c := cart.New(cart.NewMemoryStore())
	catalog := &service.CatalogService{Repo: r}
	carts := &service.CartService{Cart: c, Catalog: catalog}
	orders := &service.OrderService{Repo: r, Cart: c}
	sessions := &Sessions{}
	notices := &flash.Store{}
	admin := &auth.Admin{Secret: testSecret}

	return &testEnv{
		T:       t,
		E:       echo.New(),
		DB:      gdb,
		Catalog: &CatalogHandler{Catalog: catalog, Carts: carts, Sessions: sessions, Flash: notices},
		Cart:    &CartHandler{Carts: carts, Orders: orders, Sessions: sessions, Flash: notices},
		Admin: &AdminHandler{
			Auth:   &service.AuthService{Repo: r, Secret: testSecret},
			Stats:  &service.StatsService{Repo: r},
			Orders: orders,
			Admin:  admin,
			Flash:  notices,
		},
		Health: &HealthHandler{DB: gdb},
	}
}

func (env *testEnv) doRequest(method, target string, body io.Reader, contentType string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) *flash.Notice {
	t.Helper()
	ck := responseCookie(rec, flash.CookieName)
	if ck == nil || ck.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	require.NoError(t, err)
	var n flash.Notice
	require.NoError(t, json.Unmarshal(raw, &n))
	return &n
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}

type indexResponse struct {
	Products    []models.Product `json:"products"`
	Category    string           `json:"category"`
	SearchQuery string           `json:"search_query"`
	CartCount   int              `json:"cart_count"`
	Notice      *flash.Notice    `json:"notice"`
}

func (env *testEnv) index(category, q string, cookies ...*http.Cookie) indexResponse {
	target := "/" + category
	if q != "" {
		target += "?" + url.Values{"q": {q}}.Encode()
	}
	rec, c := env.doRequest(http.MethodGet, target, nil, "", cookies...)
	if category != "" {
		c.SetParamNames("category")
		c.SetParamValues(category)
	}
	require.NoError(env.T, env.Catalog.Index(c))
	require.Equal(env.T, http.StatusOK, rec.Code)

	var resp indexResponse
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t)

	all := env.index("", "")
	require.Len(t, all.Products, 6)
	assert.Equal(t, 0, all.CartCount)
	assert.Nil(t, all.Notice)

	mens := env.index("mens", "")
	require.Len(t, mens.Products, 3)
	assert.Equal(t, "mens", mens.Category)
	for _, p := range mens.Products {
		assert.Equal(t, "mens", p.Category)
	}

	shirts := env.index("", "シャツ")
	assert.Equal(t, "シャツ", shirts.SearchQuery)
	ids := make([]uint, 0, len(shirts.Products))
	for _, p := range shirts.Products {
		assert.Contains(t, p.Name, "シャツ")
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uint{1, 2, 5}, ids)

	none := env.index("kids", "")
	assert.Empty(t, none.Products)
}

func TestLike(t *testing.T) {
	env := newTestEnv(t)

	for want := int64(1); want <= 2; want++ {
		rec, c := env.doRequest(http.MethodPost, "/like/1", nil, "")
		require.NoError(t, env.Catalog.Like(withID(c, "1")))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Success bool  `json:"success"`
			Likes   int64 `json:"likes"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, want, resp.Likes)
	}

	_, c := env.doRequest(http.MethodPost, "/like/999", nil, "")
	requireHTTPError(t, env.Catalog.Like(withID(c, "999")), http.StatusNotFound)

	for _, id := range []string{"abc", "9223372036854775807", "18446744073709551615"} {
		_, c = env.doRequest(http.MethodPost, "/like/"+id, nil, "")
		requireHTTPError(t, env.Catalog.Like(withID(c, id)), http.StatusNotFound)
	}
}

func (env *testEnv) addToCart(id string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	rec, c := env.doRequest(http.MethodPost, "/add_to_cart/"+id, nil, "", cookies...)
	require.NoError(env.T, env.Cart.AddToCart(withID(c, id)))
	require.Equal(env.T, http.StatusFound, rec.Code)
	return rec
}

func TestAddToCartCreatesSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.addToCart("1")
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	sid := responseCookie(rec, SessionCookie)
	require.NotNil(t, sid)
	assert.NotEmpty(t, sid.Value)
	assert.True(t, sid.HttpOnly)

	n := flashOf(t, rec)
	require.NotNil(t, n)
	assert.Equal(t, flash.Success, n.Category)
	assert.Equal(t, "商品をカートに追加しました！", n.Message)

	rec = env.addToCart("1", sid)
	assert.Nil(t, responseCookie(rec, SessionCookie), "existing session must be reused")

	resp := env.index("", "", sid)
	assert.Equal(t, 2, resp.CartCount)
}

func TestAddToCartRedirectsBack(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doRequest(http.MethodPost, "/add_to_cart/3", nil, "")
	c.Request().Header.Set("Referer", "http://example.com/ladies?q=x")
	require.NoError(t, env.Cart.AddToCart(withID(c, "3")))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/ladies?q=x", rec.Header().Get(echo.HeaderLocation))

	rec, c = env.doRequest(http.MethodPost, "/add_to_cart/3", nil, "")
	c.Request().Header.Set("Referer", "http://evil.test/phish")
	require.NoError(t, env.Cart.AddToCart(withID(c, "3")))
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestAddToCartBadID(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"x", "0", "18446744073709551615"} {
		_, c := env.doRequest(http.MethodPost, "/add_to_cart/"+id, nil, "")
		requireHTTPError(t, env.Cart.AddToCart(withID(c, id)), http.StatusNotFound)
	}
}

func TestViewCart(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doRequest(http.MethodGet, "/cart", nil, "")
	require.NoError(t, env.Cart.ViewCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var empty struct {
		Items      []service.CartItem `json:"cart_items"`
		TotalPrice int64              `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.TotalPrice)

	sid := responseCookie(env.addToCart("1"), SessionCookie)
	env.addToCart("1", sid)
	env.addToCart("6", sid)

	rec, c = env.doRequest(http.MethodGet, "/cart", nil, "", sid)
	require.NoError(t, env.Cart.ViewCart(c))

	var view struct {
		Items      []service.CartItem `json:"cart_items"`
		TotalPrice int64              `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 2)
	assert.Equal(t, int64(3500*2+8800), view.TotalPrice)
}

func TestRemoveFromCart(t *testing.T) {
	env := newTestEnv(t)

	sid := responseCookie(env.addToCart("2"), SessionCookie)

	rec, c := env.doRequest(http.MethodGet, "/remove_from_cart/2", nil, "", sid)
	require.NoError(t, env.Cart.RemoveFromCart(withID(c, "2")))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))
	n := flashOf(t, rec)
	require.NotNil(t, n)
	assert.Equal(t, flash.Info, n.Category)

	rec, c = env.doRequest(http.MethodGet, "/remove_from_cart/2", nil, "", sid)
	require.NoError(t, env.Cart.RemoveFromCart(withID(c, "2")))
	assert.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))
	assert.Nil(t, flashOf(t, rec), "removing an absent entry sets no notice")
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doRequest(http.MethodPost, "/checkout", nil, "")
	require.NoError(t, env.Cart.Checkout(c))
	assert.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))
	n := flashOf(t, rec)
	require.NotNil(t, n)
	assert.Equal(t, flash.Danger, n.Category)
	assert.Equal(t, "カートが空です。", n.Message)

	sid := responseCookie(env.addToCart("1"), SessionCookie)
	env.addToCart("1", sid)
	env.addToCart("4", sid)

	rec, c = env.doRequest(http.MethodPost, "/checkout", nil, "", sid)
	require.NoError(t, env.Cart.Checkout(c))
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	n = flashOf(t, rec)
	require.NotNil(t, n)
	assert.Equal(t, flash.Success, n.Category)

	var details []models.OrderDetail
	require.NoError(t, env.DB.Order("product_id").Find(&details).Error)
	require.Len(t, details, 2)
	assert.Equal(t, uint(1), details[0].ProductID)
	assert.Equal(t, 2, details[0].Quantity)
	assert.Equal(t, uint(4), details[1].ProductID)
	assert.Equal(t, 1, details[1].Quantity)

	assert.Equal(t, 0, env.index("", "", sid).CartCount)
}

func TestCheckoutPersistenceFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)

	sid := responseCookie(env.addToCart("1"), SessionCookie)
	require.NoError(t, env.DB.Callback().Create().Before("gorm:create").Register("test:fail_details", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "order_details" {
			_ = tx.AddError(assert.AnError)
		}
	}))

	rec, c := env.doRequest(http.MethodPost, "/checkout", nil, "", sid)
	require.NoError(t, env.Cart.Checkout(c))
	assert.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))
	n := flashOf(t, rec)
	require.NotNil(t, n)
	assert.Equal(t, flash.Danger, n.Category)

	var orders int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	assert.Equal(t, 1, env.index("", "", sid).CartCount)
}

func (env *testEnv) login(form url.Values) *httptest.ResponseRecorder {
	rec, c := env.doRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()), echo.MIMEApplicationForm)
	require.NoError(env.T, env.Admin.Login(c))
	return rec
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.login(url.Values{"username": {"admin"}, "password": {"password"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get(echo.HeaderLocation))
	tok := responseCookie(rec, auth.CookieName)
	require.NotNil(t, tok)
	assert.NotEmpty(t, tok.Value)

	_, c := env.doRequest(http.MethodGet, "/admin/login", nil, "", tok)
	require.NoError(t, env.Admin.LoginPage(c))
	assert.Equal(t, DashboardPath, c.Response().Header().Get(echo.HeaderLocation))

	cases := []url.Values{
		{"username": {"admin"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"password"}},
		{"username": {""}, "password": {""}},
	}
	for _, form := range cases {
		rec := env.login(form)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, responseCookie(rec, auth.CookieName))
		assert.Contains(t, rec.Body.String(), "danger")
	}
}

func TestAdminLoginPageAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doRequest(http.MethodGet, "/admin/login", nil, "")
	require.NoError(t, env.Admin.LoginPage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLogout(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doRequest(http.MethodGet, "/admin/logout", nil, "")
	require.NoError(t, env.Admin.Logout(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	ck := responseCookie(rec, auth.CookieName)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.Less(t, ck.MaxAge, 0)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	sid := responseCookie(env.addToCart("3"), SessionCookie)
	env.addToCart("3", sid)
	_, c := env.doRequest(http.MethodPost, "/checkout", nil, "", sid)
	require.NoError(t, env.Cart.Checkout(c))

	_, c = env.doRequest(http.MethodPost, "/like/6", nil, "")
	require.NoError(t, env.Catalog.Like(withID(c, "6")))

	rec, c := env.doRequest(http.MethodGet, "/admin/dashboard", nil, "")
	require.NoError(t, env.Admin.Dashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sales  []models.SalesStat `json:"sales_stats"`
		Likes  []models.Product   `json:"likes_stats"`
		Orders []models.Order     `json:"recent_orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sales, 6)
	assert.Equal(t, uint(3), resp.Sales[0].ProductID)
	assert.Equal(t, int64(2), resp.Sales[0].TotalSold)
	require.Len(t, resp.Likes, 6)
	assert.Equal(t, uint(6), resp.Likes[0].ID)
	require.Len(t, resp.Orders, 1)
	require.Len(t, resp.Orders[0].Details, 1)
}

func TestDownloadExcel(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doRequest(http.MethodGet, "/admin/dashboard/download_excel", nil, "")
	require.NoError(t, env.Admin.DownloadExcel(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), export.FileName)

	wb, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	sheet, ok := wb.Sheet[export.SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 7)
	for i, h := range export.Header {
		assert.Equal(t, h, sheet.Rows[0].Cells[i].Value)
	}
	assert.Equal(t, "0", sheet.Rows[1].Cells[2].Value)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doRequest(http.MethodGet, "/health/live", nil, "")
	require.NoError(t, env.Health.Live(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, c = env.doRequest(http.MethodGet, "/health/ready", nil, "")
	require.NoError(t, env.Health.Ready(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	sqlDB, err := env.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec, c = env.doRequest(http.MethodGet, "/health/ready", nil, "")
	require.NoError(t, env.Health.Ready(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseProductID(t *testing.T) {
	tests := []struct {
		in   string
		want uint
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"9223372036854775807", math.MaxInt64, true},
		{"9223372036854775808", 0, false},
		{"18446744073709551615", 0, false},
	}
	e := echo.New()
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		got, ok := parseProductID(withID(c, tt.in))
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
