package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/export"
	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

const DashboardPath = "/admin/dashboard"

type AdminHandler struct {
	Auth   *service.AuthService
	Stats  *service.StatsService
	Orders *service.OrderService
	Admin  *auth.Admin
	Flash  *flash.Store
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (h *AdminHandler) LoginPage(c echo.Context) error {
	if h.Admin.Claims(c) != nil {
		return c.Redirect(http.StatusFound, DashboardPath)
	}
	return c.JSON(http.StatusOK, echo.Map{"notice": h.Flash.Pop(c)})
}

func (h *AdminHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "bad request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	}

	res, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthentication) {
			l.Warn("login_failed", "status", 401, "username", req.Username)
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"notice": flash.Notice{Category: flash.Danger, Message: "ユーザー名またはパスワードが正しくありません。"},
			})
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}

	h.Admin.SetCookie(c, res.Token, res.ExpiresAt)
	l.Info("login_success", "username", req.Username)
	return c.Redirect(http.StatusFound, DashboardPath)
}

func (h *AdminHandler) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context())
	h.Admin.ClearCookie(c)
	h.Flash.Set(c, flash.Info, "ログアウトしました。")
	l.Info("logout_success", "username", c.Get(auth.ContextAdminName))
	return c.Redirect(http.StatusFound, "/")
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	sales, err := h.Stats.SalesStats(ctx)
	if err != nil {
		l.Error("dashboard_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load stats")
	}
	likes, err := h.Stats.LikesRanking(ctx)
	if err != nil {
		l.Error("dashboard_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load stats")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	orders, err := h.Orders.RecentOrders(ctx, page, size)
	if err != nil {
		l.Error("dashboard_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sales_stats":   sales,
		"likes_stats":   likes,
		"recent_orders": orders,
		"notice":        h.Flash.Pop(c),
	})
}

func (h *AdminHandler) DownloadExcel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.export")

	stats, err := h.Stats.ExportStats(ctx)
	if err != nil {
		l.Error("export_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load stats")
	}

	var buf bytes.Buffer
	if err := export.WriteProductStats(&buf, stats); err != nil {
		l.Error("export_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build workbook")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.FileName+`"`)
	res.Header().Set(echo.HeaderContentLength, strconv.Itoa(buf.Len()))
	l.Info("export_success", "rows", len(stats))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}
