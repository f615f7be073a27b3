package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/internal/handler/ws"
	"YiJinJing/internal/service/ratelimit"
	"YiJinJing/internal/services/auth"
	"YiJinJing/internal/services/chat"
	"YiJinJing/internal/services/feeds"
	"YiJinJing/internal/usecase"
	"YiJinJing/pkg/i18n"
	xhttp "YiJinJing/pkg/http"
	xlogger "YiJinJing/pkg/logger"

	"github.com/labstack/echo/v4"
)

const streamBuffer = 64

// DashboardEchoHandler exposes the dashboard sessions over HTTP and WebSocket.
type DashboardEchoHandler struct {
	logger     *xlogger.Logger
	auth       *auth.Service
	sessions   *usecase.SessionManager
	assistant  *chat.Assistant
	hub        *ws.Hub
	loginLimit *ratelimit.Limiter
	chatLimit  *ratelimit.Limiter

	ctx    context.Context
	cancel context.CancelFunc
}

func NewDashboardEchoHandler(
	logger *xlogger.Logger,
	authSvc *auth.Service,
	sessions *usecase.SessionManager,
	assistant *chat.Assistant,
	hub *ws.Hub,
	loginLimit, chatLimit *ratelimit.Limiter,
) *DashboardEchoHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &DashboardEchoHandler{
		logger:     logger,
		auth:       authSvc,
		sessions:   sessions,
		assistant:  assistant,
		hub:        hub,
		loginLimit: loginLimit,
		chatLimit:  chatLimit,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Close ends every open stream.
func (h *DashboardEchoHandler) Close() {
	h.cancel()
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/login", h.Login)
	g.GET("/i18n", h.Labels)
	g.GET("/splash", h.Splash)

	a := g.Group("", RequireAuth(h.auth))
	a.GET("/me", h.Me)
	a.GET("/state", h.State)
	a.GET("/chart", h.Chart)
	a.GET("/asset", h.Asset)
	a.POST("/system/toggle", h.System)
	a.POST("/trade/buy", h.Buy)
	a.POST("/trade/sell", h.Sell)
	a.PUT("/stock", h.Stock)
	a.PUT("/language", h.Language)
	a.DELETE("/settlement", h.DismissSettlement)
	a.GET("/chat", h.Transcript)
	a.POST("/chat", h.Chat)
	a.DELETE("/chat", h.ResetChat)
	a.GET("/stream", h.Stream)
}

func (h *DashboardEchoHandler) Login(c echo.Context) error {
	if !h.loginLimit.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many login attempts"))
	}
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tok, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Info("login rejected", xlogger.String("username", req.Username), xlogger.String("ip", c.RealIP()))
			return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError(err.Error()))
		}
		h.logger.Error("login error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Info("login", xlogger.String("username", tok.Username), xlogger.String("role", tok.Role))
	return xhttp.SuccessResponse(c, tok)
}

func (h *DashboardEchoHandler) Labels(c echo.Context) error {
	req := &models.I18nRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, i18n.For(models.ParseLanguage(req.Lang)))
}

func (h *DashboardEchoHandler) Splash(c echo.Context) error {
	req := &models.SplashRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, feeds.Splash(time.Duration(req.ElapsedMs)*time.Millisecond))
}

func (h *DashboardEchoHandler) Me(c echo.Context) error {
	return xhttp.SuccessResponse(c, identity(c))
}

func (h *DashboardEchoHandler) State(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "state", err)
	}
	snap, err := eng.Snapshot()
	if err != nil {
		return h.fail(c, "state", err)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *DashboardEchoHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "chart", err)
	}
	pts, err := eng.Chart(req.Limit)
	if err != nil {
		return h.fail(c, "chart", err)
	}
	return xhttp.SuccessResponse(c, pts)
}

func (h *DashboardEchoHandler) Asset(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "asset", err)
	}
	d, err := eng.AssetDetail()
	if err != nil {
		return h.fail(c, "asset", err)
	}
	return xhttp.SuccessResponse(c, d)
}

func (h *DashboardEchoHandler) System(c echo.Context) error {
	req := &models.SystemRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "system", err)
	}
	var on bool
	if req.On != nil {
		on, err = eng.SetSystem(*req.On)
	} else {
		on, err = eng.Toggle()
	}
	if err != nil {
		return h.fail(c, "system", err)
	}
	return xhttp.SuccessResponse(c, map[string]bool{"system_on": on})
}

// tradeResult reports a buy/sell request. Refusals are not errors.
type tradeResult struct {
	Accepted     bool                `json:"accepted"`
	TradingState models.TradingState `json:"trading_state"`
	Reason       string              `json:"reason,omitempty"`
}

func (h *DashboardEchoHandler) Buy(c echo.Context) error {
	return h.trade(c, "buy", (*usecase.Engine).Buy)
}

func (h *DashboardEchoHandler) Sell(c echo.Context) error {
	return h.trade(c, "sell", (*usecase.Engine).Sell)
}

func (h *DashboardEchoHandler) trade(c echo.Context, op string, act func(*usecase.Engine) (models.TradingState, error)) error {
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, op, err)
	}
	state, err := act(eng)
	switch {
	case err == nil:
		return xhttp.SuccessResponse(c, tradeResult{Accepted: true, TradingState: state})
	case errors.Is(err, usecase.ErrTradeRejected), errors.Is(err, usecase.ErrSystemOffline):
		return xhttp.SuccessResponse(c, tradeResult{TradingState: state, Reason: err.Error()})
	default:
		return h.fail(c, op, err)
	}
}

func (h *DashboardEchoHandler) Stock(c echo.Context) error {
	req := &models.StockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "stock", err)
	}
	if err := eng.SetStock(models.StockSymbol(req.Stock)); err != nil {
		return h.fail(c, "stock", err)
	}
	return xhttp.SuccessResponse(c, models.Stocks[models.StockSymbol(req.Stock)])
}

func (h *DashboardEchoHandler) Language(c echo.Context) error {
	req := &models.LanguageRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "language", err)
	}
	lang := models.ParseLanguage(req.Language)
	if err := eng.SetLanguage(lang); err != nil {
		return h.fail(c, "language", err)
	}
	return xhttp.SuccessResponse(c, i18n.For(lang))
}

func (h *DashboardEchoHandler) DismissSettlement(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "settlement", err)
	}
	had, err := eng.DismissSettlement()
	if err != nil {
		return h.fail(c, "settlement", err)
	}
	return xhttp.SuccessResponse(c, map[string]bool{"dismissed": had})
}

func (h *DashboardEchoHandler) Transcript(c echo.Context) error {
	msgs, err := h.assistant.Transcript(c.Request().Context(), identity(c).Username)
	if err != nil {
		return h.fail(c, "chat", err)
	}
	return xhttp.SuccessResponse(c, msgs)
}

func (h *DashboardEchoHandler) Chat(c echo.Context) error {
	user := identity(c).Username
	if !h.chatLimit.Allow(user) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many chat messages"))
	}
	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	reply, err := h.assistant.Send(c.Request().Context(), user, req.Message)
	if err != nil {
		return h.fail(c, "chat", err)
	}
	return xhttp.SuccessResponse(c, reply)
}

func (h *DashboardEchoHandler) ResetChat(c echo.Context) error {
	if err := h.assistant.Reset(c.Request().Context(), identity(c).Username); err != nil {
		return h.fail(c, "chat", err)
	}
	return xhttp.SuccessResponse(c, nil)
}

// Stream upgrades to a WebSocket, sends the current snapshot and then every event of the session.
func (h *DashboardEchoHandler) Stream(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return h.fail(c, "stream", err)
	}
	session := eng.Session()
	events, unsub := h.hub.Subscribe(session, streamBuffer)
	defer unsub()

	snap, err := eng.Snapshot()
	if err != nil {
		return h.fail(c, "stream", err)
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()

	h.logger.Debug("stream opened", xlogger.String("session", session))
	if err := ws.Serve(ctx, c.Response(), c.Request(), events, snap, h.logger); err != nil {
		h.logger.Warn("stream upgrade failed", xlogger.String("session", session), xlogger.Error(err))
		return nil
	}
	h.logger.Debug("stream closed", xlogger.String("session", session))
	return nil
}

// engine returns the session engine of the caller. The session key is the username.
func (h *DashboardEchoHandler) engine(c echo.Context) (*usecase.Engine, error) {
	return h.sessions.Get(identity(c).Username)
}

func (h *DashboardEchoHandler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownStock), errors.Is(err, chat.ErrEmptyMessage):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.Is(err, chat.ErrTurnInFlight):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()))
	case errors.Is(err, usecase.ErrEngineStopped):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNAVAILABLE", "", err.Error(), http.StatusServiceUnavailable))
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

// PruneLimits forgets rate-limit buckets idle for longer than idle.
func (h *DashboardEchoHandler) PruneLimits(idle time.Duration) int {
	return h.loginLimit.Prune(idle) + h.chatLimit.Prune(idle)
}
