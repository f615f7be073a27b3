package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/internal/handler/ws"
	"YiJinJing/internal/service/ratelimit"
	"YiJinJing/internal/services/auth"
	"YiJinJing/internal/services/chat"
	"YiJinJing/internal/usecase"
	"YiJinJing/pkg/cache"
	"YiJinJing/pkg/clock"
	xlogger "YiJinJing/pkg/logger"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type echoCompleter struct{}

func (echoCompleter) Name() string { return "echo" }

func (echoCompleter) Complete(_ context.Context, msgs []models.ChatMessage) (string, error) {
	return "re: " + msgs[len(msgs)-1].Content, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	e     *echo.Echo
	token string
}

func newTestAPI(t *testing.T, loginPerMinute int) *testAPI {
	t.Helper()
	log := xlogger.Nop()
	authSvc, err := auth.NewService("0123456789abcdef", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	hub := ws.NewHub(log)
	clk := clock.NewFake(time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC))
	sessions := usecase.NewSessionManager(usecase.DefaultEngineConfig(), clk, hub, usecase.WithSeed(1))
	store := cache.NewMemoryCache()
	assistant := chat.NewAssistant(echoCompleter{}, store, chat.Prompts{System: "sys", Greeting: "hello", Fallback: "offline"})

	h := NewDashboardEchoHandler(log, authSvc, sessions, assistant, hub,
		ratelimit.PerMinute(loginPerMinute, loginPerMinute), ratelimit.PerMinute(60, 10))
	t.Cleanup(func() {
		h.Close()
		sessions.Close()
		store.Close()
	})

	e := echo.New()
	h.RegisterRoutes(e)
	return &testAPI{e: e}
}

func (a *testAPI) do(t *testing.T, method, path, body string) envelope {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if a.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s %s: http %d", method, path, rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %v: %s", method, path, err, rec.Body.String())
	}
	return env
}

func (a *testAPI) login(t *testing.T, user, pass string) {
	t.Helper()
	env := a.do(t, http.MethodPost, "/api/login", `{"username":"`+user+`","password":"`+pass+`"}`)
	if env.Status != http.StatusOK {
		t.Fatalf("login status %d: %s", env.Status, env.Data)
	}
	var tok auth.Token
	_ = json.Unmarshal(env.Data, &tok)
	a.token = tok.Token
}

func TestLoginAndAuthGuard(t *testing.T) {
	api := newTestAPI(t, 100)

	if env := api.do(t, http.MethodGet, "/api/state", ""); env.Status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated state: %d", env.Status)
	}
	env := api.do(t, http.MethodPost, "/api/login", `{"username":"admin","password":"nope"}`)
	if env.Status != http.StatusUnauthorized || !strings.Contains(string(env.Data), "Access Denied") {
		t.Fatalf("bad password: %d %s", env.Status, env.Data)
	}
	if env := api.do(t, http.MethodPost, "/api/login", `{"username":"admin"}`); env.Status != http.StatusBadRequest {
		t.Fatalf("missing password: %d", env.Status)
	}

	api.login(t, "trader", "alpha")
	env = api.do(t, http.MethodGet, "/api/me", "")
	var id auth.Identity
	_ = json.Unmarshal(env.Data, &id)
	if id.Username != "trader" || id.Role != "Quant Trader" {
		t.Fatalf("identity %+v", id)
	}

	api.token = "garbage"
	if env := api.do(t, http.MethodGet, "/api/me", ""); env.Status != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", env.Status)
	}
}

func TestLoginRateLimit(t *testing.T) {
	api := newTestAPI(t, 1)
	api.do(t, http.MethodPost, "/api/login", `{"username":"guest","password":"visitor"}`)
	env := api.do(t, http.MethodPost, "/api/login", `{"username":"guest","password":"visitor"}`)
	if env.Status != http.StatusTooManyRequests {
		t.Fatalf("second login: %d", env.Status)
	}
}

func TestDashboardCommands(t *testing.T) {
	api := newTestAPI(t, 100)
	api.login(t, "admin", "1234")

	env := api.do(t, http.MethodPost, "/api/trade/buy", "")
	var tr tradeResult
	_ = json.Unmarshal(env.Data, &tr)
	if env.Status != http.StatusOK || tr.Accepted {
		t.Fatalf("buy while offline: %d %+v", env.Status, tr)
	}

	env = api.do(t, http.MethodPost, "/api/system/toggle", "")
	if !strings.Contains(string(env.Data), `"system_on":true`) {
		t.Fatalf("toggle: %s", env.Data)
	}
	env = api.do(t, http.MethodPost, "/api/system/toggle", `{"on":true}`)
	if !strings.Contains(string(env.Data), `"system_on":true`) {
		t.Fatalf("explicit on: %s", env.Data)
	}

	env = api.do(t, http.MethodPost, "/api/trade/buy", "")
	_ = json.Unmarshal(env.Data, &tr)
	if !tr.Accepted || tr.TradingState != models.StateBuying {
		t.Fatalf("buy: %+v", tr)
	}
	env = api.do(t, http.MethodPost, "/api/trade/sell", "")
	tr = tradeResult{}
	_ = json.Unmarshal(env.Data, &tr)
	if tr.Accepted || tr.TradingState != models.StateBuying {
		t.Fatalf("sell while buying: %+v", tr)
	}

	if env := api.do(t, http.MethodPut, "/api/stock", `{"stock":"TSLA"}`); env.Status != http.StatusBadRequest {
		t.Fatalf("unknown stock: %d", env.Status)
	}
	if env := api.do(t, http.MethodPut, "/api/stock", `{"stock":"ZTE"}`); env.Status != http.StatusOK {
		t.Fatalf("stock: %d", env.Status)
	}
	if env := api.do(t, http.MethodPut, "/api/language", `{"language":"EN"}`); env.Status != http.StatusOK {
		t.Fatalf("language: %d", env.Status)
	}

	env = api.do(t, http.MethodGet, "/api/chart?limit=5", "")
	var pts []models.ChartPoint
	_ = json.Unmarshal(env.Data, &pts)
	if len(pts) != 5 {
		t.Fatalf("chart points %d", len(pts))
	}
	if env := api.do(t, http.MethodGet, "/api/chart?limit=0", ""); env.Status != http.StatusOK {
		t.Fatalf("limit=0 falls back to default: %d", env.Status)
	}
	if env := api.do(t, http.MethodGet, "/api/chart?limit=99", ""); env.Status != http.StatusBadRequest {
		t.Fatalf("limit=99: %d", env.Status)
	}

	env = api.do(t, http.MethodGet, "/api/state", "")
	var snap models.Snapshot
	_ = json.Unmarshal(env.Data, &snap)
	if !snap.SystemOn || snap.Stock != models.StockZTE || snap.Language != models.LangEN || snap.TradingState != models.StateBuying {
		t.Fatalf("snapshot %+v", snap)
	}

	env = api.do(t, http.MethodDelete, "/api/settlement", "")
	if !strings.Contains(string(env.Data), `"dismissed":false`) {
		t.Fatalf("dismiss: %s", env.Data)
	}
}

func TestChatEndpoints(t *testing.T) {
	api := newTestAPI(t, 100)
	api.login(t, "guest", "visitor")

	if env := api.do(t, http.MethodPost, "/api/chat", `{"message":"   "}`); env.Status != http.StatusBadRequest {
		t.Fatalf("blank message: %d", env.Status)
	}
	env := api.do(t, http.MethodPost, "/api/chat", `{"message":"risk?"}`)
	var reply models.ChatMessage
	_ = json.Unmarshal(env.Data, &reply)
	if reply.Content != "re: risk?" {
		t.Fatalf("reply %+v", reply)
	}

	env = api.do(t, http.MethodGet, "/api/chat", "")
	var msgs []models.ChatMessage
	_ = json.Unmarshal(env.Data, &msgs)
	if len(msgs) != 3 || msgs[0].Content != "hello" {
		t.Fatalf("transcript %+v", msgs)
	}

	api.do(t, http.MethodDelete, "/api/chat", "")
	env = api.do(t, http.MethodGet, "/api/chat", "")
	msgs = nil
	_ = json.Unmarshal(env.Data, &msgs)
	if len(msgs) != 1 {
		t.Fatalf("after reset %+v", msgs)
	}
}

func TestPublicEndpoints(t *testing.T) {
	api := newTestAPI(t, 100)

	env := api.do(t, http.MethodGet, "/api/splash?elapsed_ms=2000", "")
	var sp models.SplashProgress
	_ = json.Unmarshal(env.Data, &sp)
	if sp.Percent != 50 || sp.Done {
		t.Fatalf("splash %+v", sp)
	}
	if env := api.do(t, http.MethodGet, "/api/splash?elapsed_ms=-1", ""); env.Status != http.StatusBadRequest {
		t.Fatalf("negative elapsed: %d", env.Status)
	}

	env = api.do(t, http.MethodGet, "/api/i18n?lang=EN", "")
	if env.Status != http.StatusOK || len(env.Data) < 10 {
		t.Fatalf("i18n: %d %s", env.Status, env.Data)
	}
	if env := api.do(t, http.MethodGet, "/api/i18n?lang=FR", ""); env.Status != http.StatusBadRequest {
		t.Fatalf("unsupported language: %d", env.Status)
	}
}

func TestAssetEndpoint(t *testing.T) {
	api := newTestAPI(t, 100)
	if env := api.do(t, http.MethodGet, "/api/asset", ""); env.Status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated asset: %d", env.Status)
	}
	api.login(t, "trader", "alpha")

	if env := api.do(t, http.MethodPut, "/api/stock", `{"stock":"BYD"}`); env.Status != http.StatusOK {
		t.Fatalf("stock: %d", env.Status)
	}
	env := api.do(t, http.MethodGet, "/api/asset", "")
	var d models.AssetDetail
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("decode asset: %v", err)
	}
	if d.Stock != models.StockBYD || len(d.Allocation) != 2 || d.Allocation[0].Color != models.Stocks[models.StockBYD].Color {
		t.Fatalf("asset allocation %+v", d)
	}
	if len(d.NetValue) != 30 || len(d.Yields) != 5 {
		t.Fatalf("asset curve %d yields %d", len(d.NetValue), len(d.Yields))
	}
}
