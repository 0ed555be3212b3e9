package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"foodDeliveryAdmin/internal/auth"
	"foodDeliveryAdmin/internal/backend"
	"foodDeliveryAdmin/internal/dashboard"
	"foodDeliveryAdmin/internal/notify"
	"foodDeliveryAdmin/internal/session"
	"foodDeliveryAdmin/internal/signin"
	"foodDeliveryAdmin/internal/testutil"
	"foodDeliveryAdmin/models"
	"foodDeliveryAdmin/repository"
)

const backendSecret = "backend-secret"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type testEnv struct {
	t        *testing.T
	fb       *testutil.FakeBackend
	sessions *session.Provider
	registry *dashboard.Registry
	journal  *repository.DispatchLogRepository
	srv      *httptest.Server
	client   *http.Client
}

type response struct {
	Status        int
	Header        http.Header
	Data          json.RawMessage `json:"data"`
	Error         string          `json:"error"`
	Notifications []notify.Toast  `json:"notifications"`
}

func newEnv(t *testing.T, name string, withGoogle bool) *testEnv {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	db := testutil.OpenInMemoryDB(t, name)
	provider := session.NewProvider(repository.NewSessionRepository(db), "session-secret", time.Hour, discard)
	journal := repository.NewDispatchLogRepository(db)
	client := backend.New(backend.Config{BaseURL: fb.URL, Timeout: 2 * time.Second})
	registry := dashboard.NewRegistry(func(token string) dashboard.Backend { return client.WithToken(token) },
		dashboard.Deps{Journal: journal, Log: discard})
	provider.OnEnd(registry.Drop)

	deps := Deps{Sessions: provider, Registry: registry, Journal: journal, Log: discard}
	if withGoogle {
		deps.Google = signin.NewGoogleFlow(signin.GoogleConfig{
			ClientID:      "cid",
			ClientSecret:  "csecret",
			RedirectURL:   "http://localhost:8080/signin/google/callback",
			AllowedDomain: "amigo.gg",
			JWTSecret:     backendSecret,
			Endpoint:      oauth2.Endpoint{AuthURL: fb.URL + "/auth", TokenURL: fb.URL + "/token", AuthStyle: oauth2.AuthStyleInParams},
			UserInfoURL:   fb.URL + "/userinfo",
		}, client, provider, discard)
	} else {
		deps.OTP = signin.NewOTPService(client, provider, nil, signin.OTPConfig{CountryCode: "+91", SendTimeout: time.Second, JWTSecret: backendSecret}, discard)
	}
	srv := httptest.NewServer(NewServer(deps))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{
		t:        t,
		fb:       fb,
		sessions: provider,
		registry: registry,
		journal:  journal,
		srv:      srv,
		client: &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

func (e *testEnv) stubLists() {
	e.fb.JSON(http.MethodGet, "/restaurants", http.StatusOK, []map[string]any{{"id": "r1", "name": "Spice Hub", "cuisine": "Indian"}})
	e.fb.JSON(http.MethodGet, "/orders", http.StatusOK, []map[string]any{
		{"id": "o1", "customerName": "Jane Doe", "status": "ready", "total": 10, "items": []any{}},
		{"id": "o2", "customerName": "John Doe", "status": "pending", "total": 5, "items": []any{}},
	})
	e.fb.JSON(http.MethodGet, "/agents", http.StatusOK, map[string]any{"agents": []map[string]any{{"id": "a1", "name": "Ravi", "status": "available"}}})
	e.fb.JSON(http.MethodGet, "/users", http.StatusOK, []map[string]any{{"id": "u1", "name": "Jane Doe"}, {"id": "u2", "name": "John Doe"}})
}

func (e *testEnv) do(method, path string, body any, header ...string) response {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(e.t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	out := response{Status: resp.StatusCode, Header: resp.Header}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return out
}

// signIn creates a session directly and returns its signed token.
func (e *testEnv) signIn() string {
	e.t.Helper()
	s, err := e.sessions.Start(context.Background(), "backend-access", auth.Identity{UserID: "admin-1", MobileNumber: "+919876543210"})
	require.NoError(e.t, err)
	tok, err := e.sessions.Sign(s)
	require.NoError(e.t, err)
	return tok
}

func bearer(tok string) []string { return []string{"Authorization", "Bearer " + tok} }

func TestHealthz(t *testing.T) {
	e := newEnv(t, "web_health", false)
	res := e.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"status":"ok"}`, string(res.Data))
	assert.NotNil(t, res.Notifications)
}

func TestOTPSignIn_EndToEnd(t *testing.T) {
	e := newEnv(t, "web_otp", false)
	e.stubLists()
	token := testutil.GenerateBackendToken(t, backendSecret, "admin-1", "+919876543210", "")
	e.fb.JSON(http.MethodPost, "/auth/signin", http.StatusOK, map[string]any{"message": "sent"})
	e.fb.JSON(http.MethodPost, "/admin/verify-otp", http.StatusOK, map[string]any{"token": token})

	res := e.do(http.MethodPost, "/signin/otp/mobile", map[string]string{"mobileNumber": "98765-43210"})
	require.Equal(t, http.StatusOK, res.Status)
	var view signin.FlowView
	require.NoError(t, json.Unmarshal(res.Data, &view))
	assert.Equal(t, "9876543210", view.MobileNumber)
	assert.True(t, view.MobileValid)

	res = e.do(http.MethodPost, "/signin/otp/send", nil)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "OTP Sent", res.Notifications[0].Title)
	assert.Equal(t, "+919876543210", e.fb.Calls()[0].Body["mobile"])

	res = e.do(http.MethodPost, "/signin/otp/paste", map[string]string{"text": "12a3456"})
	require.Equal(t, http.StatusOK, res.Status)
	var key otpKeyResponse
	require.NoError(t, json.Unmarshal(res.Data, &key))
	assert.True(t, key.Accepted)
	assert.Equal(t, "123456", key.Flow.OTP.Value)

	res = e.do(http.MethodPost, "/signin/otp/verify", map[string]string{"callbackUrl": "/orders"})
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	assert.JSONEq(t, `{"redirect":"/orders"}`, string(res.Data))

	res = e.do(http.MethodGet, "/api/workspace", nil)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	var ws workspaceView
	require.NoError(t, json.Unmarshal(res.Data, &ws))
	assert.Len(t, ws.Orders, 2)
	assert.Len(t, ws.Users, 2)
	for _, c := range e.fb.Calls() {
		if c.Path == "/orders" {
			assert.Equal(t, "Bearer "+token, c.Authorization, "the backend sees the admin's access token")
		}
	}

	res = e.do(http.MethodPost, "/signout", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, 0, e.registry.Len())
	res = e.do(http.MethodGet, "/api/workspace", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestOTPSend_UserNotFound(t *testing.T) {
	e := newEnv(t, "web_otp_404", false)
	e.fb.JSON(http.MethodPost, "/auth/signin", http.StatusNotFound, map[string]any{"message": "no such user"})

	e.do(http.MethodPost, "/signin/otp/mobile", map[string]string{"mobileNumber": "9876543210"})
	res := e.do(http.MethodPost, "/signin/otp/send", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "User not found. Please contact support.", res.Error)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, notify.VariantDestructive, res.Notifications[0].Variant)

	res = e.do(http.MethodGet, "/signin/otp", nil)
	var view signin.FlowView
	require.NoError(t, json.Unmarshal(res.Data, &view))
	assert.Equal(t, signin.StepMobileInput, view.Step)
}

func TestOTPSend_InvalidNumberMakesNoCall(t *testing.T) {
	e := newEnv(t, "web_otp_invalid", false)
	e.do(http.MethodPost, "/signin/otp/mobile", map[string]string{"mobileNumber": "12345"})
	res := e.do(http.MethodPost, "/signin/otp/send", nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Empty(t, e.fb.Calls())
}

func TestOTPMobile_LockedAfterSend(t *testing.T) {
	e := newEnv(t, "web_otp_locked", false)
	e.fb.JSON(http.MethodPost, "/auth/signin", http.StatusOK, map[string]any{})

	e.do(http.MethodPost, "/signin/otp/mobile", map[string]string{"mobileNumber": "9876543210"})
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/signin/otp/send", nil).Status)

	res := e.do(http.MethodPost, "/signin/otp/mobile", map[string]string{"mobileNumber": "1111111111"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = e.do(http.MethodGet, "/signin/otp", nil)
	var view signin.FlowView
	require.NoError(t, json.Unmarshal(res.Data, &view))
	assert.Equal(t, "9876543210", view.MobileNumber)
	assert.Equal(t, signin.StepOTPVerification, view.Step)
}

func TestAPI_RequiresSession(t *testing.T) {
	e := newEnv(t, "web_unauth", false)
	res := e.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.NotNil(t, res.Notifications)

	res = e.do(http.MethodGet, "/api/orders", nil, bearer("not-a-token")...)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestAPI_BearerAndFilters(t *testing.T) {
	e := newEnv(t, "web_filters", false)
	e.stubLists()
	tok := e.signIn()

	res := e.do(http.MethodGet, "/api/orders?q=jane&status=all", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(res.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)

	res = e.do(http.MethodGet, "/api/orders?status=pending", nil, bearer(tok)...)
	require.NoError(t, json.Unmarshal(res.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "o2", orders[0].ID)

	res = e.do(http.MethodPut, "/api/search", map[string]string{"term": "john"}, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status)
	res = e.do(http.MethodGet, "/api/users", nil, bearer(tok)...)
	var users []models.User
	require.NoError(t, json.Unmarshal(res.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID)

	assert.Equal(t, 1, e.fb.Count(http.MethodGet, "/orders"), "lists are fetched once per workspace")

	res = e.do(http.MethodGet, "/api/me", nil, bearer(tok)...)
	assert.JSONEq(t, `{"userId":"admin-1","mobileNumber":"+919876543210","email":""}`, string(res.Data))
}

func TestAPI_AssignAgent(t *testing.T) {
	e := newEnv(t, "web_assign", false)
	e.stubLists()
	e.fb.JSON(http.MethodPost, "/agents/assign", http.StatusOK, map[string]any{"message": "assigned"})
	tok := e.signIn()

	res := e.do(http.MethodPost, "/api/modal/assign", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status)

	res = e.do(http.MethodPost, "/api/agents/assign", models.Assignment{OrderID: "o1", AgentID: "a1"}, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	var ws workspaceView
	require.NoError(t, json.Unmarshal(res.Data, &ws))
	assert.Equal(t, dashboard.ModalNone, ws.Modal)
	assert.Equal(t, 2, e.fb.Count(http.MethodGet, "/agents"))
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "Agent assigned successfully", res.Notifications[0].Description)

	res = e.do(http.MethodGet, "/api/dispatch-log?limit=10", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status)
	var recs []models.DispatchRecord
	require.NoError(t, json.Unmarshal(res.Data, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, models.DispatchAssign, recs[0].Action)
	assert.Equal(t, "admin-1", recs[0].Actor)

	res = e.do(http.MethodGet, "/api/dispatch-log?orderId=o1", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status)
	require.NoError(t, json.Unmarshal(res.Data, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "a1", recs[0].AgentID)

	res = e.do(http.MethodGet, "/api/dispatch-log?orderId=o9", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `[]`, string(res.Data))

	res = e.do(http.MethodGet, "/api/dispatch-log?limit=ten", nil, bearer(tok)...)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestAPI_DetailsAndStats(t *testing.T) {
	e := newEnv(t, "web_details", false)
	e.stubLists()
	e.fb.JSON(http.MethodGet, "/orders/o1", http.StatusOK, map[string]any{"id": "o1", "customerName": "Jane Doe", "status": "ready", "total": 10, "items": []any{}})
	e.fb.JSON(http.MethodGet, "/restaurants/r1", http.StatusOK, map[string]any{"id": "r1", "name": "Spice Hub"})
	e.fb.JSON(http.MethodGet, "/agents/a1", http.StatusOK, map[string]any{"id": "a1", "name": "Ravi", "status": "available"})
	tok := e.signIn()

	res := e.do(http.MethodGet, "/api/orders/o1", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	var o models.Order
	require.NoError(t, json.Unmarshal(res.Data, &o))
	assert.Equal(t, "Jane Doe", o.CustomerName)

	res = e.do(http.MethodGet, "/api/restaurants/r1", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	res = e.do(http.MethodGet, "/api/agents/a1", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status, res.Error)

	res = e.do(http.MethodGet, "/api/orders/o9", nil, bearer(tok)...)
	assert.Equal(t, http.StatusNotFound, res.Status)
	require.Len(t, res.Notifications, 1)

	res = e.do(http.MethodGet, "/api/stats", nil, bearer(tok)...)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	var st dashboard.Stats
	require.NoError(t, json.Unmarshal(res.Data, &st))
	assert.Equal(t, 2, st.TotalOrders)
	assert.Equal(t, 1, st.ActiveRestaurants)
	assert.Equal(t, 1, st.AvailableDeliveryAgents)
	assert.Equal(t, 2, st.TotalUsers)
	assert.Equal(t, dashboard.TrendDown, st.OrdersTrend)

	res = e.do(http.MethodGet, "/api/stats?q=john", nil, bearer(tok)...)
	require.NoError(t, json.Unmarshal(res.Data, &st))
	assert.Equal(t, 1, st.TotalOrders)
	assert.Equal(t, 1, st.TotalUsers)
}

func TestAPI_AssignAgentFailures(t *testing.T) {
	e := newEnv(t, "web_assign_fail", false)
	e.stubLists()
	e.fb.JSON(http.MethodPost, "/agents/assign", http.StatusConflict, map[string]any{"message": "Agent is not available"})
	tok := e.signIn()

	res := e.do(http.MethodPost, "/api/agents/assign", models.Assignment{OrderID: "o1", AgentID: "a1"}, bearer(tok)...)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, "Agent is not available", res.Error)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "Assignment Failed", res.Notifications[0].Title)

	res = e.do(http.MethodPost, "/api/agents/assign", map[string]string{"orderId": "o1"}, bearer(tok)...)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, 1, e.fb.Count(http.MethodPost, "/agents/assign"))

	res = e.do(http.MethodPost, "/api/modal/nope", nil, bearer(tok)...)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestAPI_CreateOrder(t *testing.T) {
	e := newEnv(t, "web_create", false)
	e.stubLists()
	e.fb.JSON(http.MethodPost, "/orders", http.StatusCreated, map[string]any{"id": "o3", "status": "pending", "total": 13})
	tok := e.signIn()

	draft := models.OrderDraft{
		CustomerName: "Jane Doe",
		RestaurantID: "r1",
		Items:        []models.OrderItem{{Name: "Dosa", Price: 5, Quantity: 2}, {Name: "Chai", Price: 3, Quantity: 1}},
	}
	res := e.do(http.MethodPost, "/api/orders", draft, bearer(tok)...)
	require.Equal(t, http.StatusCreated, res.Status, res.Error)
	for _, c := range e.fb.Calls() {
		if c.Method == http.MethodPost && c.Path == "/orders" {
			assert.Equal(t, 13.0, c.Body["total"])
		}
	}

	res = e.do(http.MethodPost, "/api/orders", "not an object", bearer(tok)...)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestGoogleSignIn(t *testing.T) {
	e := newEnv(t, "web_google", true)
	e.fb.JSON(http.MethodPost, "/token", http.StatusOK, map[string]any{"access_token": "google-access", "token_type": "Bearer", "expires_in": 3600})
	e.fb.JSON(http.MethodGet, "/userinfo", http.StatusOK, map[string]any{"email": "admin@amigo.gg", "email_verified": true, "name": "Admin"})
	e.fb.JSON(http.MethodPost, "/admin/google", http.StatusOK, map[string]any{
		"token": testutil.GenerateBackendToken(t, backendSecret, "g-1", "", "admin@amigo.gg"),
	})

	res := e.do(http.MethodGet, "/signin/google?callbackUrl=/agents", nil)
	require.Equal(t, http.StatusFound, res.Status)
	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "amigo.gg", loc.Query().Get("hd"))

	res = e.do(http.MethodGet, "/signin/google/callback?code=c1&state="+url.QueryEscape(state), nil)
	require.Equal(t, http.StatusFound, res.Status)
	assert.Equal(t, "/agents", res.Header.Get("Location"))

	e.stubLists()
	res = e.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, res.Status, res.Error)
	assert.Contains(t, string(res.Data), `"email":"admin@amigo.gg"`)
}

func TestGoogleCallback_Refusals(t *testing.T) {
	e := newEnv(t, "web_google_refused", true)
	e.fb.JSON(http.MethodPost, "/token", http.StatusOK, map[string]any{"access_token": "google-access", "token_type": "Bearer", "expires_in": 3600})
	e.fb.JSON(http.MethodGet, "/userinfo", http.StatusOK, map[string]any{"email": "someone@gmail.com", "email_verified": true})

	res := e.do(http.MethodGet, "/signin/google/callback?code=c1&state=forged", nil)
	require.Equal(t, http.StatusFound, res.Status)
	assert.Equal(t, "/signin/error?error=Callback", res.Header.Get("Location"))

	res = e.do(http.MethodGet, "/signin/google", nil)
	loc, _ := url.Parse(res.Header.Get("Location"))
	res = e.do(http.MethodGet, "/signin/google/callback?code=c1&state="+url.QueryEscape(loc.Query().Get("state")), nil)
	require.Equal(t, http.StatusFound, res.Status)
	assert.Equal(t, "/signin/error?error=AccessDenied", res.Header.Get("Location"))

	res = e.do(http.MethodGet, "/signin/error?error=AccessDenied", nil)
	assert.JSONEq(t, `{"error":"AccessDenied","message":"Only @amigo.gg email addresses are allowed to sign in."}`, string(res.Data))
	res = e.do(http.MethodGet, "/signin/error?error=Callback", nil)
	assert.Contains(t, string(res.Data), "An error occurred during authentication.")
}
