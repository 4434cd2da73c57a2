package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/service"
	"chickenshop-admin/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatusUpdater struct {
	calls []string
	err   error
}

func (f *fakeStatusUpdater) UpdateOrderStatus(_ context.Context, orderID int64, status string) error {
	f.calls = append(f.calls, fmt.Sprintf("%d:%s", orderID, status))
	return f.err
}

type fakeDashboard struct {
	err error
}

func (f *fakeDashboard) Dashboard(context.Context) (*service.Dashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.Dashboard{
		MonthlyOrders:      []service.MonthlyOrders{{Name: "Jan", Orders: 2}},
		CategoryData:       []service.CategoryProducts{},
		LatestUsers:        []service.LatestUser{},
		FlavorDistribution: []service.FlavorCount{},
	}, nil
}

func (f *fakeDashboard) MonthlyOrders(context.Context) ([]service.MonthlyOrders, error) {
	return []service.MonthlyOrders{{Name: "Jan", Orders: 2}, {Name: "Mar", Orders: 1}}, f.err
}

func (f *fakeDashboard) ProductsPerCategory(context.Context) ([]service.CategoryProducts, error) {
	return []service.CategoryProducts{{Name: "A", Products: 2}, {Name: "B", Products: 0}}, f.err
}

func (f *fakeDashboard) LatestUsers(context.Context) ([]service.LatestUser, error) {
	return []service.LatestUser{}, f.err
}

func (f *fakeDashboard) FlavorDistribution(context.Context) ([]service.FlavorCount, error) {
	return []service.FlavorCount{{Flavor: "Spicy", Value: 2}}, f.err
}

type fakeOrderLister struct {
	rows []service.OrderRow
	err  error
}

func (f *fakeOrderLister) ListOrders(context.Context) ([]service.OrderRow, error) {
	return f.rows, f.err
}

type fakeInbox struct {
	err error
}

func (f *fakeInbox) ListMine(context.Context) ([]models.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Notification{{ID: 1, UserID: "u1", Message: "Paid 🚀"}}, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	router   *gin.Engine
	statuses *fakeStatusUpdater
	reports  *fakeDashboard
	orders   *fakeOrderLister
	inbox    *fakeInbox
}

func newTestServer(deps map[string]Pinger) *testServer {
	gin.SetMode(gin.TestMode)

	s := &testServer{
		router:   gin.New(),
		statuses: &fakeStatusUpdater{},
		reports:  &fakeDashboard{},
		orders:   &fakeOrderLister{rows: []service.OrderRow{{ID: 1, Status: models.OrderStatusPaid, StatusLabel: "Paid"}}},
		inbox:    &fakeInbox{},
	}
	h := NewHandler(s.statuses, s.reports, s.orders, s.inbox, deps)
	h.SetupRoutes(s.router)
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestUpdateOrderStatusRoute(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodPatch, "/api/v1/admin/orders/42/status", `{"status":"Delivered"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"42:Delivered"}, s.statuses.calls)
}

func TestUpdateOrderStatusRouteBadInput(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodPatch, "/api/v1/admin/orders/abc/status", `{"status":"Paid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/v1/admin/orders/1/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, s.statuses.calls)
}

func TestUpdateOrderStatusRouteErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "unknown status",
			err:  &service.ValidationError{Field: "status", Err: models.ErrUnknownStatus},
			want: http.StatusBadRequest,
		},
		{
			name: "no session",
			err:  &service.AuthenticationError{Reason: "user session not found"},
			want: http.StatusUnauthorized,
		},
		{
			name: "missing order",
			err:  &service.PersistenceError{Op: "update order status", Err: store.ErrOrderNotFound},
			want: http.StatusNotFound,
		},
		{
			name: "database down",
			err:  &service.PersistenceError{Op: "update order status", Err: errors.New("connection refused")},
			want: http.StatusInternalServerError,
		},
		{
			name: "notification failed",
			err:  fmt.Errorf("failed to send notification: %w", errors.New("broker down")),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)
			s.statuses.err = tt.err

			w := s.do(http.MethodPatch, "/api/v1/admin/orders/1/status", `{"status":"Paid"}`)

			assert.Equal(t, tt.want, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["details"])
		})
	}
}

func TestDashboardRoutes(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodGet, "/api/v1/admin/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var d service.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, []service.MonthlyOrders{{Name: "Jan", Orders: 2}}, d.MonthlyOrders)

	w = s.do(http.MethodGet, "/api/v1/admin/dashboard/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"A","products":2},{"name":"B","products":0}]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/admin/dashboard/latest-users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/admin/dashboard/flavors", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"flavor":"Spicy","value":2}]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/admin/dashboard/monthly-orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"Jan","orders":2},{"name":"Mar","orders":1}]`, w.Body.String())
}

func TestDashboardRouteFetchFailure(t *testing.T) {
	s := newTestServer(nil)
	s.reports.err = &service.DataFetchError{View: service.ViewLatestUsers, Err: errors.New("timeout")}

	w := s.do(http.MethodGet, "/api/v1/admin/dashboard", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "timeout")
}

func TestListOrdersRoute(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodGet, "/api/v1/admin/orders", "")

	require.Equal(t, http.StatusOK, w.Code)
	var rows []service.OrderRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Paid", rows[0].StatusLabel)
}

func TestNotificationsRoute(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusOK, w.Code)

	s.inbox.err = &service.AuthenticationError{Reason: "user session not found"}
	w = s.do(http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	s := newTestServer(map[string]Pinger{"postgres": healthy})

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", "").Code)

	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })
	s = newTestServer(map[string]Pinger{"redis": down})

	w := s.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis")
}
