package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/document"
	attendanceservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	authservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	dutyservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/duty"
	employeeservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	leaveservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	reportservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	handler http.Handler
	jwt     jwt.Service
	hub     *sse.Hub
	clock   *testClock
	duty    *dutyservice.DutyServiceImpl
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 2, 6, 9, 0, 0, 0, time.UTC)}
	store := docstore.NewMemory()
	users := document.NewUserRepository(store)
	sessions := document.NewAttendanceRepository(store)
	statuses := document.NewDutyStatusRepository(store)
	leaves := document.NewLeaveRequestRepository(store)

	jwtService, err := jwt.NewJWTService("handler-test-secret", "1h")
	require.NoError(t, err)

	hub := sse.NewHub()
	locations := location.NewProvider(clock.Now)
	identity := authservice.NewLocalIdentityProvider(store, bcrypt.MinCost)
	dutyService := dutyservice.NewDutyService(users, sessions, statuses, locations, hub, duty.WatchOptions{}, time.UTC, clock.Now)
	t.Cleanup(dutyService.Shutdown)

	router := NewRouter(RouterConfig{AppName: "attendance-test", Env: "test"}, jwtService, Handlers{
		Auth:       NewAuthHandler(authservice.NewAuthService(users, jwtService, identity, dutyService)),
		Duty:       NewDutyHandler(dutyService),
		Attendance: NewAttendanceHandler(attendanceservice.NewAttendanceService(sessions, users, time.UTC, clock.Now), reportservice.NewReportService(users, sessions, leaves, time.UTC, clock.Now)),
		Leave:      NewLeaveHandler(leaveservice.NewLeaveRequestService(leaves, users, hub, clock.Now)),
		Employee:   NewEmployeeHandler(employeeservice.NewEmployeeService(users, sessions, statuses, identity, clock.Now)),
		Events:     NewEventsHandler(jwtService, hub),
	})

	return &testServer{handler: router, jwt: jwtService, hub: hub, clock: clock, duty: dutyService}
}

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type tokenData struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

// onboard registers an administrator and one employee and returns both
// access tokens plus the employee's id.
func (s *testServer) onboard(t *testing.T) (adminToken, employeeToken, employeeID string) {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Sari", "email": "sari@cmlabs.co", "password": "secret1", "company_name": "CM Labs",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	admin := decodeData[tokenData](t, env)
	assert.Equal(t, "admin", admin.User.Role)

	code, env = s.do(t, http.MethodPost, "/api/v1/employees", admin.AccessToken, map[string]string{
		"name": "Budi", "email": "budi@cmlabs.co", "password": "secret1", "department": "Engineering",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "budi@cmlabs.co", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	emp := decodeData[tokenData](t, env)
	return admin.AccessToken, emp.AccessToken, emp.User.ID
}

func TestRouter_DutyDay(t *testing.T) {
	s := newTestServer(t)
	_, token, employeeID := s.onboard(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/duty/start", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/duty/permission", token, map[string]bool{"granted": true})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/duty/location", token, map[string]float64{"latitude": 120, "longitude": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "location")

	code, _ = s.do(t, http.MethodPost, "/api/v1/duty/location", token, map[string]float64{"latitude": -6.2, "longitude": 106.8})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/duty/start", token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	started := decodeData[duty.DutyStatusResponse](t, env)
	assert.Equal(t, duty.StateOnDuty, started.State)
	assert.Equal(t, employeeID, started.SubjectID)

	code, env = s.do(t, http.MethodPost, "/api/v1/duty/start", token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, code)

	s.clock.Advance(2 * time.Hour)
	code, _ = s.do(t, http.MethodPost, "/api/v1/duty/location", token, map[string]float64{"latitude": -6.21, "longitude": 106.81})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/duty/status", token, nil)
	require.Equal(t, http.StatusOK, code)
	status := decodeData[duty.DutyStatusResponse](t, env)
	require.NotNil(t, status.CurrentLocation)
	assert.InDelta(t, -6.21, status.CurrentLocation.Latitude, 1e-9)
	require.NotNil(t, status.OpenSession)

	code, env = s.do(t, http.MethodPost, "/api/v1/duty/end", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, duty.StateOffDuty, decodeData[duty.DutyStatusResponse](t, env).State)

	code, env = s.do(t, http.MethodGet, "/api/v1/attendance/sessions?limit=5", token, nil)
	require.Equal(t, http.StatusOK, code)
	sessions := decodeData[[]map[string]any](t, env)
	require.Len(t, sessions, 1)
	assert.Equal(t, "2024-02-06", sessions[0]["date"])
	assert.Equal(t, "2h 0m", sessions[0]["duration"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/attendance/sessions?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(t, http.MethodGet, "/api/v1/attendance/sessions?limit=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_LeaveAndRoster(t *testing.T) {
	s := newTestServer(t)
	adminToken, token, employeeID := s.onboard(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/leaves", token, map[string]string{
		"leave_date": "2024-02-07", "reason": "dentist", "leave_type": "sick",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	created := decodeData[map[string]any](t, env)
	leaveID := created["id"].(string)

	code, _ = s.do(t, http.MethodPost, "/api/v1/leaves", token, map[string]string{
		"leave_date": "2024-02-07", "reason": "again",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/leaves", adminToken, map[string]string{
		"leave_date": "2024-02-07", "reason": "admin",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/leaves", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/leaves?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]map[string]any](t, env), 1)

	code, env = s.do(t, http.MethodPost, "/api/v1/leaves/"+leaveID+"/reject", adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "response")

	code, env = s.do(t, http.MethodPost, "/api/v1/leaves/"+leaveID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "approved", decodeData[map[string]any](t, env)["status"])

	code, _ = s.do(t, http.MethodPost, "/api/v1/leaves/"+leaveID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusPreconditionFailed, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/leaves/my", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]map[string]any](t, env), 1)

	code, _ = s.do(t, http.MethodGet, "/api/v1/employees", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/employees", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	roster := decodeData[[]map[string]any](t, env)
	require.Len(t, roster, 1)
	assert.Equal(t, employeeID, roster[0]["id"])

	code, env = s.do(t, http.MethodGet, "/api/v1/employees/"+employeeID, adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Budi", decodeData[map[string]any](t, env)["name"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/employees/unknown", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/stats/monthly?year=2024&month=2&employee_id="+employeeID, adminToken, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	stats := decodeData[map[string]any](t, env)
	assert.Equal(t, employeeID, stats["employee_id"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/stats/monthly?month=13", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_AuthFlow(t *testing.T) {
	s := newTestServer(t)
	_, token, _ := s.onboard(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "budi@cmlabs.co", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Budi", "email": "budi@cmlabs.co", "password": "secret1", "company_name": "CM Labs",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "budi@cmlabs.co", decodeData[map[string]any](t, env)["email"])

	code, _ = s.do(t, http.MethodPost, "/api/v1/duty/permission", token, map[string]bool{"granted": true})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/v1/duty/start", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestEvents_StreamRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?token=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEvents_StreamDeliversCompanyBoard(t *testing.T) {
	s := newTestServer(t)
	adminToken, _, _ := s.onboard(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/events/token", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	sseToken := decodeData[map[string]any](t, env)["token"].(string)

	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?token="+sseToken, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	require.Equal(t, "connected", readEvent())
	s.hub.Publish(sse.CompanyChannel("cm labs"), sse.Event{Event: "duty.started", Data: map[string]string{"subject_id": "emp-1"}})
	assert.Equal(t, "duty.started", readEvent())
}
