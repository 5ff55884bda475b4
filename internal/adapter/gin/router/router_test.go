package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gas-booking-service/internal/adapter/db/postgres"
	"gas-booking-service/internal/adapter/gin/handler"
	"gas-booking-service/internal/adapter/notify"
	bookinguc "gas-booking-service/internal/usecase/booking"
	useruc "gas-booking-service/internal/usecase/user"
	"gas-booking-service/pkg/security"
)

// outbox is a Mailer that keeps what it was asked to send.
type outbox struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (o *outbox) Send(_ context.Context, m notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) subjects() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.sent))
	for i, m := range o.sent {
		out[i] = m.Subject
	}
	return out
}

type RouterSuite struct {
	suite.Suite
	router http.Handler
	outbox *outbox
	stop   context.CancelFunc
	done   chan struct{}
}

func (s *RouterSuite) SetupTest() {
	t := s.T()
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, postgres.AutoMigrate(db))

	queue := notify.NewMemoryQueue(16, log)
	s.outbox = &outbox{}
	worker := notify.NewWorker(queue, s.outbox, notify.WorkerConfig{MaxAttempts: 1, SendTimeout: time.Second, Backoff: time.Millisecond}, log)

	users := useruc.New(postgres.NewUserRepoPG(db, log), security.NewPasswordHasher(bcrypt.MinCost), log)
	bookings := bookinguc.New(postgres.NewBookingRepoPG(db, log), notify.NewDispatcher(queue, time.Second, log), log)

	s.router = SetupRouter(handler.NewUserHandler(users, log), handler.NewBookingHandler(bookings, log), "gas-booking-service", log)

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_ = worker.Run(ctx)
	}()

	s.T().Cleanup(func() { _ = sqlDB.Close() })
}

func (s *RouterSuite) TearDownTest() {
	s.stop()
	<-s.done
}

func (s *RouterSuite) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"healthy","service":"gas-booking-service"}`, w.Body.String())
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/gasBookingForm", "")

	w := s.do(http.MethodGet, "/metrics", "")

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "http_requests_total")
}

func (s *RouterSuite) TestCORS() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gasBookingForm", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	s.router.ServeHTTP(w, req)

	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *RouterSuite) TestRegisterThenLogin() {
	w := s.do(http.MethodPost, "/register", `{"username":"alice","email":"alice@example.com","phoneNo":"555","password":"pw"}`)
	s.Equal(http.StatusCreated, w.Code)
	s.Equal("User registered", w.Body.String())

	w = s.do(http.MethodPost, "/login", `{"username":"alice","password":"pw"}`)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Login successful", w.Body.String())
}

func (s *RouterSuite) TestRegisterMissingPassword() {
	w := s.do(http.MethodPost, "/register", `{"username":"alice","email":"alice@example.com","phoneNo":"555"}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Password is required", w.Body.String())
}

func (s *RouterSuite) TestRegisterDuplicateKeepsFirst() {
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/register", `{"username":"alice","email":"alice@example.com","phoneNo":"555","password":"pw"}`).Code)

	w := s.do(http.MethodPost, "/register", `{"username":"alice","email":"other@example.com","phoneNo":"1","password":"other"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/register", `{"username":"bob","email":"alice@example.com","phoneNo":"1","password":"other"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	// the first password still works
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/login", `{"username":"alice","password":"pw"}`).Code)
}

func (s *RouterSuite) TestLoginFailures() {
	w := s.do(http.MethodPost, "/login", `{"username":"ghost","password":"pw"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("User not found", w.Body.String())

	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/register", `{"username":"alice","email":"alice@example.com","phoneNo":"555","password":"pw"}`).Code)

	w = s.do(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid credentials", w.Body.String())
}

func (s *RouterSuite) TestBookingLifecycle() {
	const payload = `{"id":"b1","name":"A","email":"a@x.com","phone":"123","date":"2024-01-01","timeSlot":"10-11"}`

	w := s.do(http.MethodPost, "/gasBookingForm", payload)
	s.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/gasBookingForm/b1", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(payload, w.Body.String())

	w = s.do(http.MethodPost, "/gasBookingForm", payload)
	s.Equal(http.StatusBadRequest, w.Code, "second create with the same id fails")

	w = s.do(http.MethodPut, "/gasBookingForm/b1", `{"timeSlot":"14-15"}`)
	s.Equal(http.StatusOK, w.Code)
	first := w.Body.String()
	w = s.do(http.MethodPut, "/gasBookingForm/b1", `{"timeSlot":"14-15"}`)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(first, w.Body.String(), "repeating an update changes nothing")

	var updated handler.BookingResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	s.Equal("14-15", updated.TimeSlot)
	s.Equal("A", updated.Name)

	w = s.do(http.MethodGet, "/gasBookingForm", "")
	s.Equal(http.StatusOK, w.Code)
	var all []handler.BookingResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &all))
	s.Len(all, 1)

	w = s.do(http.MethodDelete, "/gasBookingForm/b1", "")
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/gasBookingForm/b1", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Form data not found", w.Body.String())

	s.Eventually(func() bool { return len(s.outbox.subjects()) == 4 }, 2*time.Second, 10*time.Millisecond)
	s.Equal([]string{
		"Gas Booking Confirmation",
		"Gas Booking Updated",
		"Gas Booking Updated",
		"Gas Booking Cancelled",
	}, s.outbox.subjects())
}

func (s *RouterSuite) TestBookingNotFound() {
	s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/gasBookingForm/missing", `{"name":"B"}`).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/gasBookingForm/missing", "").Code)
	s.Empty(s.outbox.subjects())
}

func (s *RouterSuite) TestBookingMissingField() {
	w := s.do(http.MethodPost, "/gasBookingForm", `{"id":"b1","name":"A","email":"a@x.com","phone":"123","date":"2024-01-01"}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("TimeSlot is required", w.Body.String())
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func TestSetupRouter_UnknownRoute(t *testing.T) {
	log := zaptest.NewLogger(t)
	r := SetupRouter(handler.NewUserHandler(nil, log), handler.NewBookingHandler(nil, log), "svc", log)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
