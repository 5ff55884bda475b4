package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	usecase "gas-booking-service/internal/usecase/user"
	pkgerrors "gas-booking-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*usecase.RegisterResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RegisterResponse), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LoginResponse), args.Error(1)
}

func setupUserTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	h := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	return r, mockUsecase
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("Register", mock.Anything, usecase.RegisterRequest{
			Username: "alice", Email: "alice@example.com", PhoneNo: "555", Password: "pw",
		}).Return(&usecase.RegisterResponse{ID: 1}, nil)

		w := postJSON(r, "/register", `{"username":"alice","email":"alice@example.com","phoneNo":"555","password":"pw"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "User registered", w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, _ := setupUserTest(t)

		w := postJSON(r, "/register", "invalid json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", w.Body.String())
	})

	t.Run("Missing Password", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("Register", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewValidationError("password", "Password is required"))

		w := postJSON(r, "/register", `{"username":"alice"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Password is required", w.Body.String())
	})

	t.Run("Duplicate", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("Register", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewAlreadyExistsError("user", "email already exists"))

		w := postJSON(r, "/register", `{"username":"alice","email":"a@x.com","phoneNo":"1","password":"pw"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email already exists", w.Body.String())
	})

	t.Run("Store Error Is Not Leaked", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("pq: password authentication failed for user postgres"))

		w := postJSON(r, "/register", `{"username":"alice","email":"a@x.com","phoneNo":"1","password":"pw"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Registration failed", w.Body.String())
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("Login", mock.Anything, usecase.LoginRequest{Username: "alice", Password: "pw"}).
			Return(&usecase.LoginResponse{Username: "alice"}, nil)

		w := postJSON(r, "/login", `{"username":"alice","password":"pw"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Login successful", w.Body.String())
	})

	t.Run("User Not Found Is 400", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("Login", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewNotFoundError("user", "User not found"))

		w := postJSON(r, "/login", `{"username":"ghost","password":"pw"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User not found", w.Body.String())
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("Login", mock.Anything, mock.Anything).Return(nil, pkgerrors.ErrInvalidCredentials)

		w := postJSON(r, "/login", `{"username":"alice","password":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid credentials", w.Body.String())
	})
}
