package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/croonapp/croon/internal/shared"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("delivers code and state", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		req := httptest.NewRequest("GET", "/callback?code=ABC123&state=expected_state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Code != "ABC123" {
			t.Errorf("expected code ABC123, got %s", result.Code)
		}
		if result.State != "expected_state" {
			t.Errorf("expected state to be delivered, got %s", result.State)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		req := httptest.NewRequest("GET", "/callback?error=access_denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if !errors.Is(result.Error(), shared.ErrAuthDenied) {
			t.Errorf("expected ErrAuthDenied, got %v", result.Error())
		}

		var authErr *AuthorizationError
		if !errors.As(result.Error(), &authErr) {
			t.Fatal("expected AuthorizationError")
		}
		if authErr.Reason != "access_denied" {
			t.Errorf("expected reason access_denied, got %s", authErr.Reason)
		}
	})

	t.Run("no code", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		req := httptest.NewRequest("GET", "/callback", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		var authErr *AuthorizationError
		if !errors.As(result.Error(), &authErr) {
			t.Fatal("expected AuthorizationError")
		}
		if authErr.Reason != "no_code" {
			t.Errorf("expected reason no_code, got %s", authErr.Reason)
		}
	})

	t.Run("code outranks an error parameter", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		req := httptest.NewRequest("GET", "/callback?code=ABC123&error=access_denied&state=expected_state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Code != "ABC123" {
			t.Errorf("expected code ABC123, got %s", result.Code)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		req := httptest.NewRequest("GET", "/callback?code=ABC123&state=forged", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if !errors.Is(result.Error(), shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", result.Error())
		}
	})

	t.Run("only first callback is processed", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		first := httptest.NewRequest("GET", "/callback?code=FIRST&state=expected_state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)

		second := httptest.NewRequest("GET", "/callback?code=SECOND&state=expected_state", nil)
		rec2 := httptest.NewRecorder()
		handler.ServeHTTP(rec2, second)

		if rec2.Code != http.StatusBadRequest {
			t.Errorf("expected duplicate callback to get 400, got %d", rec2.Code)
		}

		result := <-handler.Result()
		if result.Code != "FIRST" {
			t.Errorf("expected first result to win, got %s", result.Code)
		}

		// Channel is closed after the single delivery.
		if _, ok := <-handler.Result(); ok {
			t.Error("expected result channel to be closed")
		}
	})

	t.Run("Routes", func(t *testing.T) {
		handler := NewCallbackHandler("s")
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes: %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("unregistered path responds 404", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewCallbackHandler("s"))

		req := httptest.NewRequest("GET", "/other", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("POST", "/ping", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("middleware wraps handlers", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "middleware")
				next.ServeHTTP(w, r)
			})
		})
		router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		req := httptest.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		if len(order) != 2 || order[0] != "middleware" || order[1] != "handler" {
			t.Errorf("unexpected execution order: %v", order)
		}
	})
}
