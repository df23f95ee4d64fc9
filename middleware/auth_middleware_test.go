package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func callProtected(t *testing.T, configure func(r *http.Request)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	handler := APIKeyAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/metadata/vendors", nil)
	if configure != nil {
		configure(req)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w, called
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		envKey     string
		configure  func(r *http.Request)
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "key not configured",
			envKey:     "",
			configure:  func(r *http.Request) { r.Header.Set("X-API-Key", "k") },
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "no key provided",
			envKey:     "secret",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong key",
			envKey:     "secret",
			configure:  func(r *http.Request) { r.Header.Set("X-API-Key", "nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer token accepted",
			envKey:     "secret",
			configure:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret") },
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "bearer case insensitive",
			envKey:     "secret",
			configure:  func(r *http.Request) { r.Header.Set("Authorization", "bearer secret") },
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "x-api-key accepted",
			envKey:     "secret",
			configure:  func(r *http.Request) { r.Header.Set("X-API-Key", "secret") },
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "bare authorization header accepted",
			envKey:     "secret",
			configure:  func(r *http.Request) { r.Header.Set("Authorization", "secret") },
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_KEY", tt.envKey)

			w, called := callProtected(t, tt.configure)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
		})
	}
}
