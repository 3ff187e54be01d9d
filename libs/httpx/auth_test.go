package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/monkeyprint/listings/libs/auth"
)

func TestRequireAdmin(t *testing.T) {
	secret := "test-secret"
	h := RequireAdmin(secret, "admin", "super_admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.AdminID != "admin-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	sign := func(role string) string {
		token, err := auth.SignHS256(auth.NewClaims("admin-1", "", role, time.Hour), secret)
		if err != nil {
			t.Fatalf("SignHS256 failed: %v", err)
		}
		return token
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad token", "Bearer badtoken", http.StatusUnauthorized},
		{"wrong role", "Bearer " + sign("viewer"), http.StatusForbidden},
		{"admin", "Bearer " + sign("admin"), http.StatusOK},
		{"super admin", "Bearer " + sign("super_admin"), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/admin/dashboard", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rw := httptest.NewRecorder()
			h.ServeHTTP(rw, req)
			if rw.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rw.Code)
			}
		})
	}
}
