package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/auth"
	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewJWTManager("test-secret-at-least-32-bytes-long", time.Hour)
	token, err := tokens.Generate(&core.User{ID: "u1", Email: "robena@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	var gotAccountID, gotEmail string
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccountID = AccountID(r.Context())
		gotEmail = Email(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAccountID, gotEmail = "", ""
			req := httptest.NewRequest(http.MethodGet, "/api/balance", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if gotAccountID != "u1" || gotEmail != "robena@example.com" {
					t.Errorf("context identity = (%q, %q)", gotAccountID, gotEmail)
				}
			}
		})
	}
}

func TestAccountIDUnauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := AccountID(req.Context()); id != "" {
		t.Errorf("AccountID on bare context = %q, want empty", id)
	}
}
