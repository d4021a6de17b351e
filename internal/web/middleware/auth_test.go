package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testOwner  = "2b1e6a8c-5d7f-4c1e-9a0b-3f2d4e5c6a7b"
)

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   testOwner,
		Issuer:    "https://auth.example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestBearerAuth(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExp := validClaims()
	noExp.ExpiresAt = nil

	badSub := validClaims()
	badSub.Subject = "user-42"

	otherIssuer := validClaims()
	otherIssuer.Issuer = "https://evil.example.com"

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "valid", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()), wantCode: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()), wantCode: http.StatusOK},
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized, wantErr: "AUTH001"},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantCode: http.StatusUnauthorized, wantErr: "AUTH001"},
		{name: "wrong secret", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), validClaims()), wantCode: http.StatusUnauthorized, wantErr: "AUTH002"},
		{name: "wrong algorithm", header: "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()), wantCode: http.StatusUnauthorized, wantErr: "AUTH002"},
		{name: "expired", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), wantCode: http.StatusUnauthorized, wantErr: "AUTH002"},
		{name: "no expiry", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExp), wantCode: http.StatusUnauthorized, wantErr: "AUTH002"},
		{name: "subject not uuid", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), badSub), wantCode: http.StatusUnauthorized, wantErr: "AUTH002"},
		{name: "wrong issuer", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), otherIssuer), wantCode: http.StatusUnauthorized, wantErr: "AUTH002"},
		{name: "garbage", header: "Bearer not.a.jwt", wantCode: http.StatusUnauthorized, wantErr: "AUTH002"},
	}

	auth := BearerAuth(AuthConfig{Secret: []byte(testSecret), Issuer: "https://auth.example.com"})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSubject string
			handler := auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject = SubjectFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/budgets/export", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantErr == "" {
				if gotSubject != testOwner {
					t.Errorf("subject = %q, want %q", gotSubject, testOwner)
				}
				return
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["code"] != tt.wantErr {
				t.Errorf("code = %q, want %q", body["code"], tt.wantErr)
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestBearerAuth_PreflightPassesThrough(t *testing.T) {
	called := false
	handler := BearerAuth(AuthConfig{Secret: []byte(testSecret)})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/budgets/import", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("OPTIONS request was rejected")
	}
}
