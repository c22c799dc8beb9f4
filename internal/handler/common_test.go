package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestGetEmployeeIDAcceptsJWTNumericTypes(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  uint64
	}{
		{"uint64", uint64(7), 7},
		{"int", int(12), 12},
		{"int64", int64(99), 99},
		{"float64 from jwt claims", float64(42), 42},
		{"numeric string", "1001", 1001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContext(t)
			c.Set("user_id", tc.value)
			got, err := getEmployeeID(c)
			if err != nil {
				t.Fatalf("getEmployeeID: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGetEmployeeIDRejectsMissingOrGarbage(t *testing.T) {
	c := newTestContext(t)
	if _, err := getEmployeeID(c); err == nil {
		t.Fatal("expected error for missing user_id")
	}
	c.Set("user_id", "not-a-number")
	if _, err := getEmployeeID(c); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}

func TestParseIDParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("15")
	id, ok := parseIDParam(c, "id")
	if !ok || id != 15 {
		t.Fatalf("got id=%d ok=%v, want 15 true", id, ok)
	}

	for _, bad := range []string{"0", "-3", "abc", ""} {
		c.SetParamValues(bad)
		if _, ok := parseIDParam(c, "id"); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
