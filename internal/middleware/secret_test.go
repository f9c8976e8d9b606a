package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireTriggerSecret(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	call := func(secret, header string) error {
		req := httptest.NewRequest(http.MethodPost, "/internal/status-sweep", nil)
		if header != "" {
			req.Header.Set("X-Trigger-Secret", header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		return RequireTriggerSecret(secret)(next)(c)
	}

	if err := call("s3cret", "s3cret"); err != nil {
		t.Errorf("matching secret: error = %v; want nil", err)
	}

	if err := call("s3cret", "wrong"); err == nil {
		t.Error("mismatched secret: error = nil; want 401")
	} else if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("mismatched secret: error = %v; want 401 HTTPError", err)
	}

	if err := call("s3cret", ""); err == nil {
		t.Error("missing header: error = nil; want 401")
	}

	if err := call("", "anything"); err == nil {
		t.Error("unconfigured secret: error = nil; want 500")
	} else if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("unconfigured secret: error = %v; want 500 HTTPError", err)
	}
}
