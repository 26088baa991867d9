package apierrors

import (
	"net/http"
	"testing"
)

func TestRegistry_CoreCodesRegistered(t *testing.T) {
	// Core codes should be registered via init()
	codes := Registry.All()
	if len(codes) == 0 {
		t.Fatal("No codes registered")
	}

	// Check a few core codes exist
	mustExist := []string{
		CodeUnauthorized,
		CodeForbidden,
		CodeNotFound,
		CodeInvalidRequest,
		CodeInternalError,
		CodeInvalidCredentials,
		CodeSessionInvalid,
		CodeMailConnectionFailed,
	}

	for _, code := range mustExist {
		if _, ok := Registry.Get(code); !ok {
			t.Errorf("Core code %q not registered", code)
		}
	}
}

func TestRegistry_Namespacing(t *testing.T) {
	// All core codes should be in "core" namespace
	coreCodes := Registry.ByNamespace("core")
	if len(coreCodes) == 0 {
		t.Fatal("No codes in 'core' namespace")
	}
	for _, code := range coreCodes {
		if len(code.Code) < 5 || code.Code[:5] != "core:" {
			t.Errorf("Code %q in core namespace lacks core: prefix", code.Code)
		}
	}

	mailCodes := Registry.ByNamespace("mail")
	if len(mailCodes) != 2 {
		t.Fatalf("Expected 2 mail codes, got %d", len(mailCodes))
	}
}

func TestRegistry_HTTPStatuses(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeAccountInactive, http.StatusUnauthorized},
		{CodeSessionInvalid, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternalError, http.StatusInternalServerError},
		{CodeUpstreamUnavailable, http.StatusInternalServerError},
		{CodeMailConnectionFailed, http.StatusInternalServerError},
		{CodeMailAuthFailed, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if got := Registry.HTTPStatus(tt.code); got != tt.status {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.status)
		}
	}
}

func TestRegistry_UnknownCodeDefaults(t *testing.T) {
	if got := Registry.HTTPStatus("core:no_such_code"); got != http.StatusInternalServerError {
		t.Errorf("Unknown code status = %d, want 500", got)
	}
	if got := Registry.Message("core:no_such_code"); got != "core:no_such_code" {
		t.Errorf("Unknown code message = %q, want the code itself", got)
	}
}
