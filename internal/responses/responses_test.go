package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
	"github.com/CloudNativeWorks/datalayer-license/internal/apierrors"
	"github.com/CloudNativeWorks/datalayer-license/internal/logger"
)

func TestWriteLicense(t *testing.T) {
	w := httptest.NewRecorder()
	WriteLicense(w, dlmlicense.Response{Success: true, Status: dlmlicense.StatusValid, Message: "License is valid."})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body dlmlicense.Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Success || body.Status != dlmlicense.StatusValid {
		t.Fatalf("unexpected payload %+v", body)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, apierrors.New(apierrors.CodeValidation, "Invalid or unknown plugin."))

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
	if body["message"] != "Invalid or unknown plugin." {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if _, ok := body["status"]; ok {
		t.Fatalf("validation errors carry no status, got %v", body["status"])
	}
}

func TestWriteErrorConfigurationHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, apierrors.New(apierrors.CodeConfiguration, "variant id missing"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body dlmlicense.Response
	json.NewDecoder(w.Body).Decode(&body)
	if body.Message != "Plugin configuration error. Please contact support." {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Status != "" {
		t.Fatalf("configuration errors carry no status, got %q", body.Status)
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	w := httptest.NewRecorder()
	WriteError(context.Background(), logg, w, errors.New("dial tcp 10.0.0.3:5432: secret detail"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body dlmlicense.Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Status != dlmlicense.StatusError {
		t.Fatalf("expected status error, got %q", body.Status)
	}
	if body.Message != "An error occurred while processing your request." {
		t.Fatalf("internal details leaked: %q", body.Message)
	}
	if !bytes.Contains(buf.Bytes(), []byte("secret detail")) {
		t.Fatalf("expected cause to be logged, got %s", buf.String())
	}
}
