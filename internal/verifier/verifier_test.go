package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got: %v", err)
	}
}

func TestVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != verifyPath {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("api_key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"valid": true,
			"button": 1,
			"interactor": {
				"fid": 777,
				"verified_accounts": ["0xABCD000000000000000000000000000000000001"]
			}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	result, err := client.Verify(context.Background(), json.RawMessage(`{"trustedData":{}}`))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !result.Valid || result.ButtonIndex != 1 || result.ActorID != 777 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ActorAddress != "0xabcd000000000000000000000000000000000001" {
		t.Fatalf("address not normalized: %s", result.ActorAddress)
	}
}

func TestVerifyInvalidInteraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid": false}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	result, err := client.Verify(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Valid || result.ActorAddress != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestVerifyGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if _, err := client.Verify(context.Background(), json.RawMessage(`{}`)); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got: %v", err)
	}
}
