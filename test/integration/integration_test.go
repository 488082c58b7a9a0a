//go:build integration

// Package integration exercises a running vending-server. Start the server,
// then: go test -tags integration ./test/integration
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func adminPassword() string {
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		return v
	}
	return "admin"
}

func waitReady(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL() + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("service not ready")
}

func post(t *testing.T, path, body, token string) (*http.Response, map[string]any) {
	t.Helper()
	r, err := http.NewRequest(http.MethodPost, baseURL()+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// reset returns whatever a previous test left in the machine.
func reset(t *testing.T) {
	t.Helper()
	post(t, "/finalize", `{"cancel":true}`, "")
}

func TestIntegration_OpenAPIAndDocs(t *testing.T) {
	waitReady(t)
	for _, p := range []string{"/openapi.yaml", "/docs"} {
		resp, err := http.Get(baseURL() + p)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", p, resp.StatusCode)
		}
	}
}

func TestIntegration_InsertRefund(t *testing.T) {
	waitReady(t)
	reset(t)
	for _, v := range []int{10, 5, 2, 1} {
		resp, _ := post(t, "/coins", fmt.Sprintf(`{"value":%d}`, v), "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("coin %d: expected 200, got %d", v, resp.StatusCode)
		}
	}
	resp, out := post(t, "/finalize", `{"cancel":true}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if out["result"] != "refund" || out["amount"] != float64(18) {
		t.Fatalf("unexpected settlement: %v", out)
	}
}

func TestIntegration_RejectsBadCoin(t *testing.T) {
	waitReady(t)
	resp, _ := post(t, "/coins", `{"value":50}`, "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestIntegration_PurchaseWithChange(t *testing.T) {
	waitReady(t)
	reset(t)
	token := login(t)
	post(t, "/admin/products/1/restock", `{"amount":1}`, token)
	post(t, "/admin/exit", "", token)

	for i := 0; i < 6; i++ {
		post(t, "/coins", `{"value":10}`, "")
	}
	resp, out := post(t, "/purchase", `{"product_id":"1"}`, "")
	if resp.StatusCode != http.StatusOK || out["result"] != "purchased" {
		t.Fatalf("unexpected purchase %d: %v", resp.StatusCode, out)
	}
	_, out = post(t, "/finalize", `{"cancel":false}`, "")
	if out["result"] != "change" || out["amount"] != float64(10) {
		t.Fatalf("unexpected settlement: %v", out)
	}
}

func TestIntegration_AdminAuth(t *testing.T) {
	waitReady(t)
	resp, _ := post(t, "/admin/login", `{"password":"definitely-wrong"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	token := login(t)
	resp, _ = post(t, "/admin/exit", "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp, _ = post(t, "/admin/products/1/restock", `{"amount":1}`, token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after exit, got %d", resp.StatusCode)
	}
}

func login(t *testing.T) string {
	t.Helper()
	resp, out := post(t, "/admin/login", fmt.Sprintf(`{"password":%q}`, adminPassword()), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	tok, _ := out["token"].(string)
	if strings.TrimSpace(tok) == "" {
		t.Fatalf("empty token")
	}
	return tok
}
