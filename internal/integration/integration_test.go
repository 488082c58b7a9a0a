package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/vending-machine-simulator/internal/bootstrap"
	"github.com/fairyhunter13/vending-machine-simulator/internal/config"
	httpapi "github.com/fairyhunter13/vending-machine-simulator/internal/http"
	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
)

func call(t *testing.T, h http.Handler, path, body, token string, v any) int {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if v != nil {
		if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return w.Code
}

// A seeded catalog served over HTTP: buy the last unit, restock it, then
// collect the revenue and watch the machine leave service.
func TestIntegration_SeededMachineLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	seed := "products:\n  - id: 1\n    name: Tea\n    price: 17\n    stock: 1\n"
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Load()
	cfg.GinMode = "test"
	cfg.CatalogFile = path
	cfg.AdminPassword = "pw"
	cfg.AdminPasswordHash = ""
	cfg.BcryptCost = bcrypt.MinCost

	m, err := bootstrap.New(cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	tokens, err := httpapi.NewTokenIssuer("", time.Minute)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	app := httpapi.NewApp(cfg, m.Engine, m.Auth, tokens)
	h := httpapi.NewRouter(app)

	for _, c := range []int{10, 5, 2} {
		if code := call(t, h, "/coins", fmt.Sprintf(`{"value":%d}`, c), "", nil); code != http.StatusOK {
			t.Fatalf("coin %d: %d", c, code)
		}
	}

	var pr struct {
		Result  string         `json:"result"`
		Product *model.Product `json:"product"`
		Balance int64          `json:"balance"`
	}
	if code := call(t, h, "/purchase", `{"product_id":"1"}`, "", &pr); code != http.StatusOK {
		t.Fatalf("purchase: %d %+v", code, pr)
	}
	if pr.Balance != 0 || pr.Product.Stock != 0 {
		t.Fatalf("unexpected purchase: %+v", pr)
	}

	call(t, h, "/coins", `{"value":10}`, "", nil)
	if code := call(t, h, "/purchase", `{"product_id":"1"}`, "", &pr); code != http.StatusConflict || pr.Result != "out_of_stock" {
		t.Fatalf("expected out_of_stock, got %d %+v", code, pr)
	}
	var st struct {
		Result string `json:"result"`
		Amount int64  `json:"amount"`
	}
	call(t, h, "/finalize", `{"cancel":true}`, "", &st)
	if st.Result != "refund" || st.Amount != 10 {
		t.Fatalf("unexpected settlement: %+v", st)
	}

	var lr struct {
		Token string `json:"token"`
	}
	if code := call(t, h, "/admin/login", `{"password":"pw"}`, "", &lr); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
	if code := call(t, h, "/admin/products/1/restock", `{"amount":4}`, lr.Token, nil); code != http.StatusOK {
		t.Fatalf("restock: %d", code)
	}
	var col struct {
		Result    string            `json:"result"`
		Amount    int64             `json:"amount"`
		Terminate bool              `json:"terminate"`
		Coins     []model.CoinCount `json:"coins"`
	}
	if code := call(t, h, "/admin/collect", "", lr.Token, &col); code != http.StatusOK {
		t.Fatalf("collect: %d", code)
	}
	want := []model.CoinCount{{Denomination: 10, Count: 1}, {Denomination: 5, Count: 1}, {Denomination: 2, Count: 1}}
	if col.Amount != 17 || !col.Terminate || len(col.Coins) != len(want) {
		t.Fatalf("unexpected collection: %+v", col)
	}
	for i := range want {
		if col.Coins[i] != want[i] {
			t.Fatalf("breakdown[%d]: want %+v, got %+v", i, want[i], col.Coins[i])
		}
	}
	select {
	case <-app.Done():
	case <-time.After(time.Second):
		t.Fatalf("machine still in service")
	}
}
