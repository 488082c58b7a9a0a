package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fairyhunter13/vending-machine-simulator/internal/admin"
	"github.com/fairyhunter13/vending-machine-simulator/internal/catalog"
	"github.com/fairyhunter13/vending-machine-simulator/internal/config"
	httpopenapi "github.com/fairyhunter13/vending-machine-simulator/internal/http/openapi"
	"github.com/fairyhunter13/vending-machine-simulator/internal/machine"
	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
)

var errUnsupportedMediaType = errors.New("expected application/json")

// App serves one machine. The engine is single-session, so every call into it
// and into an admin session happens under mu.
type App struct {
	Cfg    config.Config
	Engine *machine.Engine
	Auth   *admin.Authenticator
	Tokens *TokenIssuer

	mu       sync.Mutex
	sessions map[string]*admin.Session
	closing  bool
	done     chan struct{}
	started  time.Time
}

type coinRequest struct {
	Value *int64 `json:"value"`
}

type purchaseRequest struct {
	ProductID string `json:"product_id"`
}

type finalizeRequest struct {
	Cancel bool `json:"cancel"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type addProductRequest struct {
	ID    int          `json:"id"`
	Name  string       `json:"name"`
	Price model.Amount `json:"price"`
	Stock int          `json:"stock"`
}

type restockRequest struct {
	Amount int `json:"amount"`
}

type settlementResponse struct {
	machine.Settlement
	Coins []model.CoinCount `json:"coins"`
}

type collectionResponse struct {
	admin.Collection
	Coins []model.CoinCount `json:"coins"`
}

func NewApp(cfg config.Config, e *machine.Engine, auth *admin.Authenticator, tokens *TokenIssuer) *App {
	return &App{
		Cfg:      cfg,
		Engine:   e,
		Auth:     auth,
		Tokens:   tokens,
		sessions: make(map[string]*admin.Session),
		done:     make(chan struct{}),
		started:  time.Now(),
	}
}

// Done is closed once an admin collects the funds and the machine leaves
// service.
func (a *App) Done() <-chan struct{} { return a.done }

// StartShutdown makes the terminal refuse further machine operations.
func (a *App) StartShutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeLocked()
}

func (a *App) closeLocked() {
	if a.closing {
		return
	}
	a.closing = true
	close(a.done)
}

// lock takes the machine lock unless the machine is out of service.
func (a *App) lock(c *gin.Context) bool {
	a.mu.Lock()
	if a.closing {
		a.mu.Unlock()
		WriteJSONError(c, http.StatusServiceUnavailable, "out_of_service", "")
		return false
	}
	return true
}

func (a *App) bind(c *gin.Context, v any) bool {
	if err := decodeJSON(c, v); err != nil {
		if errors.Is(err, errUnsupportedMediaType) {
			WriteJSONError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
			return false
		}
		WriteJSONError(c, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) listProductsHandler(c *gin.Context) {
	if !a.lock(c) {
		return
	}
	l := a.Engine.ListProducts()
	a.mu.Unlock()
	c.JSON(http.StatusOK, l)
}

func (a *App) getProductHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		WriteJSONError(c, http.StatusBadRequest, "invalid_id_format", "")
		return
	}
	if !a.lock(c) {
		return
	}
	p, ok := a.Engine.State().Products.FindByID(id)
	a.mu.Unlock()
	if !ok {
		WriteJSONError(c, http.StatusNotFound, "not_found", "")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *App) insertCoinHandler(c *gin.Context) {
	var req coinRequest
	if !a.bind(c, &req) {
		return
	}
	if req.Value == nil {
		WriteJSONError(c, http.StatusBadRequest, "validation_error", "value is required")
		return
	}
	if !a.lock(c) {
		return
	}
	bal, err := a.Engine.InsertCoin(model.Amount(*req.Value))
	a.mu.Unlock()
	if err != nil {
		WriteJSONError(c, http.StatusUnprocessableEntity, "invalid_denomination", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": bal})
}

var purchaseStatus = map[machine.PurchaseKind]int{
	machine.Purchased:          http.StatusOK,
	machine.InsufficientFunds:  http.StatusPaymentRequired,
	machine.OutOfStock:         http.StatusConflict,
	machine.ProductUnavailable: http.StatusNotFound,
	machine.InvalidIDFormat:    http.StatusBadRequest,
}

func (a *App) purchaseHandler(c *gin.Context) {
	var req purchaseRequest
	if !a.bind(c, &req) {
		return
	}
	if !a.lock(c) {
		return
	}
	r := a.Engine.AttemptPurchase(req.ProductID)
	a.mu.Unlock()
	c.JSON(purchaseStatus[r.Kind], r)
}

func (a *App) finalizeHandler(c *gin.Context) {
	var req finalizeRequest
	if !a.bind(c, &req) {
		return
	}
	if !a.lock(c) {
		return
	}
	s, err := a.Engine.FinalizeVisit(req.Cancel)
	a.mu.Unlock()
	if err != nil {
		obs.Logger.Error("finalize_failed", zap.Error(err), zap.String("request_id", RequestIDFromContext(c)))
		WriteJSONError(c, http.StatusInternalServerError, "internal_error", "")
		return
	}
	c.JSON(http.StatusOK, settlementResponse{Settlement: s, Coins: s.Breakdown.Entries()})
}

func (a *App) loginHandler(c *gin.Context) {
	var req loginRequest
	if !a.bind(c, &req) {
		return
	}
	if !a.lock(c) {
		return
	}
	s, err := a.Auth.Enter(req.Password, a.Engine.State())
	if err != nil {
		a.mu.Unlock()
		WriteJSONError(c, http.StatusUnauthorized, "authentication_failed", "")
		return
	}
	a.sessions[s.ID()] = s
	a.mu.Unlock()
	token, err := a.Tokens.Issue(s.ID())
	if err != nil {
		obs.Logger.Error("token_issue_failed", zap.Error(err))
		WriteJSONError(c, http.StatusInternalServerError, "internal_error", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "session_id": s.ID()})
}

func adminSession(c *gin.Context) *admin.Session {
	s, _ := c.MustGet(ctxKeyAdminSession).(*admin.Session)
	return s
}

func (a *App) collectHandler(c *gin.Context) {
	if !a.lock(c) {
		return
	}
	col, err := adminSession(c).CollectFunds()
	if err == nil && col.Terminate {
		a.closeLocked()
	}
	a.mu.Unlock()
	if err != nil {
		obs.Logger.Error("collect_failed", zap.Error(err))
		WriteJSONError(c, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if col.Terminate {
		obs.Logger.Info("machine_out_of_service", zap.Int64("collected", int64(col.Amount)))
	}
	c.JSON(http.StatusOK, collectionResponse{Collection: col, Coins: col.Breakdown.Entries()})
}

func catalogErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrDuplicateID):
		return http.StatusConflict, "duplicate_id"
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, admin.ErrSessionClosed):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusBadRequest, "validation_error"
	}
}

func (a *App) addProductHandler(c *gin.Context) {
	var req addProductRequest
	if !a.bind(c, &req) {
		return
	}
	if !a.lock(c) {
		return
	}
	err := adminSession(c).AddProduct(req.ID, req.Name, req.Price, req.Stock)
	var p model.Product
	if err == nil {
		p, _ = a.Engine.State().Products.FindByID(req.ID)
	}
	a.mu.Unlock()
	if err != nil {
		status, msg := catalogErrorStatus(err)
		WriteJSONError(c, status, msg, err.Error())
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (a *App) restockHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		WriteJSONError(c, http.StatusBadRequest, "invalid_id_format", "")
		return
	}
	var req restockRequest
	if !a.bind(c, &req) {
		return
	}
	if !a.lock(c) {
		return
	}
	n, err := adminSession(c).RestockExisting(id, req.Amount)
	a.mu.Unlock()
	if err != nil {
		status, msg := catalogErrorStatus(err)
		WriteJSONError(c, status, msg, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "stock": n})
}

func (a *App) exitHandler(c *gin.Context) {
	s := adminSession(c)
	a.mu.Lock()
	s.Exit()
	delete(a.sessions, s.ID())
	a.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (a *App) healthHandler(c *gin.Context) {
	a.mu.Lock()
	closing := a.closing
	a.mu.Unlock()
	status := "ok"
	if closing {
		status = "out_of_service"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "uptime_sec": time.Since(a.started).Seconds()})
}

func (a *App) openapiHandler(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", httpopenapi.YAML)
}

func (a *App) docsHandler(c *gin.Context) {
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Vending Machine API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
