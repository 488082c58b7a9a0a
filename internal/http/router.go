package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// NewRouter registers HTTP routes and returns the engine with middleware.
func NewRouter(app *App) http.Handler {
	gin.SetMode(app.Cfg.GinMode)
	binding.EnableDecoderDisallowUnknownFields = true
	r := gin.New()
	r.Use(gin.Recovery(), WithRequestID(), WithLogging())

	cc := cors.DefaultConfig()
	if len(app.Cfg.CORSOrigins) > 0 {
		cc.AllowOrigins = app.Cfg.CORSOrigins
	} else {
		cc.AllowAllOrigins = true
	}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "X-Request-Id")
	cc.ExposeHeaders = []string{"X-Request-Id"}
	r.Use(cors.New(cc))

	r.GET("/healthz", app.healthHandler)
	r.GET("/openapi.yaml", app.openapiHandler)
	r.GET("/docs", app.docsHandler)

	r.GET("/products", app.listProductsHandler)
	r.GET("/products/:id", app.getProductHandler)
	r.POST("/coins", app.insertCoinHandler)
	r.POST("/purchase", app.purchaseHandler)
	r.POST("/finalize", app.finalizeHandler)

	r.POST("/admin/login", app.loginHandler)
	adm := r.Group("/admin", app.requireAdmin())
	{
		adm.POST("/collect", app.collectHandler)
		adm.POST("/products", app.addProductHandler)
		adm.POST("/products/:id/restock", app.restockHandler)
		adm.POST("/exit", app.exitHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		WriteJSONError(c, http.StatusNotFound, "not_found", "")
	})
	return r
}
