package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brightharbor/storefront/docs"
	"github.com/brightharbor/storefront/internal/app/api/handlers"
	mw "github.com/brightharbor/storefront/internal/app/api/middleware"
	checkoutsvc "github.com/brightharbor/storefront/internal/app/service/checkout"
	contactsvc "github.com/brightharbor/storefront/internal/app/service/contact"
	"github.com/brightharbor/storefront/internal/app/service/mailer"
	ordersvc "github.com/brightharbor/storefront/internal/app/service/order"
	"github.com/brightharbor/storefront/internal/app/service/statistics"
	wh "github.com/brightharbor/storefront/internal/app/service/webhook_handler"
	"github.com/brightharbor/storefront/internal/app/service/webhook_log"
	cfgpkg "github.com/brightharbor/storefront/pkg/config"
	metrics "github.com/brightharbor/storefront/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Trace middleware only; request logger & access log attach per group.
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	db *gorm.DB,
	webhooks *wh.Handler,
	checkouts *checkoutsvc.Service,
	contacts *contactsvc.Service,
	orders *ordersvc.Service,
	stats *statistics.Service,
	logs *webhook_log.Service,
	mail *mailer.Service,
) {
	// Prometheus metrics on a side listener
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, db)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	handlers.RegisterWebhookRoutes(apiV1.Group("/webhooks"), webhooks)
	handlers.RegisterContactRoutes(apiV1, contacts, mail, log)
	handlers.RegisterCheckoutRoutes(apiV1, checkouts, log)
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), orders, contacts, stats, logs, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
