package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/damoang/angple-plugins/internal/cms"
	"github.com/damoang/angple-plugins/internal/config"
	"github.com/damoang/angple-plugins/internal/database"
	"github.com/damoang/angple-plugins/internal/middleware"
	"github.com/damoang/angple-plugins/internal/plugin"
	pluginstoreHandler "github.com/damoang/angple-plugins/internal/pluginstore/handler"
	pluginstoreRepo "github.com/damoang/angple-plugins/internal/pluginstore/repository"
	pluginstoreSvc "github.com/damoang/angple-plugins/internal/pluginstore/service"
	"github.com/damoang/angple-plugins/internal/ws"
	pkgcache "github.com/damoang/angple-plugins/pkg/cache"
	"github.com/damoang/angple-plugins/pkg/jwt"
	pkglogger "github.com/damoang/angple-plugins/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// application 서버 구성 요소
type application struct {
	router  *gin.Engine
	manager *plugin.Manager
	bus     *plugin.EventBus
	hub     *ws.Hub
	cms     *cms.App
	mounted []plugin.MountedPlugin
}

// Close 이벤트 구독 해제 및 WebSocket 허브 종료
func (a *application) Close() {
	a.cms.Unsubscribe(a.bus)
	a.hub.Stop()
}

// newApplication 레지스트리/동기화/라우터 구성
// redisClient 가 nil 이면 이벤트는 프로세스 안에서만 전달되고 캐시는 사용하지 않는다.
func newApplication(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, reg *prometheus.Registry) (*application, error) {
	repo := pluginstoreRepo.NewPluginRepository(db)

	registry := plugin.NewRegistry(
		plugin.WithPointSublevels(cfg.Plugins.AllowPointSublevels),
		plugin.WithRegistryLogger(plugin.NewDefaultLogger("registry")),
	)

	bus := plugin.NewEventBus(plugin.NewDefaultLogger("eventbus"))
	emitters := plugin.Emitters{bus}
	if redisClient != nil {
		emitters = append(emitters, plugin.NewRedisEmitter(redisClient, cfg.Redis.Channel, plugin.NewDefaultLogger("redis-emitter")))
	}

	// 관리자 화면용 실시간 상태 전환 스트림
	hub := ws.NewHub(redisClient, cfg.Redis.Channel, plugin.NewDefaultLogger("ws"))
	go hub.Run()
	emitters = append(emitters, hub)

	manager := plugin.NewManager(registry, repo,
		plugin.WithEmitter(emitters),
		plugin.WithLogger(plugin.NewDefaultLogger("plugin")),
		plugin.WithMetrics(plugin.NewSyncMetrics(reg)),
	)

	cmsApp := cms.NewApp(manager, db, pkgcache.NewService(redisClient), plugin.NewDefaultLogger("cms"))
	if err := database.Migrate(repo, cmsApp); err != nil {
		hub.Stop()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	cmsApp.Subscribe(bus)

	// 시작 시 동기화
	if cfg.Plugins.AutoLoad {
		result, err := manager.Sync(plugin.SyncOptions{
			Module:        cfg.Plugins.Module,
			DeleteRemoved: cfg.Plugins.AutoRemove,
		})
		if err != nil {
			hub.Stop()
			return nil, fmt.Errorf("plugin synchronization failed: %w", err)
		}
		pkglogger.Info("Plugins synchronized at startup: points %+v, plugins %+v", result.Points, result.Plugins)
	} else {
		n := registry.Load(cfg.Plugins.Module)
		pkglogger.Info("Loaded %d declaration apps from module %s (auto_load disabled)", n, cfg.Plugins.Module)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	router.Use(middleware.NewHTTPMetrics(reg).Middleware())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "angple-plugins",
			"time":    time.Now().Unix(),
		})
	})

	// 관리자 API (JWT_SECRET 이 없으면 비활성)
	if cfg.JWT.Secret != "" {
		jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
		admin := router.Group("/api/admin/plugins")
		admin.Use(middleware.JWTAuth(jwtManager), middleware.RequireAdmin())
		pluginstoreHandler.NewPluginHandler(pluginstoreSvc.NewPluginService(manager, cfg.Plugins.Module)).RegisterRoutes(admin)
		admin.GET("/events/ws", ws.Handler(hub, cfg.Server.CORSOrigins))
	} else {
		pkglogger.Warn("JWT secret is not configured, admin plugin API is disabled")
	}

	cmsApp.RegisterAPI(router.Group("/api"))
	mounted, err := cmsApp.Mount(router)
	if err != nil {
		hub.Stop()
		return nil, fmt.Errorf("mount content routes: %w", err)
	}
	for _, m := range mounted {
		pkglogger.Info("Mounted content type %s at %s", m.Name, m.Path)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return &application{
		router:  router,
		manager: manager,
		bus:     bus,
		hub:     hub,
		cms:     cmsApp,
		mounted: mounted,
	}, nil
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "Location"},
		MaxAge:           12 * time.Hour,
	}
}
