package routers

import (
	"time"

	"github.com/haierkeys/knowledge-graph-service/internal/app"
	"github.com/haierkeys/knowledge-graph-service/internal/middleware"
	"github.com/haierkeys/knowledge-graph-service/internal/routers/api_router"
	"github.com/haierkeys/knowledge-graph-service/internal/routers/websocket_router"
	pkgapp "github.com/haierkeys/knowledge-graph-service/pkg/app"
	"github.com/haierkeys/knowledge-graph-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api",
		FillInterval: time.Second,
		Capacity:     100,
		Quantum:      100,
	},
)

// wsNotifier forwards service change events to every websocket
// connection of the owner
// wsNotifier 将服务层变更事件转发给所有者的全部 websocket 连接
type wsNotifier struct {
	wss *pkgapp.WebsocketServer
}

func (n *wsNotifier) Notify(ownerID string, action string, data any) {
	n.wss.BroadcastToOwner(ownerID, action, data)
}

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     true,                                 // 开启并行消息处理
			Recovery:            gws.Recovery,                         // 开启异常恢复
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:     8,
			ReadMaxPayloadSize:  1024 * 1024 * 8, // 设置最大读取缓冲区大小 8MB
			WriteMaxPayloadSize: 1024 * 1024 * 8, // 设置最大写入缓冲区大小 8MB
		},
		IsReturnSuccess: cfg.App.IsReturnSussess,
	})

	// 创建 WebSocket Handlers（注入 App Container）
	entityWSHandler := websocket_router.NewEntityWSHandler(appContainer)

	// 实体保存（正文落库 + 链接协调）
	wss.Use("EntityModify", entityWSHandler.EntityModify)
	// 实体删除
	wss.Use("EntityDelete", entityWSHandler.EntityDelete)
	// 单实体链接查询
	wss.Use("EntityLinks", entityWSHandler.EntityLinks)

	wss.OwnerDataSelectUse(entityWSHandler.OwnerInfo)

	// 服务层写操作完成后通过 websocket 广播给同一所有者的其他连接
	appContainer.SetNotifier(&wsNotifier{wss: wss})

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(gin.Logger())
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		entityHandler := api_router.NewEntityHandler(appContainer)
		linkHandler := api_router.NewLinkHandler(appContainer)
		suggestionHandler := api_router.NewSuggestionHandler(appContainer)
		graphHandler := api_router.NewGraphHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		// 健康检查（无需所有者标识）
		api.GET("/health", healthHandler.Check)

		// websocket 同步入口
		api.GET("/sync", wss.Run())

		owned := api.Group("", middleware.OwnerAuth())
		{
			owned.GET("/entity", entityHandler.Get)
			owned.POST("/entity", entityHandler.CreateOrUpdate)
			owned.DELETE("/entity", entityHandler.Delete)
			owned.GET("/entities", entityHandler.List)

			owned.GET("/entity/links", linkHandler.Links)
			owned.GET("/entity/resolve", linkHandler.Resolve)
			owned.POST("/entity/materialize", linkHandler.Materialize)

			owned.GET("/suggestions", suggestionHandler.Suggest)

			owned.GET("/graph", graphHandler.Projection)
			owned.POST("/graph/position", graphHandler.SavePosition)
			owned.DELETE("/graph/positions", graphHandler.ResetPositions)
		}
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
