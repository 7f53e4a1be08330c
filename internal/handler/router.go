package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/handler/chat"
	"github.com/portfolio-chat/backend/internal/handler/profile"
	"github.com/portfolio-chat/backend/internal/handler/userstory"
	"github.com/portfolio-chat/backend/internal/middleware"
	chatModel "github.com/portfolio-chat/backend/internal/model/chat"
	"github.com/portfolio-chat/backend/internal/model/knowledge"
	profileModel "github.com/portfolio-chat/backend/internal/model/profile"
	chatService "github.com/portfolio-chat/backend/internal/service/chat"
	userstoryService "github.com/portfolio-chat/backend/internal/service/userstory"
	"github.com/portfolio-chat/backend/pkg/utils"
)

// MaxBodyBytes 请求体上限
const MaxBodyBytes = 10 << 20

const errEndpointNotFound = "Endpoint not found"

// securityHeaders 对应 helmet 的默认响应头
var securityHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'self';base-uri 'self';frame-ancestors 'self';object-src 'none'"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
	{"Referrer-Policy", "no-referrer"},
	{"Strict-Transport-Security", "max-age=15552000; includeSubDomains"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-DNS-Prefetch-Control", "off"},
	{"X-Frame-Options", "SAMEORIGIN"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
	{"X-XSS-Protection", "0"},
}

// Dependencies 路由依赖的服务
type Dependencies struct {
	Owner          profileModel.Profile
	Knowledge      *knowledge.Base
	Chat           *chatService.Service
	UserStories    *userstoryService.Service
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	// TrustProxy 部署在反向代理之后时开启，限流才按转发头部识别客户端
	TrustProxy bool
	Logger     *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if deps.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.CORS(deps.AllowedOrigins))
	for _, header := range securityHeaders {
		r.Use(chimiddleware.SetHeader(header[0], header[1]))
	}
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.RequestSize(MaxBodyBytes))

	// 未匹配的路径和方法统一返回 404，需在挂载子路由前设置
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	chatHandler := chat.New(deps.Chat, deps.Logger)
	profileHandler := profile.New(deps.Owner, deps.Knowledge)
	userstoryHandler := userstory.New(deps.UserStories, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		if deps.RateLimiter != nil {
			api.Use(deps.RateLimiter.Middleware)
		}

		api.Get("/health", handleHealth)

		chatHandler.RegisterRoutes(api)
		profileHandler.RegisterRoutes(api)
		userstoryHandler.RegisterRoutes(api)
	})

	return r
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Timestamp: chatModel.FormatTimestamp(time.Now()),
		Message:   "Chat API is running",
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	utils.RespondError(w, http.StatusNotFound, errEndpointNotFound)
}
