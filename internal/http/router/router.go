package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/freelance-marketplace/internal/config"
	"github.com/ignatzorin/freelance-marketplace/internal/http/middleware"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/handler"
)

// Handlers собирает все HTTP обработчики приложения.
type Handlers struct {
	Project    *handler.ProjectHandler
	Bid        *handler.BidHandler
	Contract   *handler.ContractHandler
	Payment    *handler.PaymentHandler
	Message    *handler.MessageHandler
	Attachment *handler.AttachmentHandler
	WS         *handler.WSHandler
	Health     *handler.HealthHandler
}

func SetupRouter(cfg *config.Config, tokens middleware.TokenParser, limiterStore limiter.Store, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/files", http.Dir(cfg.AttachmentsPath))

	api := r.Group("/api")
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	public := api.Group("/")
	{
		public.GET("/projects", h.Project.ListProjects)
		public.GET("/projects/:id", middleware.UUIDValidator("id"), h.Project.GetProject)
		public.GET("/projects/:id/bids", middleware.UUIDValidator("id"), h.Bid.ListProjectBids)
		public.GET("/users/:id/projects", middleware.UUIDValidator("id"), h.Project.ListUserProjects)
		public.GET("/users/:id/bids", middleware.UUIDValidator("id"), h.Bid.ListFreelancerBids)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	protected.Use(middleware.RateLimitMiddleware(limiterStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		protected.POST("/projects", h.Project.CreateProject)
		protected.PUT("/projects/:id", middleware.UUIDValidator("id"), h.Project.UpdateProject)
		protected.DELETE("/projects/:id", middleware.UUIDValidator("id"), h.Project.DeleteProject)

		protected.POST("/bids", h.Bid.PlaceBid)
		protected.PUT("/bids/:id/accept", middleware.UUIDValidator("id"), h.Bid.AcceptBid)
		protected.PUT("/bids/:id/reject", middleware.UUIDValidator("id"), h.Bid.RejectBid)

		protected.GET("/contracts", h.Contract.ListMyContracts)
		protected.GET("/contracts/:id", middleware.UUIDValidator("id"), h.Contract.GetContract)
		protected.PUT("/contracts/:id/milestones/:milestoneId", middleware.UUIDValidator("id", "milestoneId"), h.Contract.UpdateMilestone)
		protected.PUT("/contracts/:id/complete", middleware.UUIDValidator("id"), h.Contract.CompleteContract)

		protected.POST("/payments/intents", h.Payment.CreateIntent)
		protected.POST("/payments/confirm", h.Payment.ConfirmPayment)

		protected.GET("/projects/:id/messages", middleware.UUIDValidator("id"), h.Message.ListMessages)
		protected.POST("/messages", h.Message.SendMessage)
		protected.PUT("/messages/:id/read", middleware.UUIDValidator("id"), h.Message.MarkRead)

		protected.POST("/attachments", h.Attachment.Upload)

		protected.GET("/ws", h.WS.Handle)
	}

	return r
}
