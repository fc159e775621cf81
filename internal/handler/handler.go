package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/internal/service"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/middleware"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

// Services bundles the service layer the HTTP handlers call into.
type Services struct {
	Users         service.UserService
	Cleaners      service.CleanerService
	Bookings      service.BookingService
	Reviews       service.ReviewService
	Subscriptions service.SubscriptionService
	Support       service.SupportService
	Chats         service.ChatService
	Admin         service.AdminService
}

// Handler handles HTTP requests for the marketplace API.
type Handler struct {
	svc            Services
	authMiddleware *middleware.AuthMiddleware
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services, authMiddleware *middleware.AuthMiddleware, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:            svc,
		authMiddleware: authMiddleware,
		maxUploadBytes: maxUploadBytes,
	}
}

const (
	adminSuper     = string(domain.AdminRoleSuper)
	adminSupport   = string(domain.AdminRoleSupport)
	adminModerator = string(domain.AdminRoleModerator)
)

// RegisterRoutes registers all routes under /api.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	requireAuth := h.authMiddleware.RequireAuth()

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/logout", requireAuth, h.Logout)
		auth.GET("/me", requireAuth, h.GetMe)
	}

	users := api.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateMe)
		users.PUT("/me/password", h.ChangePassword)
		users.POST("/me/avatar", h.UploadAvatar)
		users.DELETE("/me", h.DeleteMe)
		users.GET("/:id", h.GetUser)
	}

	cleaners := api.Group("/cleaners")
	{
		cleaners.GET("", h.ListCleaners)
		cleaners.PUT("/me/profile", requireAuth, middleware.RequireRole(string(domain.RoleCleaner)), h.UpdateCleanerProfile)
		cleaners.GET("/:id", h.GetCleaner)
		cleaners.GET("/:id/reviews", h.ListCleanerReviews)
	}

	bookings := api.Group("/bookings")
	bookings.Use(requireAuth)
	{
		bookings.POST("", middleware.RequireRole(string(domain.RoleClient)), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.PATCH("/:id/status", h.UpdateBookingStatus)
	}

	reviews := api.Group("/reviews")
	{
		reviews.POST("", requireAuth, middleware.RequireRole(string(domain.RoleClient)), h.CreateReview)
		reviews.GET("/:id", h.GetReview)
	}

	subs := api.Group("/subscriptions")
	subs.Use(requireAuth)
	{
		subs.POST("", middleware.RequireRole(string(domain.RoleClient)), h.CreateSubscription)
		subs.GET("", h.ListSubscriptions)
		subs.GET("/:id", h.GetSubscription)
		subs.PATCH("/:id", h.UpdateSubscription)
	}

	support := api.Group("/support/tickets")
	support.Use(requireAuth)
	{
		support.POST("", h.CreateTicket)
		support.GET("", h.ListMyTickets)
		support.GET("/:id", h.GetTicket)
	}

	chats := api.Group("/chats")
	chats.Use(requireAuth)
	{
		chats.POST("", h.OpenChat)
		chats.GET("", h.ListChats)
		chats.GET("/:id/messages", h.ListMessages)
		chats.POST("/:id/messages", h.SendMessage)
		chats.PUT("/:id/read", h.MarkChatRead)
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/stats", h.AdminStats)
		admin.GET("/users", h.AdminListUsers)
		admin.PATCH("/users/:id", middleware.RequireAdmin(adminModerator), h.AdminUpdateUser)
		admin.DELETE("/users/:id", middleware.RequireAdmin(adminSuper), h.AdminDeleteUser)
		admin.GET("/bookings", h.AdminListBookings)
		admin.DELETE("/reviews/:id", middleware.RequireAdmin(adminModerator), h.AdminDeleteReview)
		admin.GET("/support/tickets", middleware.RequireAdmin(adminSupport), h.AdminListTickets)
		admin.PATCH("/support/tickets/:id", middleware.RequireAdmin(adminSupport), h.AdminUpdateTicket)
		admin.POST("/admins", middleware.RequireAdmin(adminSuper), h.AdminCreateAdmin)
	}
}

// actor builds the authenticated caller from the session set by the auth middleware.
func actor(c *gin.Context) service.Actor {
	return service.Actor{
		ID:        middleware.GetUserID(c),
		Role:      domain.Role(middleware.GetRole(c)),
		IsAdmin:   middleware.IsAdmin(c),
		AdminRole: domain.AdminRole(middleware.GetAdminRole(c)),
	}
}

// bindJSON binds the request body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("invalid request body")
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

// bindQuery binds query parameters, answering 400 on failure.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("invalid query parameters")
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

// handleError maps service and repository errors to HTTP responses.
// Unknown errors are logged and answered with a generic 500 carrying fallback.
func handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, err.Error())

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrAccountSuspended):
		response.Forbidden(c, err.Error())

	case errors.Is(err, service.ErrCleanerNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, notFoundMessage(err))

	case errors.Is(err, repository.ErrEmailExists):
		response.Conflict(c, "email already exists")
	case errors.Is(err, repository.ErrReviewExists),
		errors.Is(err, repository.ErrSubscriptionExists):
		response.Conflict(c, strings.TrimSuffix(err.Error(), ": "+repository.ErrDuplicate.Error()))
	case errors.Is(err, repository.ErrDuplicate):
		response.Conflict(c, "resource already exists")
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrBookingNotEditable),
		errors.Is(err, service.ErrBookingNotCompleted):
		response.Conflict(c, err.Error())

	case errors.Is(err, service.ErrFileTooLarge):
		response.PayloadTooLarge(c, err.Error())
	case errors.Is(err, service.ErrUnsupportedMedia):
		response.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error())

	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrInvalidAssignee),
		errors.Is(err, service.ErrInvalidParticipants),
		errors.Is(err, service.ErrInvalidMessage),
		errors.Is(err, service.ErrCannotModifySelf):
		response.BadRequest(c, err.Error())

	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldRoute, c.FullPath()).Msg(fallback)
		response.InternalError(c, fallback)
	}
}

// notFoundMessage turns "booking: record not found" into "booking not found".
func notFoundMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ":"); i > 0 {
		return msg[:i] + " not found"
	}
	return "not found"
}

func page(c *gin.Context, items interface{}, total int64, p domain.Pagination) {
	p.Normalize()
	response.Success(c, response.NewPage(items, total, p.Page, p.PageSize))
}
