package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-booking/config"
	"github.com/yeremiapane/table-booking/controllers"
	"github.com/yeremiapane/table-booking/hub"
	"github.com/yeremiapane/table-booking/middlewares"
	"github.com/yeremiapane/table-booking/services"
	"gorm.io/gorm"
)

// App is the wired service graph behind the HTTP API.
type App struct {
	Hub      *hub.Hub
	Bookings *services.BookingService
	Queries  *services.QueryService
	Tables   *services.TableService
	Users    *services.UserService
}

func NewApp(db *gorm.DB, cfg config.Config) *App {
	store := services.NewStore(db)
	h := hub.New()
	return &App{
		Hub:      h,
		Bookings: services.NewBookingService(store, services.NewResolver(cfg.ConflictPolicy()), cfg.Rules(), h),
		Queries:  services.NewQueryService(store, cfg.PageSize, cfg.Location),
		Tables:   services.NewTableService(store, h),
		Users:    services.NewUserService(store, h),
	}
}

func SetupRouter(db *gorm.DB, cfg config.Config) *gin.Engine {
	return NewRouter(NewApp(db, cfg), cfg)
}

func NewRouter(app *App, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	if cfg.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	}

	userCtrl := controllers.NewUserController(app.Users)
	bookingCtrl := controllers.NewBookingController(app.Bookings, app.Queries)
	staffCtrl := controllers.NewStaffController(app.Bookings, app.Queries)
	tableCtrl := controllers.NewTableController(app.Tables)
	hubCtrl := controllers.NewHubController(app.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	if cfg.RateLimitRPS > 0 {
		public.Use(middlewares.NewStrictRateLimiter().RateLimit())
	}
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	r.POST("/availability", bookingCtrl.CheckAvailability)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		auth.GET("/bookings", bookingCtrl.MyBookings)
		auth.POST("/bookings", bookingCtrl.CreateBooking)
		auth.GET("/bookings/:id", bookingCtrl.GetBooking)
		auth.PUT("/bookings/:id", bookingCtrl.EditBooking)
		auth.POST("/bookings/:id/cancel", bookingCtrl.CancelBooking)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware(), middlewares.StaffOnly())
	{
		staff.GET("/dashboard", staffCtrl.Dashboard)

		staff.GET("/bookings", staffCtrl.ListBookings)
		staff.POST("/bookings", staffCtrl.CreateBooking)
		staff.GET("/bookings/:id", staffCtrl.GetBooking)
		staff.PATCH("/bookings/:id", staffCtrl.UpdateStatus)

		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.POST("/tables", tableCtrl.CreateTable)
		staff.PUT("/tables/:id", tableCtrl.UpdateTable)
		staff.DELETE("/tables/:id", tableCtrl.DeleteTable)

		staff.DELETE("/users/:id", userCtrl.DeleteUser)
	}

	// Token comes in ?token= since browsers cannot set headers on upgrade.
	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware(), middlewares.StaffOnly())
	{
		ws.GET("", hubCtrl.Serve)
	}

	return r
}
