package routers

import (
	"coursemaster/config"
	adminController "coursemaster/controllers/admin"
	analyticsController "coursemaster/controllers/analytics"
	assignmentController "coursemaster/controllers/assignment"
	authController "coursemaster/controllers/auth"
	batchController "coursemaster/controllers/batch"
	catalogController "coursemaster/controllers/catalog"
	enrollmentController "coursemaster/controllers/enrollment"
	paymentController "coursemaster/controllers/payment"
	quizController "coursemaster/controllers/quiz"
	"coursemaster/logger"
	"coursemaster/middleware"
	"coursemaster/payment"
	adminRoutes "coursemaster/routers/adminRoutes"
	analyticsRoutes "coursemaster/routers/analyticsRoutes"
	assignmentRoutes "coursemaster/routers/assignmentRoutes"
	authRoutes "coursemaster/routers/authRoutes"
	batchRoutes "coursemaster/routers/batchRoutes"
	courseRoutes "coursemaster/routers/courseRoutes"
	enrollmentRoutes "coursemaster/routers/enrollmentRoutes"
	paymentRoutes "coursemaster/routers/paymentRoutes"
	quizRoutes "coursemaster/routers/quizRoutes"
	"coursemaster/services"
	"coursemaster/utils"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators the HTTP app is built from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *logger.Logger
	Notifier utils.Notifier
	Provider payment.Provider
	// AccessLog enables the per-request log line
	AccessLog bool
}

// Server is the wired application
type Server struct {
	App      *fiber.App
	Payments *services.PaymentService
}

// NewApp builds every service and controller and registers all routes
func NewApp(deps Deps) *Server {
	cfg := deps.Config

	users := services.NewUserService(deps.DB, deps.Log, deps.Notifier, cfg.SaltRound)
	courses := services.NewCourseService(deps.DB, deps.Log)
	batches := services.NewBatchService(deps.DB, deps.Log)
	enrollments := services.NewEnrollmentService(deps.DB, deps.Log, deps.Notifier)
	assignments := services.NewAssignmentService(deps.DB, deps.Log, enrollments)
	quizzes := services.NewQuizService(deps.DB, deps.Log, enrollments)
	payments := services.NewPaymentService(deps.DB, deps.Log, deps.Provider, enrollments, deps.Notifier, cfg.PaymentCurrency)
	analytics := services.NewAnalyticsService(deps.DB, deps.Log)

	app := fiber.New(fiber.Config{
		AppName:      "CourseMaster",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: middleware.ErrorHandler(deps.Log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: cfg.CorsOrigins != "*",
	}))
	if deps.AccessLog {
		app.Use(fiberLogger.New(fiberLogger.Config{
			Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", fiber.Map{"time": time.Now().UTC()})
	})

	api := app.Group("/api")
	jwt := middleware.JWTMiddleware(cfg.JWTKey, users)

	quizCtl := quizController.NewQuizController(quizzes)
	enrollmentCtl := enrollmentController.NewEnrollmentController(enrollments)

	authRoutes.SetupAuthRoutes(api, jwt, authController.NewAuthController(users, cfg))
	courseRoutes.SetupCourseRoutes(api, jwt, catalogController.NewCatalogController(courses), quizCtl)
	enrollmentRoutes.SetupEnrollmentRoutes(api, jwt, enrollmentCtl)
	batchRoutes.SetupBatchRoutes(api, jwt, batchController.NewBatchController(batches), enrollmentCtl)
	assignmentRoutes.SetupAssignmentRoutes(api, jwt, assignmentController.NewAssignmentController(assignments))
	quizRoutes.SetupQuizRoutes(api, jwt, quizCtl)
	paymentRoutes.SetupPaymentRoutes(api, jwt, paymentController.NewPaymentController(payments, users))
	adminRoutes.SetupAdminRoutes(api, jwt, adminController.NewAdminController(courses, users, analytics))
	analyticsRoutes.SetupAnalyticsRoutes(api, jwt, analyticsController.NewAnalyticsController(analytics))

	return &Server{App: app, Payments: payments}
}
