package api

import (
	"policyhub/docs"
	"policyhub/internal/api/handlers"
	"policyhub/pkg/auth"
	"policyhub/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// Handlers bundles everything SetupRouter mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Assistant *handlers.AssistantHandler
	Knowledge *handlers.KnowledgeHandler
	Chat      *handlers.ChatHandler
	Search    *handlers.SearchHandler
	Question  *handlers.QuestionHandler
	Admin     *handlers.AdminHandler
}

func SetupRouter(h *Handlers, jwtManager *auth.JWTManager, uploadDir string, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	if uploadDir != "" {
		app.Static("/uploads", uploadDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authRequired := middleware.AuthMiddleware(jwtManager, appLogger)

	// Frontend surface: auth plus the end-user chat and search flows.
	frontend := app.Group("/api/frontend")

	authGroup := frontend.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	frontend.Get("/me", authRequired, h.Auth.Me)
	frontend.Get("/assistants", authRequired, h.Assistant.ListVisible)

	conversations := frontend.Group("/conversations", authRequired)
	conversations.Post("", h.Chat.CreateConversation)
	conversations.Get("", h.Chat.ListConversations)
	conversations.Delete("/:cid", h.Chat.DeleteConversation)
	conversations.Post("/:cid/messages", h.Chat.SendMessage)
	conversations.Get("/:cid/messages", h.Chat.ListMessages)

	frontend.Post("/search/policies", authRequired, h.Search.SearchPolicies)

	// Builder surface: assistants, knowledge bases and documents.
	v1 := app.Group("/api/v1", authRequired)

	assistants := v1.Group("/assistants")
	assistants.Post("", h.Assistant.Create)
	assistants.Get("", h.Assistant.List)
	assistants.Get("/:id", h.Assistant.Get)
	assistants.Put("/:id", h.Assistant.Update)
	assistants.Delete("/:id", h.Assistant.Delete)
	assistants.Post("/:id/knowledge-bases", h.Assistant.LinkKnowledgeBase)
	assistants.Delete("/:id/knowledge-bases/:kbID", h.Assistant.UnlinkKnowledgeBase)
	assistants.Post("/:id/questions", h.Question.Create)
	assistants.Get("/:id/questions", h.Question.List)

	v1.Put("/questions/:qid", h.Question.Update)
	v1.Delete("/questions/:qid", h.Question.Delete)

	knowledgeBases := v1.Group("/knowledge-bases")
	knowledgeBases.Post("", h.Knowledge.Create)
	knowledgeBases.Get("", h.Knowledge.List)
	knowledgeBases.Get("/:id", h.Knowledge.Get)
	knowledgeBases.Put("/:id", h.Knowledge.Update)
	knowledgeBases.Delete("/:id", h.Knowledge.Delete)
	knowledgeBases.Post("/:id/search", h.Knowledge.Search)
	knowledgeBases.Post("/:id/documents", h.Knowledge.UploadDocument)
	knowledgeBases.Get("/:id/documents", h.Knowledge.ListDocuments)

	v1.Get("/documents/:id", h.Knowledge.GetDocument)
	v1.Delete("/documents/:id", h.Knowledge.DeleteDocument)

	// Admin surface.
	admin := app.Group("/api/admin", authRequired, middleware.AdminRequired(appLogger))

	users := admin.Group("/users")
	users.Get("", h.Admin.ListUsers)
	users.Put("/:id/role", h.Admin.UpdateUserRole)
	users.Delete("/:id", h.Admin.DeleteUser)

	providers := admin.Group("/model-providers")
	providers.Post("", h.Admin.CreateProvider)
	providers.Get("", h.Admin.ListProviders)
	providers.Get("/:id", h.Admin.GetProvider)
	providers.Put("/:id", h.Admin.UpdateProvider)
	providers.Delete("/:id", h.Admin.DeleteProvider)

	mcp := admin.Group("/mcp-services")
	mcp.Post("", h.Admin.CreateMCPService)
	mcp.Get("", h.Admin.ListMCPServices)
	mcp.Get("/:id", h.Admin.GetMCPService)
	mcp.Put("/:id", h.Admin.UpdateMCPService)
	mcp.Delete("/:id", h.Admin.DeleteMCPService)
	mcp.Post("/:id/ping", h.Admin.PingMCPService)

	portals := admin.Group("/portals")
	portals.Post("", h.Admin.CreatePortal)
	portals.Get("", h.Admin.ListPortals)
	portals.Get("/:id", h.Admin.GetPortal)
	portals.Put("/:id", h.Admin.UpdatePortal)
	portals.Delete("/:id", h.Admin.DeletePortal)

	permissions := admin.Group("/permissions")
	permissions.Post("", h.Admin.GrantPermission)
	permissions.Get("", h.Admin.ListPermissions)
	permissions.Delete("", h.Admin.RevokePermission)

	system := admin.Group("/system")
	system.Get("/config", h.Admin.SystemConfig)
	system.Get("/health", h.Admin.SystemHealth)

	return app
}
