package main

import (
	"log"
	"strings"

	"projetakip-backend/internal/auth"
	"projetakip-backend/internal/config"
	"projetakip-backend/internal/database"
	"projetakip-backend/internal/expenditure"
	"projetakip-backend/internal/project"
	"projetakip-backend/internal/task"
	"projetakip-backend/internal/taskexpenditure"
	"projetakip-backend/internal/timeentry"
	"projetakip-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: validation.ErrorHandler,
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/register", auth.RegisterHandler(cfg))
	api.Post("/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Post("/logout", auth.LogoutHandler())
	protected.Get("/user", auth.MeHandler())
	protected.Get("/users", auth.ListUsersHandler())

	// Projeler
	protected.Get("/projects", project.ListProjectsHandler())
	protected.Post("/projects", project.CreateProjectHandler())
	protected.Get("/projects/:id", project.GetProjectHandler())
	protected.Put("/projects/:id", project.UpdateProjectHandler())
	protected.Patch("/projects/:id", project.UpdateProjectHandler())
	protected.Delete("/projects/:id", project.DeleteProjectHandler())
	protected.Get("/projects/:id/statistics", project.StatisticsHandler())
	protected.Get("/projects/:id/task-expenditure-rollup", project.TaskExpenditureRollupHandler())
	protected.Get("/projects/:id/expenditures", expenditure.ListExpendituresByProjectHandler())
	protected.Get("/projects/:id/expenditures/export", project.ExportExpendituresHandler())
	protected.Get("/projects/:id/tasks", task.ListTasksByProjectHandler())
	protected.Post("/projects/:id/tasks", task.CreateTaskForProjectHandler())

	// Görevler
	protected.Get("/tasks", task.ListTasksHandler())
	protected.Post("/tasks", task.CreateTaskHandler())
	protected.Get("/tasks/:id", task.GetTaskHandler())
	protected.Put("/tasks/:id", task.UpdateTaskHandler())
	protected.Patch("/tasks/:id", task.UpdateTaskHandler())
	protected.Delete("/tasks/:id", task.DeleteTaskHandler())
	protected.Get("/tasks/:id/time-entries", timeentry.ListTimeEntriesByTaskHandler())
	protected.Get("/tasks/:id/expenditures", taskexpenditure.ListExpendituresByTaskHandler())
	protected.Get("/tasks/:id/comments", task.ListCommentsByTaskHandler())

	// Proje gider defteri
	protected.Get("/expenditures", expenditure.ListExpendituresHandler())
	protected.Post("/expenditures", expenditure.CreateExpenditureHandler())
	protected.Get("/expenditures/:id", expenditure.GetExpenditureHandler())
	protected.Put("/expenditures/:id", expenditure.UpdateExpenditureHandler())
	protected.Delete("/expenditures/:id", expenditure.DeleteExpenditureHandler())

	// Görev gider defteri (fiş dosyalı)
	protected.Get("/task-expenditures", taskexpenditure.ListTaskExpendituresHandler())
	protected.Post("/task-expenditures", taskexpenditure.CreateTaskExpenditureHandler(cfg))
	protected.Get("/task-expenditures/:id", taskexpenditure.GetTaskExpenditureHandler())
	protected.Put("/task-expenditures/:id", taskexpenditure.UpdateTaskExpenditureHandler(cfg))
	protected.Delete("/task-expenditures/:id", taskexpenditure.DeleteTaskExpenditureHandler())

	// Zaman kayıtları
	protected.Get("/time-entries", timeentry.ListTimeEntriesHandler())
	protected.Post("/time-entries", timeentry.CreateTimeEntryHandler())
	protected.Get("/time-entries/:id", timeentry.GetTimeEntryHandler())
	protected.Put("/time-entries/:id", timeentry.UpdateTimeEntryHandler())
	protected.Delete("/time-entries/:id", timeentry.DeleteTimeEntryHandler())

	// Görev yorumları
	protected.Get("/task-comments", task.ListTaskCommentsHandler())
	protected.Post("/task-comments", task.CreateTaskCommentHandler())
	protected.Get("/task-comments/:id", task.GetTaskCommentHandler())
	protected.Put("/task-comments/:id", task.UpdateTaskCommentHandler())
	protected.Delete("/task-comments/:id", task.DeleteTaskCommentHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
