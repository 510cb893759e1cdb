package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dfalmeida/pipeboard/internal/infra/database"
	"github.com/dfalmeida/pipeboard/internal/infra/http/handlers"
	"github.com/dfalmeida/pipeboard/internal/infra/http/middleware"
	"github.com/dfalmeida/pipeboard/internal/infra/integration/auth"
	"github.com/dfalmeida/pipeboard/internal/infra/mail"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
	"github.com/dfalmeida/pipeboard/internal/infra/worker"
	"github.com/dfalmeida/pipeboard/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	pipelineRepo := database.NewPipelineRepository(db)
	taskRepo := database.NewTaskRepository(db)
	ruleRepo := database.NewAutomationRuleRepository(db)

	// 2. Gateways and adapters
	authClient := auth.NewClient(
		os.Getenv("AUTH_URL"), os.Getenv("AUTH_API_KEY"), os.Getenv("AUTH_REFRESH_TOKEN"),
	)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
	)

	// 3. Workers (queue consumer + task reminder sweep)
	notifyEmail := os.Getenv("NOTIFY_EMAIL")
	eventWorker := queue.NewWorker(rabbitMQ.Ch, mailSender)
	go eventWorker.Start(queue.QueueName)

	reminderWorker := worker.NewTaskReminderWorker(taskRepo, leadRepo, producer, notifyEmail)
	go reminderWorker.Start(context.Background())

	// 4. UseCases
	createLeadUC := usecase.NewCreateLeadUseCase(leadRepo, pipelineRepo, producer)
	closeLeadUC := usecase.NewCloseLeadUseCase(leadRepo, producer, notifyEmail)
	createTaskUC := usecase.NewCreateTaskUseCase(taskRepo, leadRepo, producer, notifyEmail)
	actions := usecase.NewAutomationActions(createTaskUC, closeLeadUC)

	boardService := usecase.NewBoardService(
		pipelineRepo, leadRepo, ruleRepo, authClient, actions, producer,
	)

	// 5. Handlers
	promptInbox := handlers.NewPromptInbox()
	boardHandler := handlers.NewBoardHandler(boardService, promptInbox)
	leadHandler := handlers.NewLeadHandler(createLeadUC, closeLeadUC, leadRepo)
	pipelineHandler := handlers.NewPipelineHandler(pipelineRepo)
	taskHandler := handlers.NewTaskHandler(createTaskUC, taskRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/boards/{pipelineId}", func(r chi.Router) {
		r.Post("/open", boardHandler.HandleOpen)
		r.Get("/", boardHandler.HandleGet)
		r.Post("/move", boardHandler.HandleMove)
		r.Post("/move/confirm", boardHandler.HandleConfirm)
		r.Post("/move/cancel", boardHandler.HandleCancel)
		r.Post("/close", boardHandler.HandleClose)
		r.Get("/prompts", boardHandler.HandleListPrompts)
	})
	r.Post("/prompts/{promptId}/resolve", boardHandler.HandleResolvePrompt)

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", leadHandler.HandleCreate)
		r.Get("/{leadId}", leadHandler.HandleGet)
		r.Post("/{leadId}/sold", leadHandler.HandleMarkSold)
		r.Post("/{leadId}/lost", leadHandler.HandleMarkLost)
		r.Delete("/{leadId}", leadHandler.HandleDelete)
		r.Get("/{leadId}/tasks", taskHandler.HandleListByLead)
	})
	r.Post("/capture", leadHandler.HandleCapture)

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", taskHandler.HandleCreate)
		r.Post("/{taskId}/done", taskHandler.HandleComplete)
	})

	r.Route("/pipelines", func(r chi.Router) {
		r.Post("/", pipelineHandler.HandleCreate)
		r.Get("/", pipelineHandler.HandleList)
	})

	port := ":8080"
	log.Printf("pipeboard API listening on %s", port)
	http.ListenAndServe(port, r)
}
