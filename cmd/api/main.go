package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"

	"github.com/wwwizards/leadflow/internal/config"
	"github.com/wwwizards/leadflow/internal/entity"
	"github.com/wwwizards/leadflow/internal/infra/chat"
	"github.com/wwwizards/leadflow/internal/infra/database"
	httphandlers "github.com/wwwizards/leadflow/internal/infra/http/handlers"
	"github.com/wwwizards/leadflow/internal/infra/http/middleware"
	"github.com/wwwizards/leadflow/internal/infra/mail"
	"github.com/wwwizards/leadflow/internal/infra/memory"
	"github.com/wwwizards/leadflow/internal/infra/queue"
	"github.com/wwwizards/leadflow/internal/infra/sheets"
	"github.com/wwwizards/leadflow/internal/infra/throttle"
	"github.com/wwwizards/leadflow/internal/usecase"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// 1. Lead storage backend, resolved once at startup
	var (
		leadRepo entity.LeadRepository
		db       *sql.DB
	)
	if settings.UseGoogleSheets {
		client := sheets.NewClient(settings.SheetsBaseURL, settings.SheetsToken, settings.SpreadsheetID)
		leadRepo = sheets.NewLeadRepository(client, settings.WorksheetName)
		log.Printf("using spreadsheet lead storage (worksheet %q)", settings.WorksheetName)
	} else {
		db, err = database.Open(settings.DatabaseDriver, settings.DatabaseURL)
		if err != nil {
			log.Fatalf("database init error: %v", err)
		}
		defer db.Close()

		leadRepo, err = database.NewLeadRepository(db, settings.DatabaseDriver)
		if err != nil {
			log.Fatalf("lead repository init error: %v", err)
		}
		log.Printf("using %s lead storage", settings.DatabaseDriver)
	}

	// 2. Optional outbox: lead.created events + email copies
	var (
		rabbitConn *queue.RabbitMQ
		producer   usecase.QueueProducerInterface
	)
	if settings.RabbitURL != "" {
		rabbitConn, err = queue.NewRabbitMQ(settings.RabbitURL)
		if err != nil {
			log.Fatalf("rabbitmq init error: %v", err)
		}
		defer rabbitConn.Close()
		producer = queue.NewProducer(rabbitConn.Conn, rabbitConn.Ch)

		if settings.MailEnabled() {
			mailSender := mail.NewEmailSender(
				settings.MailHost, settings.MailPort,
				settings.MailUser, settings.MailPass, settings.MailTo,
			)
			worker := queue.NewWorker(rabbitConn.Ch, mailSender)
			go worker.Start(queue.QueueName)
		}
	}

	// 3. Conversation core
	sender := chat.NewClient(settings.ChatAPIBaseURL, settings.ChatAPIToken)
	notifier := usecase.NewNotifier(
		sender, settings.ManagerChatID,
		settings.NotificationEnabled,
		settings.NotificationRetryAttempts,
		settings.NotificationRetryDelay,
	)

	sessions := memory.NewSessionStore()
	engine := usecase.NewEngine(sessions, usecase.OrderQuizFlow(), usecase.NewRequestFlow())
	limiter := throttle.New(settings.ThrottleRate, settings.ThrottleBurst)
	intake := usecase.NewIntake(limiter, engine, leadRepo, notifier, producer)

	// 4. Handlers
	eventHandler := httphandlers.NewEventHandler(intake)
	leadHandler := httphandlers.NewLeadHandler(leadRepo)
	var amqpConn *amqp091.Connection
	if rabbitConn != nil {
		amqpConn = rabbitConn.Conn
	}
	healthHandler := httphandlers.NewHealthHandler(db, amqpConn)

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	}))

	r.Post("/events", eventHandler.Handle)
	r.Get("/leads", leadHandler.HandleList)
	r.Get("/leads/{id}", leadHandler.HandleGet)
	r.Patch("/leads/{id}/status", leadHandler.HandleUpdateStatus)
	r.Delete("/leads/{id}", leadHandler.HandleDelete)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + settings.HTTPPort
	log.Printf("leadflow listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
