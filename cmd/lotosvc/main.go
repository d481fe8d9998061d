package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/strmparty/loto-services/configs"
	mongodb "github.com/strmparty/loto-services/internal/db"
	"github.com/strmparty/loto-services/internal/lotosvc/archive"
	"github.com/strmparty/loto-services/internal/lotosvc/broker"
	"github.com/strmparty/loto-services/internal/lotosvc/db"
	handlers "github.com/strmparty/loto-services/internal/lotosvc/handlers"
	"github.com/strmparty/loto-services/internal/lotosvc/poller"
	"github.com/strmparty/loto-services/internal/lotosvc/service"
	"github.com/strmparty/loto-services/internal/lotosvc/store"
	"github.com/strmparty/loto-services/internal/lotosvc/winners"
	nats "github.com/strmparty/loto-services/internal/nats"
)

const SERVICE_NAME = "loto"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// mongo for the chat archive
	mdb, cancelMongo, err := mongodb.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancelMongo()
	chatArchive := archive.New(mdb, 72*time.Hour)

	settingsStore := store.NewSettingsStore(dbpool)
	settingsService := service.NewSettingsService(settingsStore)

	sessionStore := store.NewSessionStore(dbpool)
	ticketStore := store.NewTicketStore(dbpool)
	sessionService := service.NewSessionService(sessionStore, ticketStore)

	winnerStore := store.NewWinnerStore(dbpool)
	winnerService := service.NewWinnerService(winnerStore)

	winnersClient := winners.NewClient(os.Getenv("WINNERS_API_URL"))

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	server := os.Getenv("CHAT_PLATFORM")
	channel := os.Getenv("CHAT_CHANNEL")

	// init game broker
	b := broker.NewBroker(n.Conn, settingsService, sessionService, winnerService,
		winnersClient, chatArchive, server, channel)

	// subscribe to socket service
	topic := "socket.service"
	sub, err := b.SubscribSocketService(topic)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// connect the chat stream and load the reward catalog before the first
	// session starts, so custom prize cells can be vetted against it
	pollCtx, stopPolling := context.WithCancel(context.Background())
	p := poller.New(os.Getenv("CHAT_API_URL"), b)
	conn := poller.Connection{Platform: server, Channel: channel}
	if err := p.Connect(pollCtx, conn); err != nil {
		log.Errorf("Error connecting chat stream: %v", err)
	}
	if rewards, err := p.StreamInfo(pollCtx, conn); err != nil {
		log.Errorf("Error fetching stream info: %v", err)
	} else {
		log.Infof("reward catalog loaded for %s/%s: %d rewards", server, channel, len(rewards))
		b.SetRewardCatalog(rewards)
	}

	// boot the first session with the stored channel settings
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	set, err := settingsService.GetOrDefault(ctx, server, channel)
	if err != nil {
		log.Errorf("Error loading settings, using defaults: %v", err)
	}
	if err := b.StartSession(ctx, set); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	cancel()

	go p.Run(pollCtx, conn)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler()
	handlers.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	srv := &http.Server{
		Addr:         ":" + os.Getenv("LOTO_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, srv.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	stopPolling()
	sub.Unsubscribe()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
