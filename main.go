package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/tableside-api/controllers"
	"github.com/Kariqs/tableside-api/gateways"
	"github.com/Kariqs/tableside-api/initializers"
	"github.com/Kariqs/tableside-api/realtime"
	"github.com/Kariqs/tableside-api/routes"
	"github.com/Kariqs/tableside-api/services"
	"github.com/Kariqs/tableside-api/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectToDB(initializers.LoadConfig())
	initializers.SyncDatabase()
}

func main() {
	cfg := initializers.AppConfig
	controllers.RegisterValidators()

	hub := realtime.NewHub(cfg.RealtimeBuffer)
	defer hub.Close()

	var publisher realtime.Publisher = hub
	if cfg.RabbitMQURL != "" {
		relay, err := realtime.DialRelay(context.Background(), cfg.RabbitMQURL, cfg.RealtimeExchange, hub)
		if err != nil {
			log.Printf("RabbitMQ relay disabled: %v", err)
		} else {
			defer relay.Close()
			publisher = relay
			log.Println("Realtime events relayed through RabbitMQ.")
		}
	}

	registry := gateways.NewRegistry(
		gateways.COD{},
		gateways.NewEsewa(gateways.EsewaConfig{
			FormURL:     cfg.Esewa.FormURL,
			StatusURL:   cfg.Esewa.StatusURL,
			ProductCode: cfg.Esewa.ProductCode,
			SecretKey:   cfg.Esewa.SecretKey,
			Timeout:     cfg.GatewayTimeout,
		}),
		gateways.NewKhalti(gateways.KhaltiConfig{
			BaseURL:    cfg.Khalti.BaseURL,
			SecretKey:  cfg.Khalti.SecretKey,
			WebsiteURL: cfg.Khalti.WebsiteURL,
			Timeout:    cfg.GatewayTimeout,
		}),
	)

	handler := &controllers.Handler{
		DB:       initializers.DB,
		Config:   cfg,
		Orders:   services.NewOrderService(initializers.DB, publisher, cfg.StrictOrderTransitions),
		Payments: services.NewPaymentService(initializers.DB, registry, publisher, cfg.FrontendURL),
		Hub:      hub,
	}
	if storage, err := utils.NewS3Storage(context.Background(), cfg.S3Bucket); err != nil {
		log.Printf("File uploads disabled: %v", err)
	} else {
		handler.Storage = storage
	}
	if cfg.Mail.Address != "" {
		handler.Mailer = utils.SMTPMailer{
			From:     cfg.Mail.FromEmail,
			Password: cfg.Mail.Password,
			Host:     cfg.Mail.SMTPHost,
			Address:  cfg.Mail.Address,
		}
	}

	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.Register(server, handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}
	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// open event streams would hold Shutdown until the timeout
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
