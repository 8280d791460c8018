// README: Entry point; loads config, wires stores and services, starts the
// HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taxihub/internal/auth"
	"taxihub/internal/config"
	"taxihub/internal/events"
	httptransport "taxihub/internal/http"
	"taxihub/internal/infra"
	"taxihub/internal/maps"
	"taxihub/internal/modules/booking"
	"taxihub/internal/modules/company"
	"taxihub/internal/modules/dispatch"
	"taxihub/internal/modules/identity"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	board := dispatch.NewBoard(redisClient)

	var publisher booking.EventPublisher
	if cfg.AMQP.URL != "" {
		conn, ch, err := infra.NewAMQP(cfg.AMQP.URL)
		if err != nil {
			log.Fatalf("rabbitmq init: %v", err)
		}
		defer conn.Close()
		publisher = events.NewPublisher(ch)
	}

	var routes booking.RouteEstimator
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		routes = routeSvc
	}

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	userStore := identity.NewStore(dbPool)
	companyStore := company.NewStore(dbPool)
	bookingStore := booking.NewStore(dbPool)

	bookingSvc := booking.NewService(booking.Deps{
		Store:     bookingStore,
		Users:     userStore,
		Companies: companyStore,
		Board:     board,
		Events:    publisher,
		Routes:    routes,
	})
	companySvc := company.NewService(company.Deps{
		Store:    companyStore,
		Users:    userStore,
		Bookings: bookingStore,
	})
	userSvc := identity.NewService(identity.Deps{
		Store:    userStore,
		Signer:   tokens,
		Bookings: bookingStore,
	})

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Users:     userSvc,
		Bookings:  bookingSvc,
		Companies: companySvc,
		Verifier:  tokens,
		Booking:   cfg.Booking,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
