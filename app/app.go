package app

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"vetblood-market-api/internal/controller"
	"vetblood-market-api/internal/notify"
	"vetblood-market-api/internal/payment"
	"vetblood-market-api/internal/pricing"
	"vetblood-market-api/internal/repo"
	"vetblood-market-api/internal/service"
	"vetblood-market-api/pkg/http_server"
	"vetblood-market-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"
)

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	return log
}

func runMigrations(postgresDB *postgres.Postgres, databaseName string, log *logrus.Logger) {
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{DatabaseName: databaseName})
	if err != nil {
		log.Fatal(err)
	}

	migrations, err := migrate.NewWithDatabaseInstance("file://migrations", databaseName, driver)
	if err != nil {
		log.Fatal(err)
	}

	if err := migrations.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("no change made by migration scripts")
		} else {
			log.Fatal(err)
		}
	}
}

func newPaymentProvider(log *logrus.Logger) payment.Provider {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	if secretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, running payments in demo mode")

		return payment.NewDisabledProvider()
	}

	return payment.NewStripeProvider(secretKey)
}

func newNotifier(log *logrus.Logger) notify.Notifier {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Warn("SMTP_HOST not set, notifications are logged only")

		return notify.NewLogNotifier(log)
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	return notify.NewMailNotifier(host, port,
		os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"), os.Getenv("SMTP_FROM"), log)
}

func feeSchedule() pricing.Schedule {
	if os.Getenv("FEE_SCHEDULE") == string(pricing.BuyerOnly) {
		return pricing.BuyerOnly
	}

	return pricing.Split
}

func Run() {
	log := newLogger()

	serverAddressEnv := os.Getenv("SERVER_ADDRESS")
	dbConnEnv := os.Getenv("POSTGRES_CONN")
	databaseEnv := os.Getenv("POSTGRES_DATABASE")
	cronSecretEnv := os.Getenv("CRON_SECRET")

	log.Info("Connecting database...")
	postgresDB, err := postgres.NewDB(dbConnEnv)
	if err != nil {
		log.Fatalf("Error occurred while connecting to db: %v", err)
	}
	defer postgresDB.Close()

	log.Info("Running migrations...")
	runMigrations(postgresDB, databaseEnv, log)

	repositories := repo.NewRepositories(postgresDB)
	provider := newPaymentProvider(log)
	notifier := newNotifier(log)
	services := service.NewServices(repositories, provider, notifier, feeSchedule(), log)
	handler := echo.New()

	log.Info("Setup routes...")
	controller.SetupRoutesHandlers(handler, services, cronSecretEnv)

	log.Info("Starting server...")
	httpServer := http_server.New(handler, serverAddressEnv)

	log.Info("Ready to process requests...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("Got signal: " + s.String())
	case err = <-httpServer.Notify():
		log.Fatalf("Notify error: %v", err)
	}

	log.Info("Shutting down...")
	err = httpServer.Shutdown()
	if err != nil {
		log.Fatalf("Shutdown error: %v", err)
	} else {
		log.Info("Successful shutdown")
	}
}
