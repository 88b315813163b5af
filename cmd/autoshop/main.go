package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"autoshop/pkg/config"
	"autoshop/pkg/domain/service"
	"autoshop/pkg/infrastructure/backend"
	"autoshop/pkg/infrastructure/event"
	"autoshop/pkg/infrastructure/mysql"
	"autoshop/pkg/infrastructure/transport"
	"autoshop/pkg/session"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "autoshop",
		Usage: "invoicing backend for auto-repair shops",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:      "migrate",
				Usage:     "apply or roll back the database schema",
				ArgsUsage: "up|down",
				Action:    migrateSchema,
			},
			{
				Name:  "bootstrap",
				Usage: "register a shop together with its owner profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "shop-name", Required: true},
					&cli.StringFlag{Name: "owner-user-id", Required: true, Usage: "id of the owner's auth user"},
					&cli.StringFlag{Name: "owner-email", Required: true},
					&cli.StringFlag{Name: "owner-name"},
				},
				Action: bootstrap,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("autoshop failed")
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	log.SetLevel(level)
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := mysql.Open(c.Context, cfg.DBDSN, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	broker := session.NewBroker(16)
	defer broker.Close()
	go logSessionEvents(ctx, broker)

	killSignalChan := getKillSignalChan()
	srv := startServer(cfg, db, broker)
	log.WithFields(log.Fields{"url": cfg.HTTPAddr}).Info("Starting server")

	waitForKillSignalChan(killSignalChan)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func startServer(cfg *config.Config, db *sqlx.DB, broker *session.Broker) *http.Server {
	client := backend.NewClient(cfg.BackendURL, cfg.BackendAPIKey, cfg.BackendTimeout)
	dispatcher := event.NewLogDispatcher(log.StandardLogger())

	invoiceRepo := mysql.NewInvoiceRepository(db)
	customerRepo := mysql.NewCustomerRepository(db)
	vehicleRepo := mysql.NewVehicleRepository(db)
	profileRepo := mysql.NewProfileRepository(db)
	shopRepo := mysql.NewShopRepository(db)

	router := transport.Router(transport.Services{
		Auth:      service.NewAuthService(client, profileRepo, broker),
		Invoices:  service.NewInvoiceService(invoiceRepo, customerRepo, vehicleRepo, invoiceRepo, client, dispatcher),
		Customers: service.NewCustomerService(customerRepo, vehicleRepo, dispatcher),
		Staff:     service.NewStaffService(profileRepo, client, dispatcher),
		Shop:      service.NewShopService(shopRepo, profileRepo, dispatcher),
		Dashboard: service.NewDashboardService(mysql.NewDashboardReader(db)),
		Issuer:    invoiceRepo,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	return srv
}

func logSessionEvents(ctx context.Context, broker *session.Broker) {
	for e := range broker.Subscribe(ctx) {
		log.WithFields(log.Fields{"kind": e.Kind, "user": e.UserID, "at": e.At}).Info("session event")
	}
}

func migrateSchema(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	direction := mysql.MigrateDirection(c.Args().First())
	switch direction {
	case mysql.MigrateUp, mysql.MigrateDown:
	case "":
		direction = mysql.MigrateUp
	default:
		return errors.Errorf("unknown migrate direction %q, want up or down", direction)
	}
	return mysql.Migrate(cfg.DBDSN, direction)
}

func bootstrap(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ownerID, err := uuid.Parse(c.String("owner-user-id"))
	if err != nil {
		return errors.Wrap(err, "invalid owner-user-id")
	}

	db, err := mysql.Open(c.Context, cfg.DBDSN, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	shops := service.NewShopService(
		mysql.NewShopRepository(db),
		mysql.NewProfileRepository(db),
		event.NewLogDispatcher(log.StandardLogger()),
	)
	shop, owner, err := shops.RegisterShop(c.Context,
		service.ShopSettings{Name: c.String("shop-name")},
		service.ShopOwner{UserID: ownerID, Email: c.String("owner-email"), FullName: c.String("owner-name")},
	)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"shop": shop.ID, "owner_profile": owner.ID}).Info("shop registered")
	return nil
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignalChan(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}
