// README: Entry point; loads config, wires services, starts the webhook server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kirana/internal/ai"
	"kirana/internal/bot"
	"kirana/internal/config"
	httptransport "kirana/internal/http"
	"kirana/internal/infra"
	"kirana/internal/maps"
	"kirana/internal/modules/catalog"
	"kirana/internal/modules/customer"
	"kirana/internal/modules/ledger"
	"kirana/internal/modules/pricing"
	"kirana/internal/modules/session"
	"kirana/internal/notify"
	"kirana/internal/types"
)

func main() {
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

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	catalogStore := catalog.NewStore(dbPool)
	customerStore := customer.NewStore(dbPool)
	sessionStore := session.NewRedisStore(redisClient)

	pricingSvc := pricing.NewService(catalogStore, pricing.Policy{
		Threshold: types.Money{Paise: cfg.Bot.DeliveryThresholdPaise},
		FlatFee:   types.Money{Paise: cfg.Bot.DeliveryFeePaise},
	})

	ledgerStore := ledger.NewStore(dbPool)
	ledgerSvc := ledger.NewService(ledgerStore, pricingSvc, catalogStore)

	waClient := notify.NewWhatsAppClient(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID)

	var parser bot.OrderParser
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiParser(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer gemini.Close()
		parser = gemini
	}

	var geocoder maps.Geocoder = maps.NopGeocoder{}
	if cfg.Maps.APIKey != "" {
		geo, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = geo
	}

	engine := bot.NewEngine(bot.Deps{
		Sessions:  sessionStore,
		Catalog:   catalogStore,
		Pricer:    pricingSvc,
		Ledger:    ledgerSvc,
		Customers: customerStore,
		Notifier:  waClient,
		Parser:    parser,
		Media:     waClient,
		Geocoder:  geocoder,
		Config:    cfg.Bot,
	})

	router := httptransport.NewRouter(engine, httptransport.RouterConfig{
		VerifyToken: cfg.WhatsApp.VerifyToken,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("kirana-bot listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
