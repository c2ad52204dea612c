// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/imadgeboyega/roomie-backend/internal/assistant"
	"github.com/imadgeboyega/roomie-backend/internal/auth"
	"github.com/imadgeboyega/roomie-backend/internal/config"
	"github.com/imadgeboyega/roomie-backend/internal/notification"
	"github.com/imadgeboyega/roomie-backend/internal/roommate"
	"github.com/imadgeboyega/roomie-backend/internal/seed"
)

func main() {
	seedOnly := flag.Bool("seed", false, "load the sample roommates and exit")
	checkOnly := flag.Bool("check", false, "verify configuration and backend connectivity, then exit")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Roomie API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Printf("✅ Configuration is valid (store=%s, lock=%s)", cfg.StoreBackend, cfg.LockBackend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	log.Printf("\n🗄️  Step 3: Opening %s store...", cfg.StoreBackend)
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal("❌ Failed to open store:", err)
	}
	defer st.Close()
	log.Println("✅ Store ready")

	// 4. Swipe locking
	log.Printf("\n🔒 Step 4: Initializing %s pair locks...", cfg.LockBackend)
	locker, closeLocker, err := newPairLocker(ctx, cfg)
	if err != nil {
		log.Fatal("❌ Failed to initialize pair locks:", err)
	}
	defer closeLocker()
	log.Println("✅ Pair locks ready")

	if *checkOnly {
		log.Println("✅ Configuration and backends look good")
		return
	}

	// 5. Services
	log.Println("\n⚙️  Step 5: Initializing services...")
	authService := auth.NewService(st.users, &auth.Config{
		JWTSecret:         cfg.JWTSecret,
		AccessTokenExpiry: cfg.AccessTokenExpiry,
		BCryptCost:        cfg.BCryptCost,
		Issuer:            "roomie",
	})

	hub := roommate.NewHub()
	notifiers := []roommate.MatchNotifier{hub}

	var emailer *notification.MatchEmailer
	if cfg.EnableEmailNotifications {
		emailService, err := newEmailService(cfg)
		if err != nil {
			log.Fatal("❌ Failed to initialize email:", err)
		}
		emailer = notification.NewMatchEmailer(emailService, st.users, st.roommates)
		notifiers = append(notifiers, emailer)
		log.Printf("   ✅ Match emails via %s", cfg.EmailProvider)
	}

	roommateService := roommate.NewService(
		st.roommates,
		roommate.NewMatchingEngine(nil),
		locker,
		&roommate.Config{StoreTimeout: cfg.StoreTimeout},
		notifiers...,
	)

	var completer assistant.Completer
	if cfg.AssistantAPIToken != "" {
		completer = assistant.NewHTTPCompleter(cfg.AssistantAPIURL, cfg.AssistantAPIToken, cfg.AssistantTimeout)
		log.Println("   ✅ Assistant uses the completion API")
	} else {
		log.Println("   ⚠️  No assistant token, canned replies only")
	}
	assistantService := assistant.NewService(completer, cfg.AssistantTimeout)
	log.Println("✅ Services initialized")

	// 6. Sample data
	if cfg.SeedSampleData || *seedOnly {
		log.Println("\n🌱 Step 6: Loading sample roommates...")
		seeder := seed.NewSeeder(authService, st.users, roommateService)
		if _, err := seeder.Load(ctx, seed.Samples()); err != nil {
			log.Fatal("❌ Seeding failed:", err)
		}
		if *seedOnly {
			return
		}
	}

	// 7. HTTP
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	router := newRouter(cfg, &application{
		auth:      authService,
		roommates: roommateService,
		assistant: assistantService,
		hub:       hub,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("\n⚠️  Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("   - Closing websocket hub...")
	stopHub()

	if emailer != nil {
		log.Println("   - Waiting for pending match emails...")
		emailer.Wait()
	}

	log.Println("✅ Server exited gracefully")
	os.Exit(0)
}
