package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/config"
	"motorvault-api/internal/feed"
	"motorvault-api/internal/gateway"
	"motorvault-api/internal/store"
	httpTransport "motorvault-api/internal/transport/http"
	"motorvault-api/internal/transport/http/handler"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	log.Printf("Starting %s v%s in %s mode",
		cfg.App.Name,
		cfg.App.Version,
		cfg.App.Environment,
	)

	ctx := context.Background()

	// Document store (the catalog lives here)
	mongoClient, err := store.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Warning: MongoDB disconnect: %v", err)
		}
	}()
	catalog := store.NewMongoStore(mongoClient.Database(cfg.Mongo.Database), cfg.Mongo.Collection)
	log.Println("✓ MongoDB connected")

	// Inventory feed: the live cache every read goes through
	inventoryFeed := feed.New(catalog)
	if err := inventoryFeed.Start(ctx); err != nil {
		log.Fatalf("FATAL: Failed to open catalog subscription: %v", err)
	}
	defer inventoryFeed.Stop()
	log.Println("✓ Inventory feed subscribed")

	// Main database (staff accounts)
	mainDB, err := connectDB(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		"Main DB",
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to Main DB: %v", err)
	}
	defer mainDB.Close()
	log.Println("✓ Main DB connected")

	// Sessions (Redis-backed, revocable)
	tokens, err := auth.NewTokenService(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Auth.JWTSecret,
		cfg.Auth.SessionTTL,
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize session store: %v", err)
	}
	defer tokens.Close()
	log.Println("✓ Session store connected")

	provider := auth.NewService(auth.NewMySQLStaffRepository(mainDB), tokens)
	mutations := gateway.New(catalog)

	// Initialize transport layer - HTTP
	httpHandler := handler.New(cfg.App.Version, inventoryFeed)
	carsHandler := handler.NewCarsHandler(inventoryFeed, mutations, catalog)
	authHandler := handler.NewAuthHandler(provider)
	streamHandler := handler.NewStreamHandler(inventoryFeed, provider)

	router := httpTransport.NewRouter(httpHandler, carsHandler, authHandler, streamHandler, provider)

	// Configure HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("HTTP server listening on %s", cfg.Server.Address())
		log.Println("Available endpoints:")
		log.Println("  GET    /api/v1/health")
		log.Println("  GET    /api/v1/cars")
		log.Println("  GET    /api/v1/cars/{id}")
		log.Println("  GET    /api/v1/cars/stream  (websocket)")
		log.Println("  POST   /api/v1/auth/login")
		log.Println("  POST   /api/v1/cars         (staff)")
		log.Println("  PUT    /api/v1/cars/{id}    (staff)")
		log.Println("  DELETE /api/v1/cars/{id}    (staff)")
		log.Println("  GET    /api/v1/admin/stream (staff websocket)")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// connectDB establishes a connection to a MySQL database.
func connectDB(host string, port int, user, password, dbName, label string) (*sql.DB, error) {
	// DSN with timeout settings to prevent hanging connections
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci&timeout=5s&readTimeout=10s&writeTimeout=10s",
		user, password, host, port, dbName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", label, err)
	}

	// Staff lookups are rare; keep the pool small.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Verify connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", label, err)
	}

	return db, nil
}

// init sets up logging format
func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
}
