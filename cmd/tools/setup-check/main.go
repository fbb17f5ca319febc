// cmd/tools/setup-check/main.go
//
// Verifies the local environment before running the chat service: database
// reachability, required tables, sample data, Redis, the GenAI API key, and
// listen-port availability.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"ecommerce-support/internal/common/config"
	"ecommerce-support/internal/common/database"
)

func printSuccess(format string, args ...interface{}) {
	fmt.Printf("✅ "+format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	fmt.Printf("❌ "+format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("⚠️  "+format+"\n", args...)
}

func printHeader(text string) {
	fmt.Printf("\n=== %s ===\n", text)
}

func checkPostgres(ctx context.Context, cfg *config.Config) bool {
	printHeader("Checking PostgreSQL")

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		printError("PostgreSQL connection failed: %v", err)
		return false
	}
	defer pg.Close()

	if err := pg.Ping(ctx); err != nil {
		printError("PostgreSQL ping failed: %v", err)
		return false
	}
	printSuccess("PostgreSQL server connection successful")

	ok := true
	requiredTables := []string{"users", "orders", "tickets", "conversation_history"}
	for _, table := range requiredTables {
		var exists bool
		err := pg.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
			table).Scan(&exists)
		if err != nil {
			printError("Table check for '%s' failed: %v", table, err)
			ok = false
			continue
		}
		if exists {
			printSuccess("Table '%s' exists", table)
		} else {
			printError("Table '%s' is missing", table)
			ok = false
		}
	}
	if !ok {
		return false
	}

	var userCount, orderCount int
	if err := pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err == nil {
		if userCount > 0 {
			printSuccess("Found %d sample users in database", userCount)
		} else {
			printWarning("No sample users found")
		}
	}
	if err := pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orderCount); err == nil {
		if orderCount > 0 {
			printSuccess("Found %d sample orders in database", orderCount)
		} else {
			printWarning("No sample orders found")
		}
	}

	return true
}

func checkRedis(ctx context.Context, cfg *config.Config) bool {
	printHeader("Checking Redis")

	rc, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		printError("Redis connection failed: %v", err)
		return false
	}
	defer rc.Close()

	if err := rc.Ping(ctx); err != nil {
		printError("Redis ping failed: %v", err)
		return false
	}
	printSuccess("Redis connection successful")
	return true
}

func checkGenAIKey(cfg *config.Config) bool {
	printHeader("Checking GenAI API Configuration")

	if cfg.APIs.GenAI.APIKey == "" {
		printError("GenAI API key is NOT configured")
		fmt.Println("   Set GEMINI_API_KEY in your environment or .env file")
		return false
	}
	printSuccess("GenAI API key is configured (model: %s)", cfg.APIs.GenAI.Model)
	return true
}

func checkPort(cfg *config.Config) bool {
	printHeader("Checking Port Availability")

	addr := cfg.Server.Addr()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		conn.Close()
		printWarning("Port %s is already in use", addr)
		return false
	}
	printSuccess("Port %s is available", addr)
	return true
}

func main() {
	fmt.Println("E-commerce Support Chat - Setup Checker")

	cfg, err := config.Load()
	if err != nil {
		printError("config load failed: %v", err)
		os.Exit(1)
	}
	printSuccess("Configuration loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := map[string]bool{
		"PostgreSQL":  checkPostgres(ctx, cfg),
		"Redis":       checkRedis(ctx, cfg),
		"GenAI Key":   checkGenAIKey(cfg),
		"Listen Port": checkPort(cfg),
	}

	printHeader("Summary")
	passed := 0
	for name, ok := range results {
		if ok {
			passed++
			printSuccess(name)
		} else {
			printError(name)
		}
	}
	fmt.Printf("\n%d/%d checks passed\n", passed, len(results))

	if passed != len(results) {
		os.Exit(1)
	}
}
