package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("📋 Listing recent orders:")

	query := `
		SELECT id, order_number, status, payment_status, payment_method,
		       total, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	var count int
	for rows.Next() {
		var id, orderNumber, status, paymentStatus, paymentMethod string
		var total string
		var createdAt string

		if err := rows.Scan(&id, &orderNumber, &status, &paymentStatus, &paymentMethod, &total, &createdAt); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to scan row: %v\n", err)
			continue
		}

		count++
		fmt.Printf("\n%d. %s\n", count, orderNumber)
		fmt.Printf("   id:             %s\n", id)
		fmt.Printf("   status:         %s\n", status)
		fmt.Printf("   payment_status: %s\n", paymentStatus)
		fmt.Printf("   payment_method: %s\n", paymentMethod)
		fmt.Printf("   total:          %s\n", total)
		fmt.Printf("   created_at:     %s\n", createdAt)
	}

	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Row iteration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nTotal: %d orders\n", count)
}
