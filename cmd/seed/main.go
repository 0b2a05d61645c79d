package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gostorefront/shop-api/internal/config"
	"github.com/gostorefront/shop-api/internal/postgres"
	"github.com/joho/godotenv"
)

type seedProduct struct {
	name     string
	category string
	price    int
}

var products = []seedProduct{
	{"Jeans Design 1", "PANT", 1200},
	{"Jeans Design 2", "PANT", 1300},
	{"Track Pant Design 1", "PANT", 900},
	{"Pajama Design 1", "PANT", 800},
	{"Formal Pant Design 1", "PANT", 1500},
	{"Shirt Design 1", "SHIRT", 1000},
	{"Shirt Design 2", "SHIRT", 1100},
	{"Casual Shirt Design 1", "SHIRT", 900},
	{"Formal Shirt Design 1", "SHIRT", 1400},
	{"T-Shirt Design 1", "SHIRT", 700},
}

const initialStock = 25

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	for _, p := range products {
		var id string
		// idempotent re-runs: keep the first inserted row per name
		err := db.QueryRow(ctx, `
			SELECT id FROM products WHERE name = $1`, p.name).Scan(&id)
		if err != nil {
			id = uuid.NewString()
			if _, err := db.Exec(ctx, `
				INSERT INTO products(id, name, category, price_cents)
				VALUES ($1, $2, $3, $4)`, id, p.name, p.category, p.price); err != nil {
				log.Fatalf("insert product %q: %v", p.name, err)
			}
		}
		if _, err := db.Exec(ctx, `
			INSERT INTO inventory(product_id, quantity)
			VALUES ($1, $2)
			ON CONFLICT (product_id) DO NOTHING`, id, initialStock); err != nil {
			log.Fatalf("insert inventory for %q: %v", p.name, err)
		}
	}
	log.Printf("seeded %d products with stock %d each", len(products), initialStock)
}
