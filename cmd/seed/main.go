package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/config"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/logger"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/store"
)

// Seed the database with demo data for local development.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("shop-seed", cfg.LogLevel)
	ctx := context.Background()

	st, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer st.Close()

	products, err := st.GetProducts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to check products")
	}
	if len(products) > 0 {
		fmt.Printf("Database already has %d products. No need to seed.\n", len(products))
		os.Exit(0)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash demo password")
	}
	user, err := st.CreateUser(ctx, "demo", string(hash))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create demo user")
	}
	log.Info().Str("user_id", user.ID).Msg("created demo user (password: password)")

	demo := []struct {
		name  string
		price float64
	}{
		{"Widget", 9.99},
		{"Gadget", 24.50},
		{"Doohickey", 3.25},
	}

	for _, d := range demo {
		product, err := models.NewProduct(d.name, d.price)
		if err != nil {
			log.Fatal().Err(err).Str("name", d.name).Msg("invalid demo product")
		}
		created, err := st.CreateProduct(ctx, product)
		if err != nil {
			log.Fatal().Err(err).Str("name", d.name).Msg("failed to create product")
		}
		log.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("created product")
	}

	fmt.Println("Seeding complete.")
}
