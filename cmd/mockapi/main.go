package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendasuplementacion/storefront/internal/domain"
	"github.com/tiendasuplementacion/storefront/internal/mockapi"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	port := getEnv("HTTP_PORT", "8080")

	api := mockapi.New()
	seed(api)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: api.Handler(),
	}

	go func() {
		log.Printf("mock storefront API listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// seed loads a small catalog so the CLI has something to browse.
func seed(api *mockapi.Server) {
	api.SeedUser(domain.User{Username: "demo", Email: "demo@example.com", RoleID: 1}, "demo")
	api.SeedUser(domain.User{Username: "admin", Email: "admin@example.com", RoleID: 2}, "admin")

	api.SeedProduct(domain.Product{
		Name:        "Whey Protein 1kg",
		Description: "Chocolate flavour whey concentrate",
		Price:       decimal.NewFromFloat(29.90),
		Stock:       12,
	})
	api.SeedProduct(domain.Product{
		Name:        "Creatine Monohydrate 300g",
		Description: "Unflavoured micronized creatine",
		Price:       decimal.NewFromFloat(14.50),
		Stock:       30,
	})
	api.SeedProduct(domain.Product{
		Name:        "Shaker 600ml",
		Description: "Leak-proof shaker bottle",
		Price:       decimal.NewFromFloat(6.99),
		Stock:       0,
	})

	card := api.SeedPayment(domain.Payment{Name: "Credit card", Method: "card"})
	api.SeedPayment(domain.Payment{Name: "Cash on delivery", Method: "cash"})
	api.SeedPaymentDetail(domain.PaymentDetail{
		PaymentID:      card.ID,
		UserID:         1,
		CardNumber:     "4111111111111111",
		ExpirationDate: "12/27",
		CVC:            "123",
		Country:        "CO",
		AddressLine1:   "Calle 1 #2-34",
		City:           "Bogotá",
	})
}
