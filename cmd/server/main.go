package main

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v2lunch/api/internal/config"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/mail"
	"github.com/v2lunch/api/internal/router"
	"github.com/v2lunch/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)

	smtpPort, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		log.Fatalf("Invalid SMTP_PORT %q: %v", cfg.SMTPPort, err)
	}
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, smtpPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, pool, hub, mailer)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
