package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"memberportal/internal/auth"
	"memberportal/internal/config"
	"memberportal/internal/mail"
	"memberportal/internal/queue"
	"memberportal/internal/store"
)

// Worker consumes queue messages and sends the emails they describe.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		// An in-memory queue never crosses processes; this mode only makes
		// sense when the API runs its own consumer.
		log.Println("WARNING: QUEUE_BACKEND=memory, this worker will see no messages")
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "portal:mail")
	}

	var sender mail.Sender
	if cfg.ResendAPIKey != "" {
		sender = mail.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
		log.Println("mail sender configured")
	} else {
		sender = mail.NoopSender{}
		log.Println("RESEND_API_KEY not set, emails will be logged only")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != auth.MsgPasswordReset {
			continue
		}

		var payload auth.ResetPayload
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			log.Printf("bad reset payload: %v", err)
			continue
		}

		subject, html := mail.ResetEmail(cfg.PortalURL, payload.Token)
		if err := sender.Send(ctx, mail.SendRequest{
			To:      []string{payload.Email},
			Subject: subject,
			HTML:    html,
		}); err != nil {
			log.Printf("reset mail to %s failed: %v", payload.Email, err)
			continue
		}
		log.Printf("reset mail sent to %s", payload.Email)
	}

	log.Println("worker stopped")
}
