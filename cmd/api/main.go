package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memberportal/internal/auth"
	"memberportal/internal/calendar"
	"memberportal/internal/captcha"
	"memberportal/internal/checkin"
	"memberportal/internal/cloudinary"
	"memberportal/internal/config"
	"memberportal/internal/gallery"
	"memberportal/internal/handler"
	"memberportal/internal/httpmiddleware"
	"memberportal/internal/mail"
	"memberportal/internal/merch"
	"memberportal/internal/queue"
	"memberportal/internal/roster"
	"memberportal/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	// Stops the in-process mail dispatcher once the server has drained.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	var mailq queue.Queue
	if cfg.QueueBackend == "memory" {
		// No separate worker process in memory mode; consume in-process.
		mailq = queue.NewInMemory(64)
		go runMailDispatch(dispatchCtx, cfg, mailq)
	} else {
		mailq = queue.NewRedisQueue(redisClient.Client, "portal:mail")
	}

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	rosterRepo := roster.NewPGRepository(db.Client)
	rosterSvc := roster.NewService(rosterRepo)
	checkinSvc := checkin.NewService(checkin.NewPGRepository(db.Client), rosterRepo)
	calendarSvc := calendar.NewService(calendar.NewPGRepository(db.Client))
	gallerySvc := gallery.NewService(gallery.NewPGRepository(db.Client))
	merchSvc := merch.NewService(merch.NewPGRepository(db.Client))
	carts := merch.NewCartStore()

	sessions := auth.NewSessionTracker(redisClient.Client, cfg.IdleTimeout)
	resets := auth.NewResetTokens(redisClient.Client, time.Hour)
	authSvc := auth.NewService(
		auth.NewPGCredentialStore(db.Client),
		sessions,
		resets,
		captcha.New(cfg.RecaptchaSecret),
		mailq,
		auth.Config{
			Issuer:      cfg.JWTIssuer,
			SigningKey:  cfg.JWTSigningKey,
			AccessTTL:   cfg.AccessTTL,
			RefreshTTL:  cfg.RefreshTTL,
			RememberTTL: cfg.RememberTTL,
		},
	)

	h := handler.New(authSvc, rosterSvc, checkinSvc, calendarSvc, gallerySvc, merchSvc, carts, cdnClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Credential endpoints get a per-IP rate limit on top of CAPTCHA.
	authRoutes := r.Group("/v1/auth")
	authRoutes.Use(httpmiddleware.NewRedisLimiter(redisClient.Client, cfg.RateLimitPerMin).GinMiddleware())
	authRoutes.POST("/signup", h.Signup)
	authRoutes.POST("/login", h.Login)
	authRoutes.POST("/reset/request", h.RequestReset)
	authRoutes.POST("/reset/confirm", h.ConfirmReset)

	api := r.Group("/v1", auth.UserAuth(cfg.JWTSigningKey, cfg.JWTIssuer, sessions, rosterRepo))

	api.POST("/auth/logout", h.Logout)
	api.GET("/me", h.Me)
	api.PUT("/me/classification", h.UpdateClassification)

	api.GET("/students", h.ListStudents)
	api.POST("/students", h.AddStudent)
	api.GET("/students/:id", h.GetStudent)
	api.PUT("/students/:id", h.UpdateStudent)
	api.POST("/students/import", h.ImportStudents)
	api.POST("/students/bulk-delete", h.BulkDeleteStudents)

	api.GET("/checkin/events", h.ListCheckinEvents)
	api.POST("/checkin/events", h.CreateCheckinEvent)
	api.DELETE("/checkin/events/:id", h.DeleteCheckinEvent)
	api.GET("/checkin/events/:id/records", h.ListCheckinRecords)
	api.POST("/checkin/events/:id/checkins", h.CheckIn)
	api.POST("/checkin/events/:id/students", h.RegisterAndCheckIn)
	api.POST("/checkin/events/:id/guests", h.AddGuest)
	api.DELETE("/checkin/events/:id/records/:recordID", h.DeleteCheckinRecord)
	api.GET("/checkin/events/:id/summary", h.CheckinSummary)
	api.GET("/checkin/events/:id/report", h.ExportCheckinReport)

	api.GET("/events", h.ListCalendar)
	api.POST("/events", h.CreateCalendarEvent)
	api.PUT("/events/:id", h.UpdateCalendarEvent)
	api.DELETE("/events/:id", h.DeleteCalendarEvent)

	api.GET("/gallery", h.ListGallery)
	api.POST("/gallery", h.CreateGalleryEntry)
	api.POST("/gallery/upload", h.UploadGalleryImage)
	api.DELETE("/gallery/:id", h.DeleteGalleryEntry)

	api.GET("/merch", h.ListMerch)
	api.POST("/merch", h.CreateMerchItem)
	api.DELETE("/merch/:id", h.DeleteMerchItem)

	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddToCart)
	api.PUT("/cart/items", h.SetCartQuantity)
	api.POST("/cart/checkout", h.Checkout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}
	stopDispatch()

	log.Println("Server exited")
	return nil
}

// runMailDispatch drains the mail queue in-process. Only used with the
// in-memory queue backend, where no worker process can see the messages.
func runMailDispatch(ctx context.Context, cfg config.App, q queue.Queue) {
	var sender mail.Sender
	if cfg.ResendAPIKey != "" {
		sender = mail.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		sender = mail.NoopSender{}
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Printf("mail dispatch init failed: %v", err)
		return
	}
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
		}
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
