package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medichain/medichain/internal/config"
	"github.com/medichain/medichain/internal/domain/access"
	"github.com/medichain/medichain/internal/domain/identity"
	"github.com/medichain/medichain/internal/domain/lab"
	"github.com/medichain/medichain/internal/domain/records"
	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/auth"
	"github.com/medichain/medichain/internal/platform/clock"
	"github.com/medichain/medichain/internal/platform/db"
	"github.com/medichain/medichain/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medichain-server",
		Short: "Role-based access and consent engine for medical data",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			seedDemo, _ := cmd.Flags().GetBool("seed-demo")
			return runServer(seedDemo)
		},
	}
	cmd.Flags().Bool("seed-demo", false, "Seed demo roles and patients on startup")
	return cmd
}

func runServer(seedDemo bool) error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	clk := clock.WallSource{}

	// Storage: Postgres when DATABASE_URL is set, otherwise in-memory. The
	// role registry and grant state are always in-memory; only the audit
	// trail and record references persist.
	var (
		auditLog    audit.Log
		recordStore records.Store
		pool        *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		pgLog := audit.NewPGLog(pool)
		if err := pgLog.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare audit schema")
		}
		pgStore := records.NewPGStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare records schema")
		}
		auditLog = pgLog
		recordStore = pgStore
		logger.Info().Msg("connected to database")
	} else {
		auditLog = audit.NewMemLog()
		recordStore = records.NewMemStore()
		logger.Warn().Msg("DATABASE_URL not set; audit log and record references are in-memory only")
	}

	// Core engine wiring
	registry := access.NewRoleRegistry(auditLog, clk)
	registry.Bootstrap(cfg.AdminAccounts)
	if len(cfg.AdminAccounts) > 0 {
		logger.Info().Strs("accounts", cfg.AdminAccounts).Msg("bootstrapped admin accounts")
	}

	grants := access.NewGrantStore(auditLog)
	accessSvc := access.NewService(registry, grants, clk)
	patientSvc := identity.NewService(identity.NewMemRepository(), accessSvc, auditLog, clk)
	recordSvc := records.NewService(recordStore, accessSvc, patientSvc, auditLog, clk)
	labSvc := lab.NewService(accessSvc, patientSvc, recordStore, auditLog, clk)

	if seedDemo {
		if err := seedDemoData(ctx, cfg, registry, patientSvc, logger); err != nil {
			logger.Fatal().Err(err).Msg("demo seed failed")
		}
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", auth.AccountHeader},
	}))

	// Caller identity
	switch cfg.ResolvedAuthMode() {
	case "header":
		e.Use(auth.HeaderMiddleware())
	default:
		e.Use(auth.JWTMiddleware(auth.Config{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	access.NewHandler(accessSvc).RegisterRoutes(apiV1)
	identity.NewHandler(patientSvc).RegisterRoutes(apiV1)
	records.NewHandler(recordSvc).RegisterRoutes(apiV1)
	lab.NewHandler(labSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditLog, accessSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// seedDemoData assigns a handful of staff roles and registers two patients so
// a fresh development instance has something to work with. The assignments go
// through the registry so they land in the audit trail like any other.
func seedDemoData(ctx context.Context, cfg *config.Config, registry *access.RoleRegistry, patients *identity.Service, logger zerolog.Logger) error {
	admin := "ADM-001"
	if len(cfg.AdminAccounts) > 0 {
		admin = cfg.AdminAccounts[0]
	} else {
		registry.Bootstrap([]string{admin})
	}

	staff := []struct {
		account string
		role    access.Role
	}{
		{"DOC-001", access.RoleDoctor},
		{"DOC-002", access.RoleDoctor},
		{"NUR-001", access.RoleNurse},
		{"LAB-001", access.RoleLabTechnician},
		{"PHA-001", access.RolePharmacist},
	}
	for _, s := range staff {
		if err := registry.Assign(ctx, admin, s.account, s.role); err != nil {
			return err
		}
	}

	demoPatients := []identity.RegisterRequest{
		{
			FullName:                     "Adebayo Okonkwo",
			DateOfBirth:                  "1985-03-12",
			NationalID:                   "NG-19850312-4471",
			BloodType:                    "O+",
			Allergies:                    []string{"penicillin"},
			CurrentMedications:           []string{"lisinopril 10mg"},
			ChronicConditions:            []string{"hypertension"},
			EmergencyContactName:         "Ngozi Okonkwo",
			EmergencyContactPhone:        "+234-803-555-0142",
			EmergencyContactRelationship: "spouse",
			OrganDonor:                   true,
		},
		{
			FullName:              "Fatima Bello",
			DateOfBirth:           "1992-11-02",
			NationalID:            "NG-19921102-2210",
			BloodType:             "A-",
			ChronicConditions:     []string{"asthma"},
			EmergencyContactName:  "Musa Bello",
			EmergencyContactPhone: "+234-805-555-0177",
		},
	}
	for _, req := range demoPatients {
		p, err := patients.Register(ctx, "DOC-001", req)
		if err != nil {
			return err
		}
		logger.Info().Str("patient", p.ID).Str("name", p.FullName).Msg("seeded demo patient")
	}
	logger.Info().Int("staff", len(staff)).Int("patients", len(demoPatients)).Msg("demo data seeded")
	return nil
}
