package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"vellum/internal/config"
	"vellum/internal/doctype"
	"vellum/internal/domain/models"
	"vellum/internal/domain/services"
	"vellum/internal/repository/postgres"
	"vellum/internal/service"

	"github.com/shopspring/decimal"

	"github.com/joho/godotenv"
)

// Fixed demo identities so repeated runs and local frontends can rely on them.
const (
	demoTenantID = "11111111-1111-1111-1111-111111111111"
	demoOwnerID  = "22222222-2222-2222-2222-222222222222"
	demoEditorID = "33333333-3333-3333-3333-333333333333"
)

func main() {
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed documents")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: seeding writes demo data; never in production
	if cfg.Environment == "prod" && !*schemaOnly {
		log.Fatalf("🚫 BLOCKED: Cannot seed demo data in production environment")
	}

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	draftRepo := postgres.NewDraftRepository(repoConfig)
	sequenceRepo := postgres.NewSequenceRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, cfg.LockTimeout)

	registry, err := doctype.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load document type registry: %v", err)
	}

	numberingService := service.NewNumberingService(sequenceRepo, registry, logger)
	docService := service.NewDocumentService(docRepo, versionRepo, draftRepo, txManager, registry, numberingService, logger)
	draftService := service.NewDraftService(docRepo, draftRepo, logger)
	promotionService := service.NewPromotionService(docRepo, versionRepo, draftRepo, txManager, registry, logger)

	owner := models.TenantContext{TenantID: demoTenantID, ActorID: demoOwnerID, Role: "owner"}
	editor := models.TenantContext{TenantID: demoTenantID, ActorID: demoEditorID, Role: "member"}

	// A consultation with version history: create, draft, promote, complete.
	log.Println("📝 Seeding consultation with version history...")
	consultation, err := docService.CreateDocument(ctx, owner, &services.CreateDocumentRequest{
		DocumentType: "consultation",
		InitialPayload: models.Payload{
			Client: &models.ClientSection{Name: "Acme Manufacturing", Email: "ops@acme.example", Company: "Acme"},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to create consultation: %v", err)
	}

	_, err = draftService.SaveDraft(ctx, owner, consultation.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{
			Assessment: &models.AssessmentSection{
				Summary:  "Legacy inventory tracking causes double allocation during peak hours.",
				Findings: []string{"no row locking on stock table", "manual reconciliation every Friday"},
			},
			Recommendations: &models.RecommendationsSection{
				Items: []models.Recommendation{
					{Title: "Introduce transactional stock reservations", Priority: "high"},
					{Title: "Automate weekly reconciliation", Priority: "medium"},
				},
			},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to save consultation draft: %v", err)
	}

	consultation, err = promotionService.CompleteDocument(ctx, owner, consultation.ID)
	if err != nil {
		log.Fatalf("❌ Failed to complete consultation: %v", err)
	}
	log.Printf("✅ Consultation %s completed at version %d", consultation.DocumentNumber, consultation.Version)

	// An invoice left in draft status.
	log.Println("📝 Seeding draft invoice...")
	invoice, err := docService.CreateDocument(ctx, owner, &services.CreateDocumentRequest{
		DocumentType: "invoice",
		InitialPayload: models.Payload{
			Client: &models.ClientSection{Name: "Acme Manufacturing"},
			Billing: &models.BillingSection{
				Currency:   "USD",
				HourlyRate: decimal.NewFromInt(180),
				Hours:      decimal.NewFromInt(12),
				Total:      decimal.NewFromInt(2160),
			},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to create invoice: %v", err)
	}
	log.Printf("✅ Invoice %s created", invoice.DocumentNumber)

	// A proposal with a stale draft: the editor saves against version 1, then
	// the owner promotes their own edit, leaving the editor's draft behind.
	log.Println("📝 Seeding proposal with a stale-draft conflict...")
	proposal, err := docService.CreateDocument(ctx, owner, &services.CreateDocumentRequest{
		DocumentType: "proposal",
		InitialPayload: models.Payload{
			Client: &models.ClientSection{Name: "Borealis Retail"},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to create proposal: %v", err)
	}

	_, err = draftService.SaveDraft(ctx, editor, proposal.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{
			Notes: &models.NotesSection{Text: "Pending scope confirmation from the client."},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to save editor draft: %v", err)
	}

	_, err = draftService.SaveDraft(ctx, owner, proposal.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{
			Client: &models.ClientSection{Name: "Borealis Retail Group", Company: "Borealis"},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to save owner draft: %v", err)
	}
	if _, err := promotionService.PromoteDraft(ctx, owner, proposal.ID); err != nil {
		log.Fatalf("❌ Failed to promote owner draft: %v", err)
	}
	log.Printf("✅ Proposal %s promoted; editor draft is now stale (conflict scenario)", proposal.DocumentNumber)

	log.Println("🎉 Seeding complete!")
}
