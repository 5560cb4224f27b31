package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"land_proforma/pkg/api/assumptions"
	"land_proforma/pkg/api/config"
	"land_proforma/pkg/api/documents"
	"land_proforma/pkg/api/exchange"
	"land_proforma/pkg/api/navigator"
	"land_proforma/pkg/api/projects"
	"land_proforma/pkg/api/reports"
	"land_proforma/pkg/core/agent"
	"land_proforma/pkg/core/document"
	"land_proforma/pkg/core/prompt"
	"land_proforma/pkg/core/report"
	"land_proforma/pkg/core/store"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var agentMgr *agent.Manager

func main() {
	// Load environment variables
	godotenv.Load()
	ctx := context.Background()

	// Initialize Prompt Library
	// Determine resources path (relative to executable or working directory)
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		// Try from executable directory
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to hardcoded prompts")
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", prompt.Get().Count(), resourcesPath)
	}

	// Initialize manager from config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr = agent.NewManager(agentCfg)

	// Database: RDS with IAM auth when an endpoint is configured, plain
	// DATABASE_URL otherwise. Either failing leaves the pool nil and the
	// handlers fall back to file-backed snapshots.
	if endpoint := os.Getenv("RDS_ENDPOINT"); endpoint != "" {
		port, _ := strconv.Atoi(os.Getenv("RDS_PORT"))
		err := store.InitDBWithIAM(ctx, store.RDSConfig{
			Profile:  os.Getenv("AWS_PROFILE"),
			Region:   os.Getenv("AWS_REGION"),
			Endpoint: endpoint,
			Port:     port,
			User:     os.Getenv("RDS_USER"),
			DBName:   os.Getenv("RDS_DBNAME"),
		})
		if err != nil {
			fmt.Printf("[WARNING] RDS connection failed: %v\n", err)
			fmt.Println("  Running with file-backed snapshots only")
		}
	} else if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[WARNING] Database unavailable: %v\n", err)
		fmt.Println("  Running with file-backed snapshots only")
	}
	vault := store.NewProjectVault(store.GetPool(), os.Getenv("SNAPSHOT_DIR"))

	projectRepo := store.NewProjectRepo()
	assumptionRepo := store.NewAssumptionRepo(store.GetPool())
	pricingRepo := store.NewPricingRepo(store.GetPool())
	documentRepo := store.NewDocumentRepo(store.GetPool())

	// Document bucket is optional; without it metadata still works and link
	// requests return 503.
	var objects document.Presigner
	if bucket := os.Getenv("DOCS_BUCKET"); bucket != "" {
		objectStore, err := document.NewObjectStore(ctx, document.StoreConfig{
			Profile:    os.Getenv("AWS_PROFILE"),
			Region:     os.Getenv("AWS_REGION"),
			BucketName: bucket,
		})
		if err != nil {
			fmt.Printf("[WARNING] Object store unavailable: %v\n", err)
		} else {
			objects = objectStore
			fmt.Printf("[DOCS] Using bucket %s\n", bucket)
		}
	}

	// Report commentary: direct Gemini client when a key is present,
	// otherwise route through the provider manager.
	var commentator report.Commentator
	if gc, err := report.NewGeminiCommentator(ctx); err == nil {
		commentator = gc
	} else {
		commentator = report.NewManagedCommentator(agentMgr)
	}

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Projects and land plan
	projectsHandler := projects.NewHandler(projectRepo, vault)
	http.HandleFunc("/api/projects", projectsHandler.HandleProjects)
	http.HandleFunc("/api/projects/containers", projectsHandler.HandleContainers)

	// Growth-rate assumptions
	assumptionsHandler := assumptions.NewHandler(assumptionRepo, vault)
	http.HandleFunc("/api/assumptions", assumptionsHandler.HandleAssumptions)

	// Documents
	documentsHandler := documents.NewHandler(documentRepo, vault, objects)
	http.HandleFunc("/api/documents", documentsHandler.HandleDocuments)
	http.HandleFunc("/api/documents/link", documentsHandler.HandleLink)

	// AI navigation
	navigatorHandler := navigator.NewHandler(agentMgr, projectRepo, vault)
	http.HandleFunc("/api/assistant/navigate", navigatorHandler.HandleNavigationIntent)

	// Import / export
	exchangeHandler := exchange.NewHandler(projectRepo, assumptionRepo, pricingRepo, documentRepo, vault)
	http.HandleFunc("/api/import", exchangeHandler.HandleImport)
	http.HandleFunc("/api/import/stream", exchangeHandler.HandleImportStream)
	http.HandleFunc("/api/import/pricing", exchangeHandler.HandlePricingImport)
	http.HandleFunc("/api/export", exchangeHandler.HandleExport)

	// Reports
	reportsHandler := reports.NewHandler(projectRepo, assumptionRepo, pricingRepo, vault, commentator)
	http.HandleFunc("/api/report", reportsHandler.HandleReport)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - GET/POST/PUT/DELETE /api/projects")
	fmt.Println("  - GET/POST /api/projects/containers")
	fmt.Println("  - GET/POST/PUT/DELETE /api/assumptions")
	fmt.Println("  - GET/POST/DELETE /api/documents")
	fmt.Println("  - GET  /api/documents/link")
	fmt.Println("  - POST /api/assistant/navigate  (AI navigation)")
	fmt.Println("  - POST /api/import")
	fmt.Println("  - GET  /api/import/stream  (SSE streaming)")
	fmt.Println("  - POST /api/import/pricing")
	fmt.Println("  - GET  /api/export")
	fmt.Println("  - GET  /api/report")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
