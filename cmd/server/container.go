package main

import (
	"log"
	"os"

	"github.com/Abraxas-365/craftable/ai/llm"
	"github.com/Abraxas-365/craftable/ai/providers/aiopenai"

	"github.com/Abraxas-365/nido/baby"
	"github.com/Abraxas-365/nido/baby/babyinfra"
	"github.com/Abraxas-365/nido/iam/auth"
	"github.com/Abraxas-365/nido/pkg/config"
	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/query/queryapi"
	"github.com/Abraxas-365/nido/query/queryinfra"
	"github.com/Abraxas-365/nido/query/querysrv"
	"github.com/Abraxas-365/nido/record"
	"github.com/Abraxas-365/nido/record/recordinfra"
	"github.com/Abraxas-365/nido/tool"
	"github.com/Abraxas-365/nido/tool/toolapi"
	"github.com/Abraxas-365/nido/tool/toolexec"
	"github.com/Abraxas-365/nido/tool/toolinfra"
	"github.com/Abraxas-365/nido/tool/toolsrv"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

// Container contains all application dependencies
type Container struct {
	// =================================================================
	// CONFIGURATION & INFRASTRUCTURE
	// =================================================================
	Config      *config.Config
	DB          *sqlx.DB
	RedisClient *redis.Client

	// =================================================================
	// AUTH
	// =================================================================
	TokenService   auth.TokenService
	AuthMiddleware *auth.AuthMiddleware

	// =================================================================
	// DOMAIN REPOSITORIES
	// =================================================================
	BabyRepo      baby.Repository
	FeedingRepo   record.FeedingRepository
	SleepPatterns record.SleepPatternProvider
	ToolRepo      tool.Repository
	ExecutionRepo tool.ExecutionRepository

	// =================================================================
	// TOOL EXECUTION 🛠️
	// =================================================================
	ToolRegistry     *tool.Registry
	ToolService      *toolsrv.ToolService
	ExecutionService *toolsrv.ExecutionService
	ExecutionJanitor *toolsrv.ExecutionJanitor

	// =================================================================
	// AI/LLM 🤖
	// =================================================================
	LLMClient *llm.Client

	// =================================================================
	// QUERY ORCHESTRATION 🧠
	// =================================================================
	SelectionCache query.SelectionCache
	Orchestrator   *querysrv.Orchestrator

	// =================================================================
	// API HANDLERS
	// =================================================================
	ToolHandler  *toolapi.ToolHandler
	QueryHandler *queryapi.QueryHandler
}

// NewContainer creates a new dependency container
func NewContainer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client) *Container {
	c := &Container{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
	}

	// Initialize dependencies in the correct order
	log.Println("📦 Initializing dependency container...")

	c.initAuthServices()
	c.initRepositories()
	c.initToolComponents()
	c.initLLMComponents() // LLM before the orchestrator
	c.initQueryComponents()
	c.initAPIHandlers()

	log.Println("✅ Dependency container initialized successfully")

	return c
}

// =================================================================
// AUTH INITIALIZATION 🔐
// =================================================================

func (c *Container) initAuthServices() {
	log.Println("  🔐 Initializing auth services...")

	c.TokenService = auth.NewJWTService(
		c.Config.Auth.JWTSecret,
		c.Config.Auth.AccessTokenTTL,
		c.Config.Auth.Issuer,
	)
	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService)

	log.Println("  ✅ Auth services initialized")
}

// =================================================================
// REPOSITORY INITIALIZATION 🗄️
// =================================================================

func (c *Container) initRepositories() {
	log.Println("  🗄️  Initializing repositories...")

	c.BabyRepo = babyinfra.NewPostgresBabyRepository(c.DB)
	c.FeedingRepo = recordinfra.NewPostgresFeedingRepository(c.DB)
	c.SleepPatterns = recordinfra.NewPostgresSleepPatternProvider(c.DB)
	c.ToolRepo = toolinfra.NewPostgresToolRepository(c.DB)
	c.ExecutionRepo = toolinfra.NewPostgresExecutionRepository(c.DB)

	log.Println("  ✅ Repositories initialized")
}

// =================================================================
// TOOL INITIALIZATION 🛠️
// =================================================================

func (c *Container) initToolComponents() {
	log.Println("  🛠️ Initializing tool components...")

	c.ToolRegistry = tool.NewRegistry()
	c.ToolRegistry.Register(toolexec.NewFeedingTracker(c.FeedingRepo))
	log.Println("    ✅ Registered feeding tracker executor")
	c.ToolRegistry.Register(toolexec.NewSleepAnalyzer(c.SleepPatterns))
	log.Println("    ✅ Registered sleep analyzer executor")

	c.ToolService = toolsrv.NewToolService(c.ToolRepo, c.ExecutionRepo)
	c.ExecutionService = toolsrv.NewExecutionService(
		c.ToolRepo,
		c.ExecutionRepo,
		c.ToolRegistry,
		c.BabyRepo,
	)

	c.ExecutionJanitor = toolsrv.NewExecutionJanitor(
		c.ExecutionRepo,
		c.Config.Claude.StaleExecutionAge,
	)
	if err := c.ExecutionJanitor.Start(); err != nil {
		log.Fatalf("❌ Failed to start execution janitor: %v", err)
	}
	log.Println("    ✅ Execution janitor started")

	log.Println("  ✅ Tool components initialized")
}

// =================================================================
// LLM INITIALIZATION 🤖
// =================================================================

func (c *Container) initLLMComponents() {
	log.Println("  🤖 Initializing LLM components...")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("  ⚠️  OPENAI_API_KEY not set, query selection will use keyword fallback only")
		return
	}

	provider := aiopenai.NewOpenAIProvider(apiKey)
	c.LLMClient = llm.NewClient(provider)

	log.Println("  ✅ LLM components initialized")
}

// =================================================================
// QUERY ORCHESTRATION INITIALIZATION 🧠
// =================================================================

func (c *Container) initQueryComponents() {
	log.Println("  🧠 Initializing query components...")

	if c.Config.Claude.CacheSelections {
		c.SelectionCache = queryinfra.NewRedisSelectionCache(c.RedisClient, c.Config.Claude.CacheTTL)
		log.Println("    ✅ Selection cache initialized")
	}

	// Un *llm.Client nil dentro de una interfaz no-nil rompería el check
	// del orquestador; solo lo pasamos cuando existe.
	var chat query.ChatClient
	if c.LLMClient != nil {
		chat = c.LLMClient
	}

	c.Orchestrator = querysrv.NewOrchestrator(
		c.ToolRepo,
		c.ExecutionService,
		chat,
		c.SelectionCache,
		c.Config.Claude,
	)

	log.Println("  ✅ Query components initialized")
}

// =================================================================
// API HANDLERS INITIALIZATION 🌐
// =================================================================

func (c *Container) initAPIHandlers() {
	log.Println("  🌐 Initializing API handlers...")

	c.ToolHandler = toolapi.NewToolHandler(c.ToolService, c.ExecutionService)
	c.QueryHandler = queryapi.NewQueryHandler(c.Orchestrator, c.BabyRepo)

	log.Println("  ✅ API handlers initialized")
}

// =================================================================
// LIFECYCLE & INTROSPECTION
// =================================================================

func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.ExecutionJanitor != nil {
		log.Println("  ⏰ Stopping execution janitor...")
		c.ExecutionJanitor.Stop()
	}

	if c.DB != nil {
		log.Println("  🗄️  Closing database connections...")
		c.DB.Close()
	}

	if c.RedisClient != nil {
		log.Println("  🔴 Closing Redis connections...")
		c.RedisClient.Close()
	}

	log.Println("✅ Container cleanup complete")
}

func (c *Container) HealthCheck() map[string]bool {
	health := make(map[string]bool)

	if c.DB != nil {
		err := c.DB.Ping()
		health["database"] = err == nil
	} else {
		health["database"] = false
	}

	if c.RedisClient != nil {
		err := c.RedisClient.Ping(c.RedisClient.Context()).Err()
		health["redis"] = err == nil
	} else {
		health["redis"] = false
	}

	health["tool_registry"] = c.ToolRegistry != nil
	health["execution_service"] = c.ExecutionService != nil
	health["orchestrator"] = c.Orchestrator != nil
	health["llm_client"] = c.LLMClient != nil

	return health
}

func (c *Container) GetServiceNames() []string {
	return []string{
		"ToolService",
		"ExecutionService",
		"ExecutionJanitor",
		"Orchestrator",
		"TokenService",
	}
}

func (c *Container) GetRepositoryNames() []string {
	return []string{
		"BabyRepo",
		"FeedingRepo",
		"SleepPatterns",
		"ToolRepo",
		"ExecutionRepo",
	}
}
