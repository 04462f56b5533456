package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where clinisense stores its own data
	DSN string
	// Driver is the database driver (sqlite only for now)
	Driver string
	// Version is the current version of server
	Version string

	// AI configuration
	AIEmbeddingProvider  string // CLINISENSE_AI_EMBEDDING_PROVIDER (default: openai)
	AIEmbeddingModel     string // CLINISENSE_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIEmbeddingDimension int    // CLINISENSE_AI_EMBEDDING_DIMENSION (default: 1536)
	AILLMProvider        string // CLINISENSE_AI_LLM_PROVIDER (default: openai)
	AILLMModel           string // CLINISENSE_AI_LLM_MODEL (default: gpt-4o-mini)
	AIAPIKey             string // CLINISENSE_AI_API_KEY
	AIBaseURL            string // CLINISENSE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIOllamaBaseURL      string // CLINISENSE_AI_OLLAMA_BASE_URL (default: http://localhost:11434)
	AITimeoutSeconds     int    // CLINISENSE_AI_TIMEOUT_SECONDS (default: 30)

	// De-identification configuration
	DeidDefaultStrategy string // CLINISENSE_DEID_DEFAULT_STRATEGY (default: REDACTION)
	DeidPreserveMedical bool   // CLINISENSE_DEID_PRESERVE_MEDICAL (default: true)

	// Retrieval configuration
	RAGChunkSize           int     // CLINISENSE_RAG_CHUNK_SIZE (default: 500)
	RAGChunkOverlap        int     // CLINISENSE_RAG_CHUNK_OVERLAP (default: 50)
	RAGTopK                int     // CLINISENSE_RAG_TOP_K (default: 5)
	RAGSimilarityThreshold float64 // CLINISENSE_RAG_SIMILARITY_THRESHOLD (default: 0.5)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIConfigured returns true if a remote provider can be reached.
// When false, the embedding and LLM services run on local fallbacks only.
func (p *Profile) IsAIConfigured() bool {
	return p.AIAPIKey != "" || p.AILLMProvider == "ollama"
}

// FromEnv loads configuration from CLINISENSE_* environment variables.
func (p *Profile) FromEnv() {
	getEnv := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return defaultValue
	}
	getIntEnv := func(key string, defaultValue int) int {
		if value := os.Getenv(key); value != "" {
			if n, err := strconv.Atoi(value); err == nil {
				return n
			}
		}
		return defaultValue
	}
	getFloatEnv := func(key string, defaultValue float64) float64 {
		if value := os.Getenv(key); value != "" {
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				return f
			}
		}
		return defaultValue
	}

	p.AIEmbeddingProvider = getEnv("CLINISENSE_AI_EMBEDDING_PROVIDER", "openai")
	p.AIEmbeddingModel = getEnv("CLINISENSE_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.AIEmbeddingDimension = getIntEnv("CLINISENSE_AI_EMBEDDING_DIMENSION", 1536)
	p.AILLMProvider = getEnv("CLINISENSE_AI_LLM_PROVIDER", "openai")
	p.AILLMModel = getEnv("CLINISENSE_AI_LLM_MODEL", "gpt-4o-mini")
	p.AIAPIKey = os.Getenv("CLINISENSE_AI_API_KEY")
	p.AIBaseURL = getEnv("CLINISENSE_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIOllamaBaseURL = getEnv("CLINISENSE_AI_OLLAMA_BASE_URL", "http://localhost:11434")
	p.AITimeoutSeconds = getIntEnv("CLINISENSE_AI_TIMEOUT_SECONDS", 30)

	p.DeidDefaultStrategy = getEnv("CLINISENSE_DEID_DEFAULT_STRATEGY", "REDACTION")
	p.DeidPreserveMedical = getEnv("CLINISENSE_DEID_PRESERVE_MEDICAL", "true") == "true"

	p.RAGChunkSize = getIntEnv("CLINISENSE_RAG_CHUNK_SIZE", 500)
	p.RAGChunkOverlap = getIntEnv("CLINISENSE_RAG_CHUNK_OVERLAP", 50)
	p.RAGTopK = getIntEnv("CLINISENSE_RAG_TOP_K", 5)
	p.RAGSimilarityThreshold = getFloatEnv("CLINISENSE_RAG_SIMILARITY_THRESHOLD", 0.5)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("clinisense_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.RAGChunkSize <= 0 || p.RAGChunkOverlap < 0 || p.RAGChunkOverlap >= p.RAGChunkSize {
		return errors.Errorf("invalid chunking config: size %d, overlap %d", p.RAGChunkSize, p.RAGChunkOverlap)
	}

	return nil
}
