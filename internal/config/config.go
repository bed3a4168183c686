package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	CORSOrigins []string
	JWTSecret   string

	DB DBConfig

	ProfilesDir string

	QuestionCount   int
	RewardThreshold int
	RewardTimeout   time.Duration
	SessionTTL      time.Duration

	RewardIssuerURL string
	RewardIssuerKey string

	AMQPURL      string
	AMQPExchange string

	// Quiz generator variants
	IncludeTopics bool
	IncludeLore   bool

	LLM LLMConfig
}

// LLMConfig selects the model backend for in-character chat.
type LLMConfig struct {
	UseCLI  bool
	CLIPath string
	Mock    bool
	Model   string
	APIKey  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func FromEnv() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: csvOr("CORS_ORIGINS", "*"),
		JWTSecret:   getEnv("JWT_SECRET", "character-quiz-dev-signing-key"),

		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "quiz_user"),
			Password: getEnv("DB_PASSWORD", "quiz_password"),
			Name:     getEnv("DB_NAME", "character_quiz"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		ProfilesDir: getEnv("PROFILES_DIR", "./characters"),

		QuestionCount:   envInt("QUIZ_QUESTION_COUNT", 5),
		RewardThreshold: envPercent("QUIZ_REWARD_THRESHOLD", 60),
		RewardTimeout:   envDuration("REWARD_TIMEOUT", 30*time.Second),
		SessionTTL:      envDuration("SESSION_TTL", 2*time.Hour),

		RewardIssuerURL: os.Getenv("REWARD_ISSUER_URL"),
		RewardIssuerKey: os.Getenv("REWARD_ISSUER_API_KEY"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "character-quiz"),

		IncludeTopics: envBool("QUIZ_INCLUDE_TOPICS", false),
		IncludeLore:   envBool("QUIZ_INCLUDE_LORE", false),

		LLM: LLMConfig{
			UseCLI:  envBool("USE_CLI_GENERATOR", false),
			CLIPath: getEnv("CLAUDE_CLI_PATH", "claude"),
			Mock:    envBool("MOCK_GENERATOR", false),
			Model:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
			APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envPercent accepts 0 through 100. 0 rewards every completed quiz.
func envPercent(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 100 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func csvOr(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
