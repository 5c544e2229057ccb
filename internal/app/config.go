package app

import (
	"strings"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/services"
	"github.com/yellowpin/yellowpin-backend/internal/utils"
)

type Config struct {
	JWTSecretKey         string
	Port                 string
	AllowOrigins         []string
	SummarizeParallelism int
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	port := utils.GetEnv("PORT", "8080", log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)
	summarizeParallelism := utils.GetEnvAsInt("SUMMARIZE_PARALLELISM", services.DefaultSummarizeParallelism, log)
	return Config{
		JWTSecretKey:         jwtSecretKey,
		Port:                 port,
		AllowOrigins:         strings.Split(origins, ","),
		SummarizeParallelism: summarizeParallelism,
	}
}
