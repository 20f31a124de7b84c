package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	// Parametros del motor de sugerencias.
	KNNNeighbors    int     `env:"KNN_NEIGHBORS" envDefault:"5"`
	SAInitialTemp   float64 `env:"SA_INITIAL_TEMP" envDefault:"100"`
	SACoolingRate   float64 `env:"SA_COOLING_RATE" envDefault:"0.95"`
	SAStepSize      float64 `env:"SA_STEP_SIZE" envDefault:"0.05"`
	SAMaxIterations int     `env:"SA_MAX_ITERATIONS" envDefault:"2000"`
	SANumRestarts   int     `env:"SA_NUM_RESTARTS" envDefault:"1"`

	SuggestionCacheTTLMinutes int `env:"SUGGESTION_CACHE_TTL_MINUTES" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
