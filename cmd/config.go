package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/jobs"
)

// Config is the process configuration, read from the environment by LoadConfig.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Routing provider; an empty URL means Haversine estimates only.
	RoutingBaseURL           string
	RoutingAPIKey            string
	RoutingTimeout           time.Duration
	RoutingRequestsPerSecond float64
	RoutingBurst             int
	RoutingBreakerFailures   uint32
	RoutingBreakerOpen       time.Duration

	// Redis travel time cache; an empty address disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisCacheTTL time.Duration

	SchedulerCron     string
	SchedulerOptimize bool
	SchedulerTimeout  time.Duration
	SwapPasses        int
	Objectives        scheduling.Objectives
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the configuration through getenv. Unset optional values
// take defaults; malformed ones are reported together.
func LoadConfig(getenv func(string) string) (Config, error) {
	p := envParser{getenv: getenv}
	c := Config{
		HTTPPort:   p.str("HTTP_PORT", "8080"),
		DBHost:     p.str("DB_HOST", "localhost"),
		DBPort:     p.str("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER"),
		DBPassword: getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME"),
		DBSslMode:  p.str("DB_SSLMODE", "disable"),

		RoutingBaseURL:           getenv("ROUTING_BASE_URL"),
		RoutingAPIKey:            getenv("ROUTING_API_KEY"),
		RoutingTimeout:           p.duration("ROUTING_TIMEOUT", 2*time.Second),
		RoutingRequestsPerSecond: p.number("ROUTING_REQUESTS_PER_SECOND", 0),
		RoutingBurst:             p.integer("ROUTING_BURST", 0),
		RoutingBreakerFailures:   uint32(p.integer("ROUTING_BREAKER_FAILURES", 5)),
		RoutingBreakerOpen:       p.duration("ROUTING_BREAKER_OPEN_TIMEOUT", 30*time.Second),

		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       p.integer("REDIS_DB", 0),
		RedisCacheTTL: p.duration("REDIS_CACHE_TTL", 10*time.Minute),

		SchedulerCron:     p.str("SCHEDULER_CRON", jobs.DefaultBatchSchedule),
		SchedulerOptimize: p.boolean("SCHEDULER_OPTIMIZE", false),
		SchedulerTimeout:  p.duration("SCHEDULER_TIMEOUT", 5*time.Minute),
		SwapPasses:        p.integer("SCHEDULER_SWAP_PASSES", 0),
	}

	defaults := scheduling.DefaultObjectives()
	c.Objectives = scheduling.Objectives{
		Skill:           p.number("RANKING_WEIGHT_SKILL", defaults.Skill),
		Travel:          p.number("RANKING_WEIGHT_TRAVEL", defaults.Travel),
		Availability:    p.number("RANKING_WEIGHT_AVAILABILITY", defaults.Availability),
		Efficiency:      p.number("RANKING_WEIGHT_EFFICIENCY", defaults.Efficiency),
		WorkloadBalance: p.number("RANKING_WEIGHT_WORKLOAD_BALANCE", defaults.WorkloadBalance),
	}
	if err := c.Objectives.Validate(); err != nil {
		p.errs = append(p.errs, fmt.Errorf("ranking weights: %w", err))
	}
	if c.RoutingBreakerFailures == 0 {
		p.errs = append(p.errs, errors.New("ROUTING_BREAKER_FAILURES: must be positive"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return c, nil
}

type envParser struct {
	getenv func(string) string
	errs   []error
}

func (p *envParser) str(key, def string) string {
	if v := p.getenv(key); v != "" {
		return v
	}
	return def
}

func (p *envParser) integer(key string, def int) int {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a non-negative integer", key, v))
		return def
	}
	return n
}

func (p *envParser) number(key string, def float64) float64 {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a non-negative number", key, v))
		return def
	}
	return f
}

func (p *envParser) boolean(key string, def bool) bool {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}
