package cmd

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/trip"

	"github.com/mitchellh/mapstructure"
)

const plannerEnvPrefix = "PLANNER_"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaHost             string
	KafkaConsumerGroup    string
	KafkaRouteEventsTopic string
	KafkaTelemetryTopic   string

	S3Region   string
	S3Endpoint string
	S3Bucket   string
	S3Prefix   string

	OriginLat      float64
	OriginLon      float64
	PlannerCron    string
	PlannerTimeout time.Duration
	// Planner holds the optimization parameters without a departure time.
	Planner trip.OptimizationParameters

	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig reads the configuration through getenv. PLANNER_<FIELD> variables
// override single optimization parameters, e.g. PLANNER_MAX_TRIP_WEIGHT_KG=3500.
func LoadConfig(getenv func(string) string, environ []string) (Config, error) {
	cfg := Config{
		HTTPPort:              withDefault(getenv("HTTP_PORT"), "8080"),
		DBHost:                getenv("DB_HOST"),
		DBPort:                withDefault(getenv("DB_PORT"), "5432"),
		DBUser:                getenv("DB_USER"),
		DBPassword:            getenv("DB_PASSWORD"),
		DBName:                getenv("DB_NAME"),
		DBSslMode:             withDefault(getenv("DB_SSLMODE"), "disable"),
		KafkaHost:             getenv("KAFKA_HOST"),
		KafkaConsumerGroup:    withDefault(getenv("KAFKA_CONSUMER_GROUP"), "tripplanner"),
		KafkaRouteEventsTopic: withDefault(getenv("KAFKA_ROUTE_EVENTS_TOPIC"), "route-events"),
		KafkaTelemetryTopic:   withDefault(getenv("KAFKA_ROUTE_TELEMETRY_TOPIC"), "route-telemetry"),
		S3Region:              withDefault(getenv("S3_REGION"), "us-east-1"),
		S3Endpoint:            getenv("S3_ENDPOINT"),
		S3Bucket:              getenv("S3_BUCKET"),
		S3Prefix:              withDefault(getenv("S3_PREFIX"), "manifests"),
		PlannerCron:           withDefault(getenv("PLANNER_CRON"), "0 */15 * * * *"),
		RateLimitBurst:        20,
	}

	var errList []error
	cfg.OriginLat, errList = parseFloat(getenv, "ORIGIN_LAT", errList)
	cfg.OriginLon, errList = parseFloat(getenv, "ORIGIN_LON", errList)
	cfg.RateLimitRPS, errList = parseFloat(getenv, "RATE_LIMIT_RPS", errList)
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 10
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			errList = append(errList, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
		}
		cfg.RateLimitBurst = burst
	}

	cfg.PlannerTimeout = 2 * time.Minute
	if v := getenv("PLANNER_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			errList = append(errList, fmt.Errorf("PLANNER_TIMEOUT: %w", err))
		}
		cfg.PlannerTimeout = timeout
	}

	planner, err := plannerParameters(environ)
	errList = append(errList, err)
	cfg.Planner = planner

	if err = errors.Join(errList...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Origin returns the manufacturing origin.
func (c Config) Origin() (kernel.Location, error) {
	return kernel.NewLocation(c.OriginLat, c.OriginLon)
}

// Parameters returns the configured optimization parameters for a departure at departAt.
func (c Config) Parameters(departAt time.Time) trip.OptimizationParameters {
	p := c.Planner
	p.DepartAt = departAt
	return p
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// KafkaBrokers splits KAFKA_HOST on commas. Empty when Kafka is not configured.
func (c Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaHost, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func plannerParameters(environ []string) (trip.OptimizationParameters, error) {
	params := trip.DefaultParameters(time.Time{})

	overrides := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, plannerEnvPrefix) {
			continue
		}
		overrides[strings.ToLower(strings.TrimPrefix(key, plannerEnvPrefix))] = value
	}
	delete(overrides, "cron")
	delete(overrides, "timeout")

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       stringToFloatHook,
	})
	if err != nil {
		return trip.OptimizationParameters{}, err
	}
	if err = decoder.Decode(overrides); err != nil {
		return trip.OptimizationParameters{}, fmt.Errorf("planner parameters: %w", err)
	}

	return params, nil
}

// stringToFloatHook parses float fields strictly; weak decoding alone accepts "".
func stringToFloatHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}
	s, _ := data.(string)
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseFloat(getenv func(string) string, key string, errList []error) (float64, []error) {
	v := getenv(key)
	if v == "" {
		return 0, errList
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, append(errList, fmt.Errorf("%s: %w", key, err))
	}
	return f, errList
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
