// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/lpernett/godotenv"
)

// Classifier mode values for the MUDRA_CLASSIFIER variable.
const (
	ClassifierForest   = "forest"
	ClassifierTemplate = "template"
)

// Config holds all startup configuration for the service.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// MongoURI is the event store connection string.
	MongoURI string
	// DBName is the event store database name.
	DBName string
	// StoreTimeout bounds every persistence call.
	StoreTimeout time.Duration

	// ModelPath is the gesture forest artifact path.
	ModelPath string
	// TemplateDB is the sqlite gesture template database path.
	TemplateDB string
	// ClassifierMode selects the gesture classifier variant (forest or template).
	ClassifierMode string

	// MinConfidence is the minimum gesture confidence for event emission.
	MinConfidence float64
	// DebounceFrames is the consecutive-frame count required before a
	// recognition result is considered stable.
	DebounceFrames int

	// CameraID is the capture device index.
	CameraID int
	// MotionThresh is the percentage of changed pixels that counts as motion.
	MotionThresh float64
}

// Load reads configuration from a .env file (if present) and the process
// environment. Malformed numeric values are returned as errors so startup
// can fail fast.
func Load() (Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		Addr:           getEnv("MUDRA_ADDR", ":8080"),
		MongoURI:       getEnv("MUDRA_MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnv("MUDRA_DB_NAME", "mudra"),
		ModelPath:      getEnv("MUDRA_MODEL_PATH", "models/gesture_forest.json"),
		TemplateDB:     getEnv("MUDRA_TEMPLATE_DB", ""),
		ClassifierMode: getEnv("MUDRA_CLASSIFIER", ClassifierForest),
	}

	if cfg.ClassifierMode != ClassifierForest && cfg.ClassifierMode != ClassifierTemplate {
		return Config{}, fmt.Errorf("invalid MUDRA_CLASSIFIER %q", cfg.ClassifierMode)
	}

	var err error
	if cfg.MinConfidence, err = getFloat("MUDRA_MIN_CONFIDENCE", 0.6); err != nil {
		return Config{}, err
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return Config{}, fmt.Errorf("MUDRA_MIN_CONFIDENCE %f outside [0,1]", cfg.MinConfidence)
	}
	if cfg.DebounceFrames, err = getInt("MUDRA_DEBOUNCE_FRAMES", 3); err != nil {
		return Config{}, err
	}
	if cfg.DebounceFrames < 1 {
		return Config{}, fmt.Errorf("MUDRA_DEBOUNCE_FRAMES must be >= 1, got %d", cfg.DebounceFrames)
	}
	if cfg.CameraID, err = getInt("MUDRA_CAMERA_ID", 0); err != nil {
		return Config{}, err
	}
	if cfg.MotionThresh, err = getFloat("MUDRA_MOTION_THRESHOLD", 1.0); err != nil {
		return Config{}, err
	}

	timeoutMs, err := getInt("MUDRA_STORE_TIMEOUT_MS", 2000)
	if err != nil {
		return Config{}, err
	}
	if timeoutMs <= 0 {
		return Config{}, fmt.Errorf("MUDRA_STORE_TIMEOUT_MS must be positive, got %d", timeoutMs)
	}
	cfg.StoreTimeout = time.Duration(timeoutMs) * time.Millisecond

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
