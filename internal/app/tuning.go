package app

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/EndaleK/Synaptic-sub012/internal/platform/logger"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

const tuningPathEnv = "SRS_TUNING_PATH"

//go:embed tuning.yaml
var tuningFS embed.FS

type yamlTuning struct {
	Scheduler yamlSchedulerTuning `yaml:"scheduler"`
}

type yamlSchedulerTuning struct {
	DefaultEase       float64 `yaml:"default_ease"`
	MinEase           float64 `yaml:"min_ease"`
	LapseEasePenalty  float64 `yaml:"lapse_ease_penalty"`
	HardEasePenalty   float64 `yaml:"hard_ease_penalty"`
	EasyEaseBonus     float64 `yaml:"easy_ease_bonus"`
	HardIntervalScale float64 `yaml:"hard_interval_scale"`
	EasyIntervalScale float64 `yaml:"easy_interval_scale"`

	FirstIntervalDays  int `yaml:"first_interval_days"`
	SecondIntervalDays int `yaml:"second_interval_days"`
	LapseIntervalDays  int `yaml:"lapse_interval_days"`

	YoungIntervalDays  int `yaml:"young_interval_days"`
	MatureIntervalDays int `yaml:"mature_interval_days"`
}

var tuningOnce sync.Once
var tuningCache srs.Params
var tuningErr error

// loadTuning resolves the scheduler parameters once per process. A broken
// or missing file falls back to the package defaults.
func loadTuning(log *logger.Logger) srs.Params {
	tuningOnce.Do(func() {
		tuningCache, tuningErr = parseTuning(readTuning())
	})
	if tuningErr != nil {
		if log != nil {
			log.Warn("scheduler tuning load failed; using defaults", "error", tuningErr)
		}
		return srs.DefaultParams()
	}
	return tuningCache
}

func readTuning() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(tuningPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return tuningFS.ReadFile("tuning.yaml")
}

func parseTuning(data []byte, readErr error) (srs.Params, error) {
	if readErr != nil {
		return srs.Params{}, readErr
	}

	var spec yamlTuning
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return srs.Params{}, err
	}
	if err := validateTuning(spec.Scheduler); err != nil {
		return srs.Params{}, err
	}

	s := spec.Scheduler
	return srs.Params{
		DefaultEase:        s.DefaultEase,
		MinEase:            s.MinEase,
		LapseEasePenalty:   s.LapseEasePenalty,
		HardEasePenalty:    s.HardEasePenalty,
		EasyEaseBonus:      s.EasyEaseBonus,
		HardIntervalScale:  s.HardIntervalScale,
		EasyIntervalScale:  s.EasyIntervalScale,
		FirstIntervalDays:  s.FirstIntervalDays,
		SecondIntervalDays: s.SecondIntervalDays,
		LapseIntervalDays:  s.LapseIntervalDays,
		YoungIntervalDays:  s.YoungIntervalDays,
		MatureIntervalDays: s.MatureIntervalDays,
	}, nil
}

func validateTuning(s yamlSchedulerTuning) error {
	if s.DefaultEase < 0 || s.MinEase < 0 {
		return errors.New("ease values must not be negative")
	}
	if s.MinEase > 0 && s.DefaultEase > 0 && s.DefaultEase < s.MinEase {
		return fmt.Errorf("default_ease %v below min_ease %v", s.DefaultEase, s.MinEase)
	}
	if s.HardIntervalScale < 0 || s.EasyIntervalScale < 0 {
		return errors.New("interval scales must not be negative")
	}
	if s.FirstIntervalDays < 0 || s.SecondIntervalDays < 0 || s.LapseIntervalDays < 0 {
		return errors.New("interval days must not be negative")
	}
	if s.YoungIntervalDays < 0 || s.MatureIntervalDays < 0 {
		return errors.New("maturity bounds must not be negative")
	}
	if s.YoungIntervalDays > 0 && s.MatureIntervalDays > 0 && s.MatureIntervalDays <= s.YoungIntervalDays {
		return fmt.Errorf("mature_interval_days %d must exceed young_interval_days %d", s.MatureIntervalDays, s.YoungIntervalDays)
	}
	return nil
}
