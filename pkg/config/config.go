// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mindbot/pkg/draw"
	"mindbot/pkg/ocr"
	"mindbot/pkg/screen"
)

// ErrInvalidConfig is returned when a setting cannot be parsed or is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Region defaults match the layout the bot was calibrated against.
var (
	DefaultRegion1     = screen.Region{Left: 1344, Top: 273, Right: 1398, Bottom: 327}
	DefaultRegion2     = screen.Region{Left: 1476, Top: 270, Right: 1550, Bottom: 324}
	DefaultWriteRegion = screen.Region{Left: 1202, Top: 510, Right: 1626, Bottom: 903}
)

const (
	DefaultCounterFile         = "tmcll.txt"
	DefaultRecognitionInterval = 150 * time.Millisecond
	DefaultRepeatDelay         = 400 * time.Millisecond
	DefaultWorkers             = 4
	DefaultLanguage            = "eng"
)

type Config struct {
	Region1     screen.Region
	Region2     screen.Region
	WriteRegion screen.Region

	CounterFile string
	DebugImages bool
	DebugDir    string

	OCRLanguage   string
	OCRWhitelist  string
	OCRWorkers    int
	MinConfidence float64

	RecognitionInterval time.Duration // pause at the end of every iteration
	RepeatDelay         time.Duration // wait before re-drawing an already answered pair
	Draw                draw.Timing

	LogLevel string
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Region1:             DefaultRegion1,
		Region2:             DefaultRegion2,
		WriteRegion:         DefaultWriteRegion,
		CounterFile:         DefaultCounterFile,
		DebugImages:         true,
		DebugDir:            ".",
		OCRLanguage:         DefaultLanguage,
		OCRWorkers:          DefaultWorkers,
		MinConfidence:       ocr.MinConfidence,
		RecognitionInterval: DefaultRecognitionInterval,
		RepeatDelay:         DefaultRepeatDelay,
		Draw:                draw.DefaultTiming(),
		LogLevel:            "info",
	}
}

// Load reads ./.env (without overriding variables already set), then
// overlays environment variables on Default.
func Load() (Config, error) {
	LoadDotEnv(".env")
	return FromEnv(os.LookupEnv)
}

// FromEnv overlays the variables visible through lookup on Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	c.Region1 = p.region("REGION1", c.Region1)
	c.Region2 = p.region("REGION2", c.Region2)
	c.WriteRegion = p.region("WRITE_REGION", c.WriteRegion)
	c.CounterFile = p.str("COUNTER_FILE", c.CounterFile)
	c.DebugImages = p.boolean("DEBUG_IMAGES", c.DebugImages)
	c.DebugDir = p.str("DEBUG_DIR", c.DebugDir)
	c.OCRLanguage = p.str("OCR_LANG", c.OCRLanguage)
	c.OCRWhitelist = p.str("OCR_WHITELIST", c.OCRWhitelist)
	c.OCRWorkers = p.integer("OCR_WORKERS", c.OCRWorkers)
	c.MinConfidence = p.float("OCR_MIN_CONFIDENCE", c.MinConfidence)
	c.RecognitionInterval = p.duration("RECOGNITION_INTERVAL", c.RecognitionInterval)
	c.RepeatDelay = p.duration("REPEAT_DELAY", c.RepeatDelay)
	c.Draw.MoveDuration = p.duration("MOVE_DURATION", c.Draw.MoveDuration)
	c.Draw.DrawDelay = p.duration("DRAW_DELAY", c.Draw.DrawDelay)
	c.Draw.SettleDelay = p.duration("SETTLE_DELAY", c.Draw.SettleDelay)
	c.LogLevel = strings.ToLower(p.str("LOG_LEVEL", c.LogLevel))

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges that parsing alone cannot.
func (c Config) Validate() error {
	var errs []error
	for name, r := range map[string]screen.Region{"REGION1": c.Region1, "REGION2": c.Region2, "WRITE_REGION": c.WriteRegion} {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err))
		}
	}
	if c.CounterFile == "" {
		errs = append(errs, fmt.Errorf("%w: COUNTER_FILE is empty", ErrInvalidConfig))
	}
	if c.OCRWorkers < 2 {
		// both regions must be recognizable at the same time
		errs = append(errs, fmt.Errorf("%w: OCR_WORKERS must be at least 2, got %d", ErrInvalidConfig, c.OCRWorkers))
	}
	if c.MinConfidence < 0 || c.MinConfidence >= 1 {
		errs = append(errs, fmt.Errorf("%w: OCR_MIN_CONFIDENCE must be in [0,1), got %v", ErrInvalidConfig, c.MinConfidence))
	}
	for name, d := range map[string]time.Duration{
		"RECOGNITION_INTERVAL": c.RecognitionInterval,
		"REPEAT_DELAY":         c.RepeatDelay,
		"MOVE_DURATION":        c.Draw.MoveDuration,
		"DRAW_DELAY":           c.Draw.DrawDelay,
		"SETTLE_DELAY":         c.Draw.SettleDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%w: %s is negative", ErrInvalidConfig, name))
		}
	}
	return errors.Join(errs...)
}

// DiagnosticDir returns the directory for debug images, or "" when disabled.
func (c Config) DiagnosticDir() string {
	if !c.DebugImages {
		return ""
	}
	return c.DebugDir
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err))
}

func (p *parser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return i
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	p.fail(key, v, errors.New("not a boolean"))
	return def
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) region(key string, def screen.Region) screen.Region {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	r, err := screen.ParseRegion(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return r
}

// LoadDotEnv loads key=value pairs from path into the environment without
// overwriting variables that are already set. Lines starting with # are ignored.
func LoadDotEnv(path string) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return // no .env file
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.Trim(strings.TrimSpace(line[eq+1:]), `"'`)
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
