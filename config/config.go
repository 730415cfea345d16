package config

import (
	"errors"
	"fmt"
	"image"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds runtime configuration for detection, triggering and app behavior.
// Every field is loaded independently from a JSON file; a key that is missing,
// undecodable or out of range keeps its default.
type Config struct {
	Debug bool `json:"debug"`

	// Capture rectangle in screen coordinates (x2/y2 exclusive).
	ROIX1 int `json:"roi_x1" validate:"gte=0"`
	ROIY1 int `json:"roi_y1" validate:"gte=0"`
	ROIX2 int `json:"roi_x2" validate:"gtfield=ROIX1"`
	ROIY2 int `json:"roi_y2" validate:"gtfield=ROIY1"`

	// Detection parameters
	HexGrey                string  `json:"hex_grey" validate:"len=7,hexcolor"`
	HexWhite               string  `json:"hex_white" validate:"len=7,hexcolor"`
	ColorTolerance         int     `json:"color_tolerance" validate:"gte=0,lte=255"`
	BarThicknessFraction   float64 `json:"bar_thickness_fraction" validate:"gte=0,lte=1"`
	WhiteAreaWidthIncrease int     `json:"white_area_width_increase" validate:"gte=0"`
	GreyLineMinArea        int     `json:"grey_line_min_area" validate:"gte=0"`
	WhiteMinArea           int     `json:"white_min_area" validate:"gte=0"`
	TrackStrategy          string  `json:"track_strategy" validate:"oneof=annulus dark"`
	DarkThreshold          int     `json:"dark_threshold" validate:"gte=0,lte=255"`

	// Automation parameters
	MiddleThreshold      int     `json:"middle_threshold" validate:"gte=0"`
	ClickCooldownSeconds float64 `json:"click_cooldown_seconds" validate:"gte=0,lte=3600"`
	StopKey              string  `json:"stop_key" validate:"required"`

	// Loop timing and capture backend
	CaptureBackend string `json:"capture_backend" validate:"oneof=screenshot gdi"`
	TickIntervalMS int    `json:"tick_interval_ms" validate:"gte=1"`
	CaptureRetryMS int    `json:"capture_retry_ms" validate:"gte=1"`
	ErrorBackoffMS int    `json:"error_backoff_ms" validate:"gte=1"`
	PreviewPollMS  int    `json:"preview_poll_ms" validate:"gte=1"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                  false,
		ROIX1:                  960,
		ROIY1:                  437,
		ROIX2:                  1080,
		ROIY2:                  557,
		HexGrey:                "#485163",
		HexWhite:               "#cecece",
		ColorTolerance:         15,
		BarThicknessFraction:   0.15,
		WhiteAreaWidthIncrease: 5,
		GreyLineMinArea:        10,
		WhiteMinArea:           50,
		TrackStrategy:          "annulus",
		DarkThreshold:          60,
		MiddleThreshold:        15,
		ClickCooldownSeconds:   0.5,
		StopKey:                "ESC",
		CaptureBackend:         "screenshot",
		TickIntervalMS:         10,
		CaptureRetryMS:         1,
		ErrorBackoffMS:         1000,
		PreviewPollMS:          10,
	}
}

// FallbackError lists the keys that were replaced by their defaults.
// The configuration it accompanies is still complete and usable.
type FallbackError struct {
	Keys []string
}

func (e *FallbackError) Error() string {
	return "config: defaults used for " + strings.Join(e.Keys, ", ")
}

var validate = validator.New()

// rectFields are validated as one unit: a bad corner resets the whole rectangle.
var rectFields = []string{"ROIX1", "ROIY1", "ROIX2", "ROIY2"}

// Validate resets every field violating its constraint to the default value.
// It returns a *FallbackError naming the reset keys, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	def := reflect.ValueOf(DefaultConfig()).Elem()
	cur := reflect.ValueOf(c).Elem()
	var reset []string
	for pass := 0; pass < 2; pass++ {
		err := validate.Struct(c)
		if err == nil {
			break
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			names := []string{fe.StructField()}
			if isRectField(fe.StructField()) {
				names = rectFields
			}
			for _, name := range names {
				cur.FieldByName(name).Set(def.FieldByName(name))
				reset = append(reset, jsonKey(name))
			}
		}
	}
	if len(reset) == 0 {
		return nil
	}
	return &FallbackError{Keys: dedupe(reset)}
}

// Load reads the configuration at path. A missing file is created with the
// defaults. Keys are decoded one by one; any key that fails keeps its default
// and is reported through a *FallbackError alongside the usable config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save(path)
		}
		return cfg, err
	}
	raw := map[string]jsoniter.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	fields := fieldsByKey(cfg)
	var failed []string
	for key := range fields {
		msg, ok := raw[key]
		if !ok || strings.TrimSpace(string(msg)) == "null" {
			continue
		}
		fv := fields[key]
		tmp := reflect.New(fv.Type())
		if err := json.Unmarshal(msg, tmp.Interface()); err != nil {
			failed = append(failed, key)
			continue
		}
		fv.Set(tmp.Elem())
	}
	if verr := cfg.Validate(); verr != nil {
		var fb *FallbackError
		if !errors.As(verr, &fb) {
			return cfg, verr
		}
		failed = append(failed, fb.Keys...)
	}
	if len(failed) > 0 {
		return cfg, &FallbackError{Keys: dedupe(failed)}
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Rect returns the capture rectangle.
func (c *Config) Rect() image.Rectangle {
	return image.Rect(c.ROIX1, c.ROIY1, c.ROIX2, c.ROIY2)
}

// MaxCooldown bounds the trigger cooldown window.
const MaxCooldown = time.Hour

// Cooldown returns the trigger cooldown window, clamped to [0, MaxCooldown].
func (c *Config) Cooldown() time.Duration {
	switch secs := c.ClickCooldownSeconds; {
	case secs <= 0 || secs != secs:
		return 0
	case secs >= MaxCooldown.Seconds():
		return MaxCooldown
	default:
		return time.Duration(secs * float64(time.Second))
	}
}

func (c *Config) TickInterval() time.Duration { return ms(c.TickIntervalMS) }
func (c *Config) CaptureRetry() time.Duration { return ms(c.CaptureRetryMS) }
func (c *Config) ErrorBackoff() time.Duration { return ms(c.ErrorBackoffMS) }
func (c *Config) PreviewPoll() time.Duration  { return ms(c.PreviewPollMS) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// fieldsByKey maps json keys to settable fields of cfg.
func fieldsByKey(cfg *Config) map[string]reflect.Value {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	out := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		key := tagName(t.Field(i))
		if key == "" {
			continue
		}
		out[key] = v.Field(i)
	}
	return out
}

func jsonKey(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	if k := tagName(f); k != "" {
		return k
	}
	return field
}

func tagName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

func isRectField(name string) bool {
	for _, f := range rectFields {
		if f == name {
			return true
		}
	}
	return false
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
