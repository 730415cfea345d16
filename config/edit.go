package config

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// Apply returns a copy of c with the textual edits applied, keyed by JSON key.
// Keys that are unknown, do not parse or fail validation are reported through
// a *FallbackError; the copy should only be saved when the error is nil.
// c itself is never modified.
func (c *Config) Apply(edits map[string]string) (*Config, error) {
	out := *c
	fields := fieldsByKey(&out)
	var bad []string
	for key, text := range edits {
		fv, ok := fields[key]
		if !ok || setText(fv, strings.TrimSpace(text)) != nil {
			bad = append(bad, key)
		}
	}
	if err := out.Validate(); err != nil {
		var fb *FallbackError
		if !errors.As(err, &fb) {
			return &out, err
		}
		bad = append(bad, fb.Keys...)
	}
	if len(bad) > 0 {
		return &out, &FallbackError{Keys: dedupe(bad)}
	}
	return &out, nil
}

func setText(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Int:
		i, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		fv.SetInt(int64(i))
	case reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	default:
		return errors.New("config: unsupported field kind " + fv.Kind().String())
	}
	return nil
}
