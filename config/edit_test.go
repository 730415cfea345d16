package config

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApply_ValidEdits(t *testing.T) {
	cfg := DefaultConfig()
	got, err := cfg.Apply(map[string]string{
		"middle_threshold":       " 12 ",
		"click_cooldown_seconds": "0.75",
		"hex_grey":               "#112233",
		"debug":                  "true",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := DefaultConfig()
	want.MiddleThreshold = 12
	want.ClickCooldownSeconds = 0.75
	want.HexGrey = "#112233"
	want.Debug = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("receiver modified (-want +got):\n%s", diff)
	}
}

func TestApply_ReportsUnparseableAndInvalidKeys(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Apply(map[string]string{
		"middle_threshold":       "abc",
		"click_cooldown_seconds": "1.5.2",
		"color_tolerance":        "-4",
		"hex_white":              "#cecece",
		"no_such_key":            "1",
	})
	var fb *FallbackError
	if !errors.As(err, &fb) {
		t.Fatalf("expected *FallbackError, got %v", err)
	}
	want := []string{"click_cooldown_seconds", "color_tolerance", "middle_threshold", "no_such_key"}
	if diff := cmp.Diff(want, fb.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}
