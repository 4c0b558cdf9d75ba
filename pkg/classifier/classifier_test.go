package classifier

import (
	"context"
	"testing"
	"time"
)

func TestKeywordEngineDefaults(t *testing.T) {
	engine := NewKeywordEngine(nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"sunglasses keyword", "RayBan_sunglasses_black.jpg", CategorySunglasses},
		{"sun keyword", "aviator-sun-01.jpg", CategorySunglasses},
		{"contact keyword", "acuvue_contact_pack.jpg", CategoryContactLenses},
		{"lens keyword", "daily_lens_30.png", CategoryContactLenses},
		{"solution keyword", "renu_solution_360ml.jpg", CategorySolutions},
		{"care keyword", "lens care kit.jpg", CategoryContactLenses},
		{"frame keyword", "titanium_frame_silver.jpg", CategoryFrames},
		{"eyewear keyword", "eyewear_case.jpg", CategoryFrames},
		{"no keyword defaults to frames", "RayBan_Aviator_Black.jpg", CategoryFrames},
		{"case insensitive", "SUNGLASS_PROMO.JPG", CategorySunglasses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Classify(ctx, tt.filename, nil)
			if err != nil {
				t.Fatalf("Classify(%q) returned error: %v", tt.filename, err)
			}
			if got != tt.expected {
				t.Errorf("Classify(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

// TestKeywordEngineAlwaysInSet verifies the closed-set contract for arbitrary
// custom rules, including invalid categories in the rule table.
func TestKeywordEngineAlwaysInSet(t *testing.T) {
	engine := NewKeywordEngine([]Rule{
		{Category: "Gadgets", Keywords: []string{"gadget"}},
	})

	got, err := engine.Classify(context.Background(), "gadget_01.jpg", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !IsValid(got) {
		t.Errorf("Classify returned %q which is outside the category set", got)
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("Sunglasses") != CategorySunglasses {
		t.Error("valid category must pass through")
	}
	if Normalize("Watches") != CategoryFrames {
		t.Error("unknown category must fall back to Frames")
	}
	if Normalize("") != CategoryFrames {
		t.Error("empty category must fall back to Frames")
	}
}

func TestNewVisionStrategyTimeout(t *testing.T) {
	base := VisionConfig{APIKey: "key", Model: "test-vision"}

	v, err := NewVisionStrategy(base)
	if err != nil {
		t.Fatalf("NewVisionStrategy returned error: %v", err)
	}
	if v.timeout != 60*time.Second {
		t.Errorf("default timeout = %v, want 60s", v.timeout)
	}

	cfg := base
	cfg.Timeout = "30s"
	v, err = NewVisionStrategy(cfg)
	if err != nil {
		t.Fatalf("NewVisionStrategy returned error: %v", err)
	}
	if v.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", v.timeout)
	}

	cfg.Timeout = "soon"
	if _, err := NewVisionStrategy(cfg); err == nil {
		t.Error("invalid timeout must be rejected")
	}
}

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		answer   string
		expected string
	}{
		{"Sunglasses", CategorySunglasses},
		{"sunglasses", CategorySunglasses},
		{"This looks like Contact Lenses.", CategoryContactLenses},
		{"I am not sure", CategoryFrames},
		{"", CategoryFrames},
	}

	for _, tt := range tests {
		if got := matchCategory(tt.answer); got != tt.expected {
			t.Errorf("matchCategory(%q) = %q, want %q", tt.answer, got, tt.expected)
		}
	}
}
