package naming

import (
	"testing"
)

func TestExtractBrand(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"underscore separated", "RayBan_Aviator_Black.jpg", "RayBan"},
		{"hyphen separated", "Oakley-Holbrook-01.png", "Oakley"},
		{"space separated", "Gucci GG0061 front.jpg", "Gucci"},
		{"single token", "lens.webp", "lens"},
		{"extension only", ".jpg", "Generic"},
		{"empty string", "", "Generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractBrand(tt.filename)
			if got != tt.expected {
				t.Errorf("ExtractBrand(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestExtractColor(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"underscore token", "RayBan_Aviator_Black_front.jpg", "Black"},
		{"trailing token", "Holbrook-brown.jpg", "Brown"},
		{"trailing token before extension", "Oakley_Holbrook_Black.jpg", "Black"},
		{"trailing variant token", "RayBan_Aviator_Brown.jpg", "Brown"},
		{"leading token", "gold_IMG_0231.png", "Gold"},
		{"word boundary", "transparent case.jpg", "Transparent"},
		{"case insensitive", "Frame_GREEN_02.jpg", "Green"},
		{"color inside word does not match", "Goldfinch_Aviator.jpg", ""},
		{"no color", "RayBan_Aviator_front.jpg", ""},
		{"vocabulary order wins", "Gray_Silver_Case.jpg", "Gray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractColor(tt.filename)
			if got != tt.expected {
				t.Errorf("ExtractColor(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestBaseProductName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"front with index", "Product_front_02.jpg", "Product"},
		{"back with index", "Product_back_01.jpg", "Product"},
		{"side view", "RayBan_Aviator_Black_side.jpg", "RayBan_Aviator_Black"},
		{"no angle token", "Oakley_Holbrook_Black.jpg", "Oakley_Holbrook_Black"},
		{"trailing sequence", "Aviator-003.png", "Aviator"},
		{"separator runs collapse", "Frame -- 01 _ front.jpg", "Frame"},
		{"detail token", "Gucci_GG_detail.jpg", "Gucci_GG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseProductName(tt.filename)
			if got != tt.expected {
				t.Errorf("BaseProductName(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

// TestBaseProductNameAngleInvariance verifies the grouping key property:
// different angles of the same product normalize to one base name.
func TestBaseProductNameAngleInvariance(t *testing.T) {
	a := BaseProductName("Product_front_02.jpg")
	b := BaseProductName("Product_back_01.jpg")
	if a != b {
		t.Errorf("angle invariance broken: %q != %q", a, b)
	}
	if a != "Product" {
		t.Errorf("expected base name %q, got %q", "Product", a)
	}
}

func TestProductNameWithoutColor(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		color    string
		expected string
	}{
		{"strips detected color", "RayBan_Aviator_Black.jpg", "Black", "RayBan_Aviator"},
		{"strips other vocabulary colors", "RayBan_Aviator_Brown.jpg", "Brown", "RayBan_Aviator"},
		{"leading color token", "Black_Frame_Case.jpg", "Black", "Frame_Case"},
		{"no color present", "Oakley_Holbrook.jpg", "", "Oakley_Holbrook"},
		{"non vocabulary detected color", "Oakley_Holbrook.jpg", "Tortoise", "Oakley_Holbrook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProductNameWithoutColor(tt.filename, tt.color)
			if got != tt.expected {
				t.Errorf("ProductNameWithoutColor(%q, %q) = %q, want %q", tt.filename, tt.color, got, tt.expected)
			}
		})
	}
}

// TestProductNameWithoutColorVariantKey verifies that two color variants of
// one product share a single product key.
func TestProductNameWithoutColorVariantKey(t *testing.T) {
	black := ProductNameWithoutColor("RayBan_Aviator_Black.jpg", "Black")
	brown := ProductNameWithoutColor("RayBan_Aviator_Brown.jpg", "Brown")
	if black != brown {
		t.Errorf("variant key mismatch: %q != %q", black, brown)
	}
}

func TestIsFrontView(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected bool
	}{
		{"front word", "RayBan_Aviator_Black_front.jpg", true},
		{"front prefix", "front-aviator.jpg", true},
		{"standalone f token", "aviator f.jpg", true},
		{"trailing _1", "Frame_1.jpg", true},
		{"leading 1", "1_main.jpg", true},
		{"standalone 01", "shot 01.jpg", true},
		{"side view", "RayBan_Aviator_Black_side.jpg", false},
		{"plain name", "Oakley_Holbrook_Black.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsFrontView(tt.filename)
			if got != tt.expected {
				t.Errorf("IsFrontView(%q) = %v, want %v", tt.filename, got, tt.expected)
			}
		})
	}
}
