package layout

import (
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64 // pt
	}{
		{"12", 12},
		{"12pt", 12},
		{"1in", 72},
		{"25.4mm", 25.4 * MmToPt},
		{"2.54cm", 25.4 * MmToPt},
		{" 50 ", 50},
	}
	for _, tc := range cases {
		l, err := ParseLength(tc.in)
		if err != nil {
			t.Fatalf("ParseLength(%q) error: %v", tc.in, err)
		}
		if diff := math.Abs(l.ToPT() - tc.want); diff > 1e-6 {
			t.Fatalf("ParseLength(%q) = %gpt, want %gpt", tc.in, l.ToPT(), tc.want)
		}
	}
	if _, err := ParseLength("wide"); err == nil {
		t.Fatalf("expected error for non-numeric length")
	}
	if _, err := ParseLength(""); err == nil {
		t.Fatalf("expected error for empty length")
	}
}

func TestPtUnmarshalYAML(t *testing.T) {
	var v struct {
		A Pt `yaml:"a"`
		B Pt `yaml:"b"`
	}
	if err := yaml.Unmarshal([]byte("a: 150\nb: 1in\n"), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != 150 || v.B != 72 {
		t.Fatalf("unexpected values: %+v", v)
	}
	if err := yaml.Unmarshal([]byte("a: [1, 2]\n"), &v); err == nil {
		t.Fatalf("expected error for sequence value")
	}
}
