package nutrition

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6
}

func TestConvert_SameUnitIdempotence(t *testing.T) {
	for _, tc := range []struct {
		size float64
		unit string
	}{
		{100, "g"},
		{1, "cup"},
		{2.5, "serving"},
		{30, "whatever"},
	} {
		factor, warn := Convert(tc.size, tc.unit, ServingSpec{Size: tc.size, Unit: tc.unit})
		if warn != nil {
			t.Fatalf("unexpected warning for %v %s: %v", tc.size, tc.unit, warn)
		}
		if !almostEqual(factor, 1) {
			t.Fatalf("convert(%v, %q) = %v, want 1", tc.size, tc.unit, factor)
		}
	}
}

func TestConvert_WeightTable(t *testing.T) {
	serving := ServingSpec{Size: 1, Unit: "kg"}

	viaTable, warn := Convert(1000, "g", serving)
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	identity, _ := Convert(1, "kg", serving)
	if !almostEqual(viaTable, identity) {
		t.Fatalf("1000 g -> %v servings of 1 kg, want %v", viaTable, identity)
	}

	factor, warn := Convert(1, "lb", ServingSpec{Size: 100, Unit: "g"})
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	if !almostEqual(factor, 4.53592) {
		t.Fatalf("1 lb of 100 g serving = %v, want 4.53592", factor)
	}
}

func TestConvert_VolumeTable(t *testing.T) {
	factor, warn := Convert(1, "cup", ServingSpec{Size: 240, Unit: "ml"})
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	if !almostEqual(factor, 1) {
		t.Fatalf("1 cup of 240 ml serving = %v, want 1", factor)
	}

	factor, warn = Convert(3, "tsp", ServingSpec{Size: 1, Unit: "tbsp"})
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	// 3 tsp = 14.78679 ml, one tbsp = 14.7868 ml
	if math.Abs(factor-1) > 1e-3 {
		t.Fatalf("3 tsp of 1 tbsp serving = %v, want ~1", factor)
	}
}

func TestConvert_UnitAliases(t *testing.T) {
	a, _ := Convert(500, "grams", ServingSpec{Size: 100, Unit: "g"})
	b, _ := Convert(500, "g", ServingSpec{Size: 100, Unit: "Gram"})
	if !almostEqual(a, 5) || !almostEqual(b, 5) {
		t.Fatalf("alias conversion: got %v and %v, want 5", a, b)
	}
}

func TestConvert_SizeDescriptors(t *testing.T) {
	serving := ServingSpec{Size: 1, Unit: "medium"}

	for _, tc := range []struct {
		unit string
		want float64
	}{
		{"small", 0.7},
		{"medium", 1.0},
		{"large", 1.3},
		{"clove", 1.0},
		{"slice", 1.0},
	} {
		factor, warn := Convert(2, tc.unit, serving)
		if warn != nil {
			t.Fatalf("unexpected warning for %q: %v", tc.unit, warn)
		}
		if !almostEqual(factor, 2*tc.want) {
			t.Fatalf("convert(2, %q) = %v, want %v", tc.unit, factor, 2*tc.want)
		}
	}

	// 份量詞與 serving.Unit 的維度無關
	factor, warn := Convert(1, "small", ServingSpec{Size: 100, Unit: "g"})
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	if !almostEqual(factor, 0.7) {
		t.Fatalf("1 small of gram-based serving = %v, want 0.7", factor)
	}
}

func TestConvert_CrossDimensionFallback(t *testing.T) {
	// cup 對上以 g 為基準的 serving 沒有換算規則，退回 1:1 並回報低可信度
	factor, warn := Convert(2, "cup", ServingSpec{Size: 100, Unit: "g"})
	if warn == nil {
		t.Fatal("expected a fallback warning")
	}
	if warn.Code != WarnUnitFallback {
		t.Fatalf("warning code = %q, want %q", warn.Code, WarnUnitFallback)
	}
	if !almostEqual(factor, 0.02) {
		t.Fatalf("fallback factor = %v, want 0.02", factor)
	}
}

func TestConvert_InvalidServingSize(t *testing.T) {
	for _, size := range []float64{0, -5} {
		factor, warn := Convert(100, "g", ServingSpec{Size: size, Unit: "g"})
		if warn == nil || warn.Code != WarnInvalidServing {
			t.Fatalf("size=%v: expected INVALID_SERVING warning, got %v", size, warn)
		}
		if factor != 1 {
			t.Fatalf("size=%v: factor = %v, want 1", size, factor)
		}
	}
}

func TestConvertAmount(t *testing.T) {
	got, ok := ConvertAmount(1, "kg", "g")
	if !ok || !almostEqual(got, 1000) {
		t.Fatalf("1 kg -> g = %v (ok=%v), want 1000", got, ok)
	}

	got, ok = ConvertAmount(2, "cups", "ml")
	if !ok || !almostEqual(got, 480) {
		t.Fatalf("2 cups -> ml = %v (ok=%v), want 480", got, ok)
	}

	if _, ok := ConvertAmount(1, "cup", "g"); ok {
		t.Fatal("cross-dimension conversion should not be ok")
	}
	if _, ok := ConvertAmount(1, "slice", "g"); ok {
		t.Fatal("descriptor conversion should not be ok")
	}
}
