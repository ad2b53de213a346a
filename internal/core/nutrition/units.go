package nutrition

import (
	"math"
	"strings"
)

type unitKind string

const (
	unitKindWeight unitKind = "weight"
	unitKindVolume unitKind = "volume"
)

type unitDef struct {
	kind   unitKind
	toBase float64 // 重量基準為 g，容量基準為 ml
}

// 固定換算表，僅涵蓋同維度單位
// 重量採 SI/常衡制精確係數；容量採美制（1 cup = 240 ml、1 tbsp = 14.7868 ml）
var unitTable = map[string]unitDef{
	// 重量（基準 = g）
	"g":         {kind: unitKindWeight, toBase: 1},
	"gram":      {kind: unitKindWeight, toBase: 1},
	"grams":     {kind: unitKindWeight, toBase: 1},
	"kg":        {kind: unitKindWeight, toBase: 1000},
	"kilogram":  {kind: unitKindWeight, toBase: 1000},
	"kilograms": {kind: unitKindWeight, toBase: 1000},
	"oz":        {kind: unitKindWeight, toBase: 28.3495},
	"ounce":     {kind: unitKindWeight, toBase: 28.3495},
	"ounces":    {kind: unitKindWeight, toBase: 28.3495},
	"lb":        {kind: unitKindWeight, toBase: 453.592},
	"lbs":       {kind: unitKindWeight, toBase: 453.592},
	"pound":     {kind: unitKindWeight, toBase: 453.592},
	"pounds":    {kind: unitKindWeight, toBase: 453.592},

	// 容量（基準 = ml）
	"ml":          {kind: unitKindVolume, toBase: 1},
	"milliliter":  {kind: unitKindVolume, toBase: 1},
	"milliliters": {kind: unitKindVolume, toBase: 1},
	"l":           {kind: unitKindVolume, toBase: 1000},
	"liter":       {kind: unitKindVolume, toBase: 1000},
	"liters":      {kind: unitKindVolume, toBase: 1000},
	"litre":       {kind: unitKindVolume, toBase: 1000},
	"cup":         {kind: unitKindVolume, toBase: 240},
	"cups":        {kind: unitKindVolume, toBase: 240},
	"tbsp":        {kind: unitKindVolume, toBase: 14.7868},
	"tablespoon":  {kind: unitKindVolume, toBase: 14.7868},
	"tablespoons": {kind: unitKindVolume, toBase: 14.7868},
	"tsp":         {kind: unitKindVolume, toBase: 4.92893},
	"teaspoon":    {kind: unitKindVolume, toBase: 4.92893},
	"teaspoons":   {kind: unitKindVolume, toBase: 4.92893},
}

// 描述性份量詞的倍率，視為一份 serving 的倍數
// 這些是啟發式常數而非物理事實，調整時只需改這張表
var sizeMultipliers = map[string]float64{
	"small":     0.7,
	"medium":    1.0,
	"large":     1.3,
	"clove":     1.0,
	"piece":     1.0,
	"serving":   1.0,
	"slice":     1.0,
	"can":       1.0,
	"bottle":    1.0,
	"packet":    1.0,
	"container": 1.0,
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

func lookupUnit(unit string) (unitDef, bool) {
	def, ok := unitTable[normalizeUnit(unit)]
	return def, ok
}

// Convert 將 quantity unit 換算成 serving 的倍數
// 回傳的係數乘上每份營養值即為該數量的營養；警告為 nil 表示換算可信
//
// 規則依序為：單位相同、同維度換算表、描述性份量詞、最後退回 1:1 假設。
// 1:1 退路（例如以 cup 換算以 g 為基準的食物）在數值上並不可靠，
// 保留它是為了與既有資料相容，因此一律附帶低可信度警告
func Convert(quantity float64, unit string, serving ServingSpec) (float64, *Warning) {
	if serving.Size <= 0 {
		w := warnf(WarnInvalidServing, "", "serving size %v is not positive, using scale factor 1", serving.Size)
		w.Unit = unit
		return 1, &w
	}

	factor, warning := convert(quantity, unit, serving)

	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		w := warnf(WarnInvalidServing, "", "conversion of %v %q produced a non-finite factor, using scale factor 1", quantity, unit)
		w.Unit = unit
		return 1, &w
	}
	return factor, warning
}

func convert(quantity float64, unit string, serving ServingSpec) (float64, *Warning) {
	from := normalizeUnit(unit)
	to := normalizeUnit(serving.Unit)

	// 單位一致，直接相除
	if from == to {
		return quantity / serving.Size, nil
	}

	// 同維度單位走換算表
	if fromDef, ok := unitTable[from]; ok {
		if toDef, ok := unitTable[to]; ok && fromDef.kind == toDef.kind {
			converted := quantity * fromDef.toBase / toDef.toBase
			return converted / serving.Size, nil
		}
	}

	// 描述性份量詞直接視為 serving 的倍數，無論 serving.Unit 為何
	if mult, ok := sizeMultipliers[from]; ok {
		return quantity * mult, nil
	}

	// 無規則可用（例如缺乏密度資料的重量↔容量換算），假設單位等價
	w := warnf(WarnUnitFallback, "", "no conversion from %q to %q, assuming units are equivalent", unit, serving.Unit)
	w.Unit = unit
	return quantity / serving.Size, &w
}

// ConvertAmount 同維度單位間的數值換算，供購物清單合併同品項使用
// 兩單位不同維度或不在換算表時回傳 false
func ConvertAmount(value float64, fromUnit, toUnit string) (float64, bool) {
	from := normalizeUnit(fromUnit)
	to := normalizeUnit(toUnit)
	if from == to {
		return value, true
	}
	fromDef, ok := unitTable[from]
	if !ok {
		return 0, false
	}
	toDef, ok := unitTable[to]
	if !ok || fromDef.kind != toDef.kind {
		return 0, false
	}
	return value * fromDef.toBase / toDef.toBase, true
}
