package nutrition

import "strings"

// matchThreshold 去重比對的最低接受分數
const matchThreshold = 0.7

// 比對時忽略的詞：冠詞、介系詞與處理狀態形容詞
// 「新鮮番茄」與「番茄切丁」應視為同一種食材
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true,
	"of": true, "in": true, "on": true, "with": true,
	"for": true, "to": true, "and": true, "or": true,
	"fresh": true, "frozen": true, "raw": true, "cooked": true,
	"sliced": true, "chopped": true, "diced": true, "minced": true,
	"grated": true, "shredded": true, "whole": true, "cut": true,
	"pieces": true,
}

var punctuationReplacer = strings.NewReplacer("(", " ", ")", " ", ",", " ", "-", " ", "/", " ")

// ProposedIngredient 匯入生成食譜時提出的新食材
type ProposedIngredient struct {
	Name          string
	Category      string
	Nutrients     NutrientProfile
	NutritionixID string
	CommonName    string
}

// FindBestMatch 判斷 proposed 是否與現有食物為同一品項
// 依序短路比對 nutritionixId、commonName、正規化後的名稱詞集；
// 否則以 Jaccard 相似度加巨量營養素與分類加分取最高分，
// 分數達門檻才回傳；同分時保留先出現的候選。找不到回傳 nil，由呼叫端建立新食物
func FindBestMatch(candidates []*Food, proposed ProposedIngredient) *Food {
	// 外部 ID 完全一致，直接視為同一食物
	if proposed.NutritionixID != "" {
		for _, c := range candidates {
			if strings.EqualFold(c.NutritionixID, proposed.NutritionixID) {
				return c
			}
		}
	}
	if proposed.CommonName != "" {
		for _, c := range candidates {
			if c.CommonName != "" && strings.EqualFold(c.CommonName, proposed.CommonName) {
				return c
			}
		}
	}

	proposedTokens := tokenizeName(proposed.Name)

	var best *Food
	bestScore := 0.0

	for _, c := range candidates {
		tokens := tokenizeName(c.Name)

		// 正規化後詞集相同者直接命中
		if len(tokens) > 0 && tokenSetsEqual(tokens, proposedTokens) {
			return c
		}

		score := jaccard(tokens, proposedTokens)
		if macrosWithinTolerance(c.Nutrients, proposed.Nutrients) {
			score += 0.2
		}
		if c.Category != "" && strings.EqualFold(c.Category, proposed.Category) {
			score += 0.1
		}

		// 嚴格大於：同分時維持先出現者
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	if bestScore >= matchThreshold {
		return best
	}
	return nil
}

// tokenizeName 將名稱轉為正規化詞集
// 複數做最簡單的去尾處理，讓 "Tomatoes" 與 "Tomato" 視為同一詞
func tokenizeName(name string) map[string]bool {
	cleaned := punctuationReplacer.Replace(strings.ToLower(name))
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 1 || stopwords[tok] {
			continue
		}
		tokens[singularize(tok)] = true
	}
	return tokens
}

func singularize(tok string) string {
	switch {
	case strings.HasSuffix(tok, "oes") && len(tok) > 4:
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") && len(tok) > 3:
		return tok[:len(tok)-1]
	}
	return tok
}

func tokenSetsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for tok := range a {
		if !b[tok] {
			return false
		}
	}
	return true
}

// jaccard 計算詞集的 Jaccard 相似度；兩集合皆空視為 0 而非 NaN
func jaccard(a, b map[string]bool) float64 {
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// macrosWithinTolerance 四項巨量營養素是否皆在 10% 相對容差內
func macrosWithinTolerance(a, b NutrientProfile) bool {
	return withinTolerance(a.Calories, b.Calories) &&
		withinTolerance(a.Protein, b.Protein) &&
		withinTolerance(a.Carbs, b.Carbs) &&
		withinTolerance(a.Fat, b.Fat)
}

func withinTolerance(a, b float64) bool {
	if a == b {
		return true
	}
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return false
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff/max <= 0.1
}
