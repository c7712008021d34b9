package content

import (
	"html/template"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	wordsPerMinute  = 200
	excerptMaxRunes = 160
	excerptEllipsis = "…"
)

type textSummary struct {
	words   int
	excerpt string
}

// extractText 从渲染后的 HTML 中统计字数并截取首段作为摘要。
// 汉字等表意文字按单字计数，其余按空白分词。
func extractText(rendered template.HTML) (textSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(rendered)))
	if err != nil {
		return textSummary{}, err
	}

	summary := textSummary{words: countWords(doc.Text())}

	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.Join(strings.Fields(p.Text()), " ")
		if text == "" {
			return true
		}
		summary.excerpt = truncateRunes(text, excerptMaxRunes)
		return false
	})

	return summary, nil
}

func countWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			count++
			inWord = false
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}

func estimateMinutes(words int) int {
	if words <= 0 {
		return 1
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + excerptEllipsis
}
