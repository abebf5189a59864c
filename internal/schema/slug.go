package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify はタイトルからスラッグを生成する。
// 小文字化し、英数字以外の連続を1つのハイフンに置き換え、前後のハイフンを取り除いてから
// maxLength文字に切り詰める。maxLengthが0以下の場合は切り詰めない。
func Slugify(title string, maxLength int) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// 分解されたアクセント記号は捨てる
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
	}

	slug := b.String()
	if maxLength > 0 && len(slug) > maxLength {
		slug = strings.TrimRight(slug[:maxLength], "-")
	}
	return slug
}
