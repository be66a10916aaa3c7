package index

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Tokenize 按Unicode词边界(UAX#29)切分文本并转为小写
// 中文按单字切分,英文按单词切分;纯标点和空白片段被丢弃
func Tokenize(text string) []string {
	tokens := make([]string, 0)

	segments := words.FromString(text)
	for segments.Next() {
		token := strings.ToLower(strings.TrimSpace(segments.Value()))
		if token == "" || !hasWordRune(token) {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

// hasWordRune 判断片段是否包含至少一个字母或数字
func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
