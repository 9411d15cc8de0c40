package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences 将文本按句子边界切分，返回有序的句子序列。
// 不会在句中切断，也不会丢弃字符。边界检测处理常见缩写
// （Mr.、Dr.、e.g. 等）、小数（3.14、$1.50）以及 CJK 句末标点
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	boundaries := findSentenceBoundaries(text)
	if len(boundaries) == 0 {
		return []string{text}
	}

	sentences := make([]string, 0, len(boundaries)+1)
	start := 0
	for _, boundary := range boundaries {
		s := strings.TrimSpace(text[start:boundary])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = boundary
	}

	if remaining := strings.TrimSpace(text[start:]); remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}

// 不作为句子边界处理的常见缩写
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true,
	"prof": true, "sr": true, "jr": true,
	"vs": true, "etc": true, "inc": true, "ltd": true,
	"e.g": true, "i.e": true, "viz": true, "al": true,
	"approx": true, "dept": true, "est": true,
	"fig": true, "no": true, "vol": true,
	"sec": true, "art": true,
}

// isAbbreviation 判断以 dotPos 处句点结尾的单词是否为常见缩写
func isAbbreviation(text string, dotPos int) bool {
	start := dotPos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		start -= size
	}
	word := strings.ToLower(text[start:dotPos])
	return abbreviations[word]
}

// isDecimalDot 判断 dotPos 处的句点是否属于数字（如 3.14、$1.50）
func isDecimalDot(text string, dotPos int) bool {
	if dotPos == 0 || dotPos+1 >= len(text) {
		return false
	}
	prev := text[dotPos-1]
	next := text[dotPos+1]
	return prev >= '0' && prev <= '9' && next >= '0' && next <= '9'
}

// findSentenceBoundaries 返回适合切分句子的字节位置。
// 处理 ASCII 标点（.!?）并识别缩写与小数，另外支持
// CJK 句末标点（。！？）
func findSentenceBoundaries(text string) []int {
	var boundaries []int
	runes := []rune(text)
	n := len(runes)

	// 预先建立 rune 下标到字节偏移的映射
	byteOffsets := make([]int, n+1)
	off := 0
	for i, r := range runes {
		byteOffsets[i] = off
		off += utf8.RuneLen(r)
	}
	byteOffsets[n] = off

	for i := 0; i < n; i++ {
		r := runes[i]

		// CJK 句末标点后面总是边界
		if r == '。' || r == '！' || r == '？' {
			boundaries = append(boundaries, byteOffsets[i+1])
			continue
		}

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		dotBytePos := byteOffsets[i]

		if r == '.' && isDecimalDot(text, dotBytePos) {
			continue
		}

		if r == '.' && isAbbreviation(text, dotBytePos) {
			continue
		}

		// 标点后需要空白或换行才算句子结束
		if i+1 < n && (runes[i+1] == ' ' || runes[i+1] == '\n') {
			if runes[i+1] == '\n' {
				boundaries = append(boundaries, byteOffsets[i+1])
			} else if i+2 < n && unicode.IsUpper(runes[i+2]) {
				boundaries = append(boundaries, byteOffsets[i+2])
			} else if i+2 >= n {
				boundaries = append(boundaries, byteOffsets[n])
			}
		}
	}

	return boundaries
}
