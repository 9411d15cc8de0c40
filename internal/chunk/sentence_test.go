package chunk

import (
	"testing"
)

func TestSplitSentences_Basic(t *testing.T) {
	text := "This is the first sentence. This is the second one. And a third!"
	sentences := SplitSentences(text)

	if len(sentences) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "This is the first sentence." {
		t.Errorf("Unexpected first sentence: %q", sentences[0])
	}
	if sentences[2] != "And a third!" {
		t.Errorf("Unexpected third sentence: %q", sentences[2])
	}
}

func TestSplitSentences_Abbreviations(t *testing.T) {
	// 缩写后的句点不是句子边界
	text := "Dr. Smith visited the lab. He met Mr. Jones there."
	sentences := SplitSentences(text)

	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "Dr. Smith visited the lab." {
		t.Errorf("Unexpected first sentence: %q", sentences[0])
	}
}

func TestSplitSentences_Decimals(t *testing.T) {
	// 小数点不是句子边界
	text := "The price rose to $3.14 overnight. Analysts expected 2.5 instead."
	sentences := SplitSentences(text)

	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "The price rose to $3.14 overnight." {
		t.Errorf("Unexpected first sentence: %q", sentences[0])
	}
}

func TestSplitSentences_CJK(t *testing.T) {
	text := "这是第一句。这是第二句！最后一句？"
	sentences := SplitSentences(text)

	if len(sentences) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "这是第一句。" {
		t.Errorf("Unexpected first sentence: %q", sentences[0])
	}
}

func TestSplitSentences_Newline(t *testing.T) {
	text := "First line ends here.\nsecond line starts lowercase."
	sentences := SplitSentences(text)

	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
}

func TestSplitSentences_NoTerminator(t *testing.T) {
	// 没有句末标点时整段作为一句返回
	text := "a fragment without any terminal punctuation"
	sentences := SplitSentences(text)

	if len(sentences) != 1 {
		t.Fatalf("Expected 1 sentence, got %d", len(sentences))
	}
	if sentences[0] != text {
		t.Errorf("Expected original text back, got %q", sentences[0])
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n"} {
		if got := SplitSentences(text); len(got) != 0 {
			t.Errorf("SplitSentences(%q): expected no sentences, got %v", text, got)
		}
	}
}

func TestSplitSentences_NoCharacterLoss(t *testing.T) {
	// 切分只去除边界空白，不丢内容
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta."
	sentences := SplitSentences(text)

	totalLen := 0
	for _, s := range sentences {
		totalLen += len(s)
	}
	// 原文中有 2 个句间空格被修剪
	if totalLen != len(text)-2 {
		t.Errorf("Expected combined length %d, got %d", len(text)-2, totalLen)
	}
}
