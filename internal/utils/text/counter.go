// Package text provides utilities for text processing and analysis.
// This package includes reusable functions for character counting and text manipulation
// that can be used across different AI providers and text processing features.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
// This function correctly handles multi-byte characters including Japanese, Chinese,
// emoji, and other Unicode characters by counting runes instead of bytes.
//
// This utility is designed to be reused across multiple AI summarization providers
// (Claude, OpenAI, Gemini, etc.) to ensure consistent character counting behavior.
//
// Examples:
//
//	CountRunes("hello")          // returns 5 (ASCII text)
//	CountRunes("ã“ã‚“ã«ã¡ã¯")       // returns 5 (Japanese text)
//	CountRunes("helloä¸–ç•Œ")       // returns 7 (mixed text)
//	CountRunes("HelloğŸ‘‹")         // returns 6 (text with emoji)
//	CountRunes("")               // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes returns text cut to at most limit Unicode characters (runes).
// Truncation happens on rune boundaries, so multi-byte characters are never
// split into invalid UTF-8 fragments.
//
// Examples:
//
//	TruncateRunes("hello", 3)     // returns "hel"
//	TruncateRunes("こんにちは", 2)  // returns "こん"
//	TruncateRunes("hello", 10)    // returns "hello" (shorter than limit)
//	TruncateRunes("hello", 0)     // returns ""
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
