package text_test

import (
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/relay/text"
	"github.com/stretchr/testify/assert"
)

var corpus = []string{
	"",
	"   ",
	"hello",
	"  hello   world  ",
	"line one\nline two\r\n\tline three",
	"Great job 😀🎉!",
	"sun ☀️ and rain ☔",
	"\x1b[1mbold\x1b[0m text",
	"\x1b]0;title\x07after osc",
	"bell\x07 and null\x00 byte",
	"আমি ভালো আছি 🙂",
	"q\u0301 combining",
	"e😀\u0301 mark after removed emoji",
	"flag 🇧🇩 here",
	"keycap 1️⃣ two",
	"invalid \xff\xfe utf8",
	"private  use",
	"non breaking spaces",
	"中文 한국어 日本語",
	"emoji ZWJ 👨‍👩‍👧 family",
	"a \u2190\u0338 b",
	"x\u2192\u0338y",
	"a\u2600\u0301 emoji between base and mark",
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text unchanged", "hello world", "hello world"},
		{"trims and collapses spaces", "  hello   world  ", "hello world"},
		{"flattens newlines and tabs", "a\nb\r\n\tc", "a b c"},
		{"removes emoji outside BMP", "Great job 😀🎉!", "Great job !"},
		{"removes BMP emoji and variation selectors", "sun ☀️ and rain ☔", "sun and rain"},
		{"strips ANSI escapes", "\x1b[1mbold\x1b[0m text", "bold text"},
		{"drops control characters", "bell\x07 null\x00", "bell null"},
		{"keeps Bengali", "আমি আছি 🙂", "আমি আছি"},
		{"keeps CJK", "中文 한국어", "中文 한국어"},
		{"drops private use", "a\ue000b", "ab"},
		{"NFC normalizes", "e\u0301", "\u00e9"},
		{"flags removed", "flag 🇧🇩 here", "flag here"},
		{"composed arrow is filtered", "a \u2190\u0338 b", "a b"},
		{"mark composes after emoji removal", "a\u2600\u0301", "\u00e1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, text.Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()
	for _, s := range corpus {
		once := text.Sanitize(s)
		assert.Equal(t, once, text.Sanitize(once), "input %q", s)
	}
}

func TestSanitize_OnlyBMP(t *testing.T) {
	t.Parallel()
	for _, s := range corpus {
		out := text.Sanitize(s)
		assert.True(t, utf8.ValidString(out), "input %q", s)
		for _, r := range out {
			assert.LessOrEqual(t, r, rune(0xffff), "input %q", s)
		}
	}
}

func FuzzSanitize_Idempotent(f *testing.F) {
	for _, s := range corpus {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := text.Sanitize(s)
		if twice := text.Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", s, twice, once)
		}
	})
}
