package summarizer

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A b. C d! E f? G", []string{"A b.", "C d!", "E f?", "G"}},
		{"Wait... what now", []string{"Wait...", "what now"}},
		{"version 1.2 is out.", []string{"version 1.2 is out."}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := splitSentences(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitSentences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterBoilerplate(t *testing.T) {
	in := "Welcome!  Please read our Privacy Policy before you continue browsing.\n\n" +
		"The committee approved the new budget after a long debate. " +
		"Click here to subscribe for updates from our team. " +
		"Copyright 2024 Example Media Group and partners. " +
		"Funding for local schools rises by ten percent next year."

	got := filterBoilerplate(in)
	want := "The committee approved the new budget after a long debate. Funding for local schools rises by ten percent next year."
	if got != want {
		t.Errorf("filterBoilerplate() = %q, want %q", got, want)
	}
}

func TestFilterBoilerplateKeepsTextWhenEverythingIsDropped(t *testing.T) {
	in := "Home. About.   Contact."
	if got := filterBoilerplate(in); got != "Home. About. Contact." {
		t.Errorf("filterBoilerplate() = %q", got)
	}
}

func TestFilterBoilerplateCapsLength(t *testing.T) {
	in := strings.Repeat("This sentence is long enough to keep around. ", 3000)
	if got := filterBoilerplate(in); len(got) > maxFilteredLen {
		t.Errorf("len = %d, want <= %d", len(got), maxFilteredLen)
	}
}

func TestTruncate(t *testing.T) {
	text := longText(20000)

	got := truncate(text, 8000)
	if len(got) > 8000 {
		t.Fatalf("len = %d, want <= 8000", len(got))
	}
	if !strings.HasPrefix(got, "Paragraph 0 explains") {
		t.Errorf("truncate() does not start with the introduction: %q", got[:40])
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("truncate() does not end on a sentence: %q", got[len(got)-40:])
	}
}

func TestTruncateSelection(t *testing.T) {
	var paras []string
	for i := 0; i < 10; i++ {
		paras = append(paras, strings.Repeat(string(rune('a'+i)), 60)+".")
	}
	text := strings.Join(paras, "\n\n")

	got := truncate(text, 500)
	parts := strings.Split(got, "\n\n")

	// 3 intro, 4 middle centred on index 5, 3 outro with duplicates removed
	wantFirst := []string{paras[0], paras[1], paras[2], paras[3], paras[4], paras[5]}
	for i, w := range wantFirst {
		if i >= len(parts) || !strings.HasPrefix(w, parts[i]) {
			t.Fatalf("part %d = %q, want %q", i, parts[i], w)
		}
	}
	if strings.Count(got, paras[0]) != 1 {
		t.Errorf("paragraph 0 duplicated")
	}
}

func TestTruncateShortText(t *testing.T) {
	if got := truncate("short  text\n\nhere", 100); got != "short text here" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestCutAtSentence(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		budget int
		want   string
	}{
		{"fits", "One. Two.", 20, "One. Two."},
		{"sentence", "One sentence. Another one here", 20, "One sentence."},
		{"word", "alpha beta gamma delta", 12, "alpha beta"},
		{"hard", "abcdefghijkl", 5, "abcde"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cutAtSentence(tt.in, tt.budget); got != tt.want {
				t.Errorf("cutAtSentence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractive(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{
			name:   "five sentences max",
			in:     "One one. Two two. Three three. Four four. Five five. Six six. Seven seven.",
			maxLen: 500,
			want:   "One one. Two two. Three three. Four four. Five five....",
		},
		{
			name:   "stops at length",
			in:     "First sentence here. Second sentence here. Third.",
			maxLen: 30,
			want:   "First sentence here....",
		},
		{
			name:   "no boundaries",
			in:     strings.Repeat("x", 40),
			maxLen: 10,
			want:   strings.Repeat("x", 10) + "...",
		},
		{
			name:   "whole text",
			in:     "Short and sweet.",
			maxLen: 500,
			want:   "Short and sweet.",
		},
		{
			name:   "blank",
			in:     "   ",
			maxLen: 500,
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractive(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("extractive() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCutRunes(t *testing.T) {
	if got := cutRunes("héllo", 2); got != "h" {
		t.Errorf("cutRunes() = %q, want h", got)
	}
	if got := cutRunes("abc", 10); got != "abc" {
		t.Errorf("cutRunes() = %q, want abc", got)
	}
}
