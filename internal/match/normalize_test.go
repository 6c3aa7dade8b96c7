package match

import "testing"

func TestReplacePlatformDependent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "circled digit becomes a space",
			input: "Live Theater Performance ①",
			want:  "Live Theater Performance  ",
		},
		{
			name:  "roman numeral becomes a space",
			input: "GR@TITUDE Ⅱ",
			want:  "GR@TITUDE  ",
		},
		{
			name:  "legacy symbols become spaces",
			input: "㈱765プロ №1",
			want:  " 765プロ  1",
		},
		{
			name:  "plain title passes through",
			input: "READY!!",
			want:  "READY!!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplacePlatformDependent(tt.input); got != tt.want {
				t.Errorf("ReplacePlatformDependent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFoldWidth(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ＲＥＡＤＹ！！", "READY!!"},
		{"Ｍ＠ＳＴＥＲＰＩＥＣＥ", "M@STERPIECE"},
		// Half-width input is already folded
		{"READY!!", "READY!!"},
		// Kana and kanji are outside the folded range
		{"自分ＲＥＳＴ＠ＲＴ", "自分REST@RT"},
	}

	for _, tt := range tests {
		if got := FoldWidth(tt.input); got != tt.want {
			t.Errorf("FoldWidth(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildPatterns(t *testing.T) {
	tests := []struct {
		name  string
		title string
		wantA string
		wantB string
	}{
		{
			name:  "whitespace run collapses to one wildcard",
			title: "THE IDOLM　　STER",
			wantA: "THE%IDOLM%STER%",
			wantB: "THE%IDOLM%STER%",
		},
		{
			name:  "full-width symbols fold only in pattern B",
			title: "ＲＥＡＤＹ！！",
			wantA: "ＲＥＡＤＹ！！%",
			wantB: "READY!!%",
		},
		{
			name:  "platform-dependent character widens the match",
			title: "Performance ①",
			wantA: "Performance%%",
			wantB: "Performance%%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotA, gotB := BuildPatterns(tt.title)
			if gotA != tt.wantA {
				t.Errorf("pattern A = %q, want %q", gotA, tt.wantA)
			}
			if gotB != tt.wantB {
				t.Errorf("pattern B = %q, want %q", gotB, tt.wantB)
			}
		})
	}
}
