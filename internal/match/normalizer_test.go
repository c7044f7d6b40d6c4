package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase and trim",
			input: "  Big Chief  ",
			want:  "big chief",
		},
		{
			name:  "diacritics stripped",
			input: "Beyoncé Aïcha Señor",
			want:  "beyonce aicha senor",
		},
		{
			name:  "ampersand unified with and",
			input: "Earth & Fire",
			want:  "earth and fire",
		},
		{
			name:  "html entity ampersand",
			input: "Earth &amp; Fire",
			want:  "earth and fire",
		},
		{
			name:  "word and unchanged",
			input: "Earth and Fire",
			want:  "earth and fire",
		},
		{
			name:  "dashes and underscores to spaces",
			input: "Hard—Headed_Woman – Yes",
			want:  "hard headed woman yes",
		},
		{
			name:  "punctuation dropped",
			input: "Ain't No Sunshine!",
			want:  "aint no sunshine",
		},
		{
			name:  "whitespace collapsed",
			input: "Big   Chief \t Part 2",
			want:  "big chief part 2",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Beyoncé & Jay-Z",
		"B.03. Big Chief [TOYT009]",
		"Southern Nights (Live)",
		"Earth &amp; Fire",
		"  plain text  ",
		"",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalizeStripped(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Southern Nights (Live)", "southern nights"},
		{"Big Chief [Remastered 2016]", "big chief"},
		{"Plain Title", "plain title"},
		{"(Intro) Song (Outro)", "song"},
	}

	for _, tt := range tests {
		got := NormalizeStripped(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeStripped(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractFeaturing(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
		wantFeat string
	}{
		{
			name:     "no featuring",
			input:    "Big Chief",
			wantText: "Big Chief",
			wantFeat: "",
		},
		{
			name:     "parenthesized feat",
			input:    "Big Chief (feat. Dr. John)",
			wantText: "Big Chief",
			wantFeat: "Dr. John",
		},
		{
			name:     "bracketed ft",
			input:    "Big Chief [ft. Dr. John]",
			wantText: "Big Chief",
			wantFeat: "Dr. John",
		},
		{
			name:     "bare trailing featuring",
			input:    "Big Chief featuring Dr. John",
			wantText: "Big Chief",
			wantFeat: "Dr. John",
		},
		{
			name:     "bare trailing feat dot",
			input:    "Big Chief feat. Dr. John",
			wantText: "Big Chief",
			wantFeat: "Dr. John",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, feat := ExtractFeaturing(tt.input)
			if text != tt.wantText || feat != tt.wantFeat {
				t.Errorf("ExtractFeaturing(%q) = (%q, %q), want (%q, %q)",
					tt.input, text, feat, tt.wantText, tt.wantFeat)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"B.03. Big Chief", "Big Chief"},
		{"01. Southern Nights", "Southern Nights"},
		{"Big Chief TOYT009", "Big Chief"},
		{"Big Chief [ABC-1234]", "Big Chief"},
		{"Big Chief", "Big Chief"},
		{"2120 South Michigan Avenue", "2120 South Michigan Avenue"},
	}

	for _, tt := range tests {
		got := CleanTitle(tt.input)
		if got != tt.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
