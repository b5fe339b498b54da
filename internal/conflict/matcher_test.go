package conflict

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Smith", "john smith"},
		{"  John   SMITH  ", "john smith"},
		{"john\tsmith", "john smith"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSoundex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Robert", "R163"},
		{"Rupert", "R163"},
		{"Smith", "S530"},
		{"Smyth", "S530"},
		{"Ashcraft", "A261"},
		{"Tymczak", "T522"},
		{"Pfister", "P236"},
		{"Honeyman", "H555"},
		{"Lee", "L000"},
		{"", ""},
		{"123", ""},
	}
	for _, tt := range tests {
		if got := soundex(tt.in); got != tt.want {
			t.Errorf("soundex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhoneticEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Jon Smyth", "John Smith", true},
		{"jon smyth", "JOHN SMITH", true},
		{"John Smith", "Jane Smith", false},
		{"John", "John Smith", false},
		{"", "John", false},
	}
	for _, tt := range tests {
		if got := phoneticEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("phoneticEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("John Smith", "john  smith"); got != 1 {
		t.Errorf("similarity over normalization = %v, want 1", got)
	}
	if got := similarity("", ""); got != 1 {
		t.Errorf("similarity of empties = %v, want 1", got)
	}
	got := similarity("Jordan Blake", "Jordon Blake")
	if got <= 0.9 || got >= 1 {
		t.Errorf("one-edit similarity = %v, want just under 1", got)
	}
	if got := similarity("abcdef", "zzzzzz"); got != 0 {
		t.Errorf("disjoint similarity = %v, want 0", got)
	}
}
