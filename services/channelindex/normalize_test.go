package channelindex

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pushpa 2: The Rule", "pushpa 2 the rule"},
		{"RRR Full Movie HD", "rrr"},
		{"  KGF.Chapter.2 (2022) BluRay  ", "kgf chapter 2 2022"},
		{"Jawan [WEBRip] - Hindi", "jawan hindi"},
		{"", ""},
		{"Movie Film Full HD", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	inputs := []string{
		"Pushpa 2: The Rule",
		"RRR Full Movie HD",
		"KGF.Chapter.2 (2022) BluRay",
		"Salaar: Part 1 - Ceasefire",
	}

	for _, in := range inputs {
		once := NormalizeTitle(in)
		if twice := NormalizeTitle(once); twice != once {
			t.Errorf("NormalizeTitle not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
