package fuzzy

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		cand     string
		minScore float64
	}{
		{"identical", "The Matrix", "The Matrix", 1.0},
		{"case insensitive", "the matrix", "The Matrix", 1.0},
		{"dots vs spaces", "The Matrix", "The.Matrix", 1.0},
		{"release name contains query", "The Matrix", "The Matrix 1999 1080p BluRay x264", 0.7},
		{"query with extra punctuation", "Spider-Man", "Spider Man", 1.0},
		{"different titles", "The Matrix", "Inception", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(tt.query, tt.cand)
			t.Logf("Score(%q, %q) = %.2f", tt.query, tt.cand, score)
			if tt.minScore == 1.0 && score != 1.0 {
				t.Errorf("expected exact match, got %.2f", score)
			} else if score < tt.minScore {
				t.Errorf("expected score >= %.2f, got %.2f", tt.minScore, score)
			}
		})
	}
}

func TestScoreRejectsUnrelated(t *testing.T) {
	score := Score("The Matrix", "Frozen 2 2019 720p")
	if score > 0.5 {
		t.Errorf("unrelated titles scored %.2f, want <= 0.5", score)
	}
}

func TestIsMatch(t *testing.T) {
	if !IsMatch("avengers endgame", "Avengers Endgame 2019 Telugu Dubbed", 0.6) {
		t.Error("release name containing the full query should match at 0.6")
	}
	if IsMatch("avengers endgame", "Home Alone", 0.6) {
		t.Error("unrelated title should not match")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Matrix", "the matrix"},
		{"The.Matrix", "the matrix"},
		{"The-Matrix", "the matrix"},
		{"The_Matrix", "the matrix"},
		{"The   Matrix", "the matrix"},
		{"The Matrix (1999)", "the matrix 1999"},
		{"Pushpa: The Rise", "pushpa the rise"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"The.Matrix.1999", "  Spider-Man: No Way Home  ", "RRR (2022) Telugu"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
