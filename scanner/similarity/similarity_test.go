package similarity_test

import (
	"math"
	"testing"

	"gitlab.com/phishker/scanner/similarity"
)

func TestDistance(t *testing.T) {
	var inputs = []struct {
		a        string
		b        string
		expected int
	}{
		{"paypal.com", "paypa1.com", 1},
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"google.com", "gooogle.com", 1},
		{"amazon.com", "amazon.com", 0},
		{"flaw", "lawn", 2},
	}

	for _, in := range inputs {
		if ret := similarity.Distance(in.a, in.b); ret != in.expected {
			t.Fatalf("distance(%q, %q) expected %d got %d\n", in.a, in.b, in.expected, ret)
		}
	}
}

func TestSimilarity(t *testing.T) {
	s := similarity.Similarity("paypal.com", "paypa1.com")
	if math.Abs(s-0.9) > 1e-9 {
		t.Fatalf("expected ~0.9 got %f\n", s)
	}

	if s := similarity.Similarity("", ""); s != 1.0 {
		t.Fatalf("two empty strings should be 1.0 got %f\n", s)
	}

	pairs := [][2]string{
		{"paypal.com", "paypa1.com"},
		{"mybank-login.example", "bank"},
		{"g00gle.com", "google.com"},
		{"a", "abcdef"},
		{"", "netflix.com"},
	}
	for _, p := range pairs {
		ab := similarity.Similarity(p[0], p[1])
		ba := similarity.Similarity(p[1], p[0])
		if ab != ba {
			t.Fatalf("similarity not symmetric for %v: %f != %f\n", p, ab, ba)
		}
		if self := similarity.Similarity(p[0], p[0]); self != 1.0 {
			t.Fatalf("similarity(%q,%q) expected 1.0 got %f\n", p[0], p[0], self)
		}
	}
}

func TestIsTyposquat(t *testing.T) {
	var inputs = []struct {
		candidate  string
		legitimate string
		expected   bool
	}{
		{"paypa1.com", "paypal.com", true},
		{"paypal.com", "paypal.com", false},
		{"amaz0n.com", "amazon.com", true},
		{"example.com", "paypal.com", false},
		{"micros0ft.com", "microsoft.com", true},
		// 0.75 exactly is not above the threshold
		{"abcd", "abcz", false},
	}

	for _, in := range inputs {
		if ret := similarity.IsTyposquat(in.candidate, in.legitimate); ret != in.expected {
			t.Fatalf("IsTyposquat(%q, %q) expected %v got %v (similarity %f)\n",
				in.candidate, in.legitimate, in.expected, ret, similarity.Similarity(in.candidate, in.legitimate))
		}
	}
}
