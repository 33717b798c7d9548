package usecase

import "testing"

func TestStringSimilarity(t *testing.T) {
	t.Run("identical strings score 1.0", func(t *testing.T) {
		if s := StringSimilarity("Sunset Camp", "Sunset Camp"); s != 1.0 {
			t.Errorf("similarity = %v, want 1.0", s)
		}
	})

	t.Run("ignores case and extra whitespace", func(t *testing.T) {
		if s := StringSimilarity("  SUNSET   camp ", "sunset camp"); s != 1.0 {
			t.Errorf("similarity = %v, want 1.0", s)
		}
	})

	t.Run("containment scores 0.8", func(t *testing.T) {
		if s := StringSimilarity("Sunset Camp", "Sunset Camping"); s != 0.8 {
			t.Errorf("similarity = %v, want 0.8", s)
		}
	})

	t.Run("token overlap stays within range", func(t *testing.T) {
		cases := [][2]string{
			{"Riverside Glamping Resort", "Glamping by the Riverside"},
			{"Doi Inthanon Camp", "Khao Yai Camp"},
			{"abc", "xyz"},
			{"", "anything"},
		}
		for _, c := range cases {
			s := StringSimilarity(c[0], c[1])
			if s < 0 || s > 1 {
				t.Errorf("similarity(%q, %q) = %v, out of [0,1]", c[0], c[1], s)
			}
		}
	})

	t.Run("tolerates single-character typos per token", func(t *testing.T) {
		s := StringSimilarity("Riverside Campsite", "Riversde Campsite")
		if s != 1.0 {
			t.Errorf("similarity = %v, want 1.0 for a one-typo name", s)
		}
	})

	t.Run("unrelated names score low", func(t *testing.T) {
		s := StringSimilarity("Mountain View Glamping", "Seaside Bungalows")
		if s >= 0.6 {
			t.Errorf("similarity = %v, want < 0.6", s)
		}
	})
}

func TestPhonesMatch(t *testing.T) {
	t.Run("formatting differences are ignored", func(t *testing.T) {
		if !phonesMatch("+66 81-234-5678", "+66812345678") {
			t.Error("expected formatted variants to match")
		}
	})

	t.Run("country-prefixed number contains local number", func(t *testing.T) {
		if !phonesMatch("081 234 5678", "(081) 234-5678") {
			t.Error("expected equivalent numbers to match")
		}
	})

	t.Run("different numbers do not match", func(t *testing.T) {
		if phonesMatch("0812345678", "0898765432") {
			t.Error("expected different numbers not to match")
		}
	})

	t.Run("too-short numbers never match", func(t *testing.T) {
		if phonesMatch("123", "123") {
			t.Error("expected short strings not to match")
		}
	})
}

func TestWebsitesMatch(t *testing.T) {
	t.Run("scheme and www are stripped", func(t *testing.T) {
		if !websitesMatch("https://www.sunsetcamp.co.th", "http://sunsetcamp.co.th") {
			t.Error("expected same host to match")
		}
	})

	t.Run("path containment matches", func(t *testing.T) {
		if !websitesMatch("sunsetcamp.co.th", "https://sunsetcamp.co.th/booking/") {
			t.Error("expected host to match host+path")
		}
	})

	t.Run("different hosts do not match", func(t *testing.T) {
		if websitesMatch("sunsetcamp.co.th", "moonrisecamp.co.th") {
			t.Error("expected different hosts not to match")
		}
	})

	t.Run("empty urls never match", func(t *testing.T) {
		if websitesMatch("", "") {
			t.Error("expected empty urls not to match")
		}
	})
}
