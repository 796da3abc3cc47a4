package promptgen

import (
	"strings"
	"testing"
)

func TestLevelDescription(t *testing.T) {
	t.Parallel()
	cases := []struct {
		value int
		want  string
	}{
		{0, "lav"},
		{25, "lav"},
		{26, "middels"},
		{50, "middels"},
		{51, "høy"},
		{75, "høy"},
		{76, "ekstrem"},
		{100, "ekstrem"},
	}
	for _, tc := range cases {
		if got := LevelDescription(tc.value); got != tc.want {
			t.Errorf("LevelDescription(%d) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestComposeContainsBandLabels(t *testing.T) {
	t.Parallel()
	system, user := Compose(80, 10, false)

	if system != SystemPrompt {
		t.Errorf("system prompt changed with parameters")
	}
	if !strings.Contains(user, "kreativiteten skal være ekstrem") {
		t.Errorf("user prompt missing creativity band: %q", user)
	}
	if !strings.Contains(user, "Spenningen skal være lav") {
		t.Errorf("user prompt missing excitement band: %q", user)
	}
}

func TestComposeJinnificationExtendsPrompt(t *testing.T) {
	t.Parallel()
	_, plain := Compose(40, 60, false)
	_, extended := Compose(40, 60, true)

	if !strings.HasPrefix(extended, plain) {
		t.Fatalf("jinnification prompt is not a superset of the plain prompt")
	}
	if !strings.Contains(extended, "Jenni") {
		t.Errorf("jinnification prompt missing closing instruction: %q", extended)
	}
	if strings.Contains(plain, "Jenni") {
		t.Errorf("plain prompt unexpectedly contains closing instruction")
	}
}

func TestComposeIsPure(t *testing.T) {
	t.Parallel()
	s1, u1 := Compose(33, 67, true)
	s2, u2 := Compose(33, 67, true)
	if s1 != s2 || u1 != u2 {
		t.Fatalf("Compose is not deterministic")
	}
}
