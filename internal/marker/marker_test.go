package marker

import "testing"

func TestTags(t *testing.T) {
	if got := Savings("0190a1b2"); got != "[AHORRO:0190a1b2]" {
		t.Errorf("unexpected savings tag %q", got)
	}
	if got := Planned("Rent"); got != "[PLANNED:Rent]" {
		t.Errorf("unexpected planned tag %q", got)
	}
	if got := Recurring("Gym"); got != "[RECURRING:Gym]" {
		t.Errorf("unexpected recurring tag %q", got)
	}
}

func TestNote(t *testing.T) {
	text := "  paid early "
	empty := "   "
	tests := []struct {
		name string
		text *string
		want string
	}{
		{"nil text", nil, "[PLANNED:Rent]"},
		{"blank text", &empty, "[PLANNED:Rent]"},
		{"text trimmed", &text, "[PLANNED:Rent] paid early"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Note(Planned("Rent"), tt.text); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"[RECURRING:Gym]", "%[RECURRING:Gym]%"},
		{"[RECURRING:100% off]", `%[RECURRING:100\% off]%`},
		{"[PLANNED:a_b]", `%[PLANNED:a\_b]%`},
		{`[PLANNED:c:\tmp]`, `%[PLANNED:c:\\tmp]%`},
	}
	for _, tt := range tests {
		if got := ContainsPattern(tt.tag); got != tt.want {
			t.Errorf("ContainsPattern(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
