package normalize

import "testing"

func TestTableNameToDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cdc_tournament_3_2025_games", "Cdc Tournament 3 2025"},
		{"", ""},
		{"rapid__open", "Rapid Open"},
		{"ABC_def_games", "ABC Def"},
		{"games", "Games"},
		{"_games", ""},
		{"blitz_games_games", "Blitz Games"},
		{"élite_open", "Élite Open"},
		{"limpopo open", "Limpopo Open"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TableNameToDisplayName(tt.input); got != tt.expected {
				t.Errorf("TableNameToDisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayNameToTableName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"CDC Tournament 3 (2025)", "cdc_tournament_3_2025_games"},
		{"  Élite   Open ", "elite_open_games"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := DisplayNameToTableName(tt.input); got != tt.expected {
			t.Errorf("DisplayNameToTableName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Limpopo Open (2025)": "limpopo_open_2025",
		"Ñandú Rapid":         "nandu_rapid",
		"":                    "",
	}
	for input, want := range tests {
		if got := Slug(input); got != want {
			t.Errorf("Slug(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ólafsson", "olafsson"},
		{"Nepomniachtchi", "nepomniachtchi"},
		{"Ding Liren", "ding liren"},
		{"Gukesh D", "gukesh d"},
	}

	for _, tt := range tests {
		if got := FoldName(tt.input); got != tt.expected {
			t.Errorf("FoldName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
