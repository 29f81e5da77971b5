package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryDefaults(t *testing.T) {
	registry := NewRegistry("")
	if err := registry.Run(); err != nil {
		t.Fatalf("Expected no error loading defaults, got: %v", err)
	}

	if registry.GetPlatformCount() == 0 {
		t.Fatal("Expected embedded defaults to load at least one platform")
	}

	p := registry.Lookup("teamsnap")
	if p.DisplayName != "TeamSnap" {
		t.Errorf("Expected display name 'TeamSnap', got '%s'", p.DisplayName)
	}
	if p.Color == "" {
		t.Error("Expected teamsnap to have a platform color")
	}
}

func TestRegistryUnknownPlatformFallsBack(t *testing.T) {
	registry := NewRegistry("")
	if err := registry.Run(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	p := registry.Lookup("some-new-platform")
	if p == nil {
		t.Fatal("Lookup should never return nil")
	}
	if p.Name != "ical" {
		t.Errorf("Expected unknown platform to fall back to 'ical', got '%s'", p.Name)
	}
}

func TestRegistryOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := `display_name: League Portal
color: "#112233"
default_sport: soccer
fallback_color: "#445566"
sport_colors:
  soccer: "#2e7d32"
`
	if err := os.WriteFile(filepath.Join(dir, "leagueportal.yml"), []byte(override), 0o644); err != nil {
		t.Fatalf("Failed to write override file: %v", err)
	}

	registry := NewRegistry(dir)
	if err := registry.Run(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	p := registry.Lookup("leagueportal")
	if p.DisplayName != "League Portal" {
		t.Errorf("Expected display name 'League Portal', got '%s'", p.DisplayName)
	}
	if p.DefaultSport != "soccer" {
		t.Errorf("Expected default sport 'soccer', got '%s'", p.DefaultSport)
	}
}

func TestColorForSport(t *testing.T) {
	p := &Platform{
		Color:         "#aaa",
		FallbackColor: "#bbb",
		SportColors:   map[string]string{"soccer": "#ccc"},
	}

	if got := p.ColorForSport("soccer"); got != "#ccc" {
		t.Errorf("Expected sport color '#ccc', got '%s'", got)
	}
	if got := p.ColorForSport("curling"); got != "#bbb" {
		t.Errorf("Expected fallback color '#bbb', got '%s'", got)
	}

	p.FallbackColor = ""
	if got := p.ColorForSport("curling"); got != "#aaa" {
		t.Errorf("Expected platform color '#aaa', got '%s'", got)
	}
}
