package config

import (
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GitHub: GitHubConfig{
				Token:      "ghp_test",
				Repository: "graphshell/graphshell",
			},
			Review: ReviewConfig{Labels: []string{"bot_review"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "Valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "Missing token",
			mutate:  func(c *Config) { c.GitHub.Token = "" },
			wantErr: true,
		},
		{
			name:    "Missing repository",
			mutate:  func(c *Config) { c.GitHub.Repository = "" },
			wantErr: true,
		},
		{
			name:    "Repository without owner",
			mutate:  func(c *Config) { c.GitHub.Repository = "graphshell" },
			wantErr: true,
		},
		{
			name:    "No labels",
			mutate:  func(c *Config) { c.Review.Labels = nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "Default pair", raw: "bot_review,review", want: []string{"bot_review", "review"}},
		{name: "Whitespace and case", raw: " Bot_Review , REVIEW ", want: []string{"bot_review", "review"}},
		{name: "Empty entries dropped", raw: "review,,", want: []string{"review"}},
		{name: "Empty input", raw: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLabels(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLabels(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseLabels(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGitHubConfigOwnerName(t *testing.T) {
	g := GitHubConfig{Repository: "graphshell/graphshell-docs"}
	if g.Owner() != "graphshell" {
		t.Errorf("Owner() = %q", g.Owner())
	}
	if g.Name() != "graphshell-docs" {
		t.Errorf("Name() = %q", g.Name())
	}
}
