package qualitygates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the gate file layout.
type Config struct {
	Gates []Gate `yaml:"gates"`
}

// LoadConfig reads a YAML gate list that replaces DefaultGates.
func LoadConfig(path string) ([]Gate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gate config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse gate config %s: %w", path, err)
	}
	if len(cfg.Gates) == 0 {
		return nil, fmt.Errorf("gate config %s defines no gates", path)
	}
	seen := make(map[string]bool, len(cfg.Gates))
	for i, g := range cfg.Gates {
		if g.Name == "" {
			return nil, fmt.Errorf("gate #%d has no name", i+1)
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("gate %q is defined twice", g.Name)
		}
		seen[g.Name] = true
		phase, ok := ParsePhase(string(g.Phase))
		if !ok {
			return nil, fmt.Errorf("gate %q has unknown phase %q", g.Name, g.Phase)
		}
		if len(g.Command) == 0 {
			return nil, fmt.Errorf("gate %q has no command", g.Name)
		}
		cfg.Gates[i].Phase = phase
	}
	return cfg.Gates, nil
}
