package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envExpr matches ${VAR} and ${VAR:-default} expressions. Defaults may
// escape a closing brace as \}.
var envExpr = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads the YAML configuration at path. Environment variable
// references are expanded before parsing, so secrets like the bot token
// can stay out of the file: `botToken: ${TELEGRAM_BOT_TOKEN}`.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func parse(raw []byte) (*Config, error) {
	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// expandEnv substitutes ${VAR} and ${VAR:-default} in raw YAML bytes. A
// reference with no default and no environment value is an error; all such
// unresolved references are reported together.
func expandEnv(raw []byte) ([]byte, error) {
	var missing []string

	result := envExpr.ReplaceAllFunc(raw, func(match []byte) []byte {
		groups := envExpr.FindSubmatch(match)
		name := string(groups[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if groups[2] != nil {
			def := strings.ReplaceAll(string(groups[2]), `\}`, "}")
			return []byte(def)
		}

		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return nil, errors.New("unresolved variables: " + strings.Join(missing, ", "))
	}
	return result, nil
}
