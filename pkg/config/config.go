// Package config loads service configuration in three layers: the defaults
// already present in the target struct, an optional YAML file and environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load fills out, which must be a pointer to a struct with koanf tags. Fields
// not named by the file or the environment keep the value they had on entry.
// Environment variables are matched by prefix; "__" separates nested keys,
// so CART_STORAGE__DRIVER sets storage.driver.
func Load(out any, filePath, envPrefix string) error {
	k := koanf.New(".")

	if filePath != "" {
		if _, err := os.Stat(filePath); err == nil {
			if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
				return fmt.Errorf("load %s: %w", filePath, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", filePath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return fmt.Errorf("env overlay: %w", err)
	}

	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
