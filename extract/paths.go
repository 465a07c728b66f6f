package extract

import (
	"path/filepath"
	"slices"
	"strings"

	"legacss/config"
)

// ContainersPath derives name of the stylesheet receiving relocated container
// rules from the name of the base output stylesheet.
func ContainersPath(out string, cfg config.ContainersConfig) string {
	dir, base := filepath.Split(out)
	if slices.Contains(cfg.Defaults, base) {
		return filepath.Join(dir, cfg.Name)
	}
	if name, ok := strings.CutSuffix(out, ".css"); ok {
		return name + cfg.Suffix + ".css"
	}
	return out + cfg.Suffix + ".css"
}

// InvalidPath is where output failing validation is saved for inspection.
func InvalidPath(out, suffix string) string {
	return strings.TrimSuffix(out, ".css") + suffix
}
