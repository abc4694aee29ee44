package file

import (
	"encoding/json"
	"fmt"
	"os"
)

// migrations upgrade a raw envelope from the keyed version to the next.
// Version 1 is the initial format, so the table is empty.
var migrations = map[int]func(raw json.RawMessage) (json.RawMessage, error){}

// migrateFile upgrades the config file at path step by step to
// currentVersion. Each step backs up the file it replaces as
// <path>.v<N>.bak.
func migrateFile(path string, data []byte, fromVersion int) error {
	for v := fromVersion; v < currentVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return fmt.Errorf("no migration path from version %d to %d", v, currentVersion)
		}

		if err := os.WriteFile(fmt.Sprintf("%s.v%d.bak", path, v), data, 0o600); err != nil {
			return fmt.Errorf("backup before migration v%d: %w", v, err)
		}

		migrated, err := step(json.RawMessage(data))
		if err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", v, v+1, err)
		}

		tmpPath := path + ".tmp"
		if err := os.WriteFile(tmpPath, migrated, 0o600); err != nil {
			return fmt.Errorf("write migrated config: %w", err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("rename migrated config: %w", err)
		}
		data = migrated
	}
	return nil
}
