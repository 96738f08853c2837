package domain

import "path/filepath"

const (
	// ReloadDirName is the name of the internal workspace directory.
	ReloadDirName = ".reload"

	// StateFileName is the name of the JSON scan state file.
	StateFileName = "state.json"

	// BadgerDirName is the name of the badger state directory.
	BadgerDirName = "state.db"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reload.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStatePath returns the default path of the JSON scan state.
// It joins .reload and state.json.
func DefaultStatePath() string {
	return filepath.Join(ReloadDirName, StateFileName)
}

// DefaultBadgerPath returns the default directory of the badger state store.
// It joins .reload and state.db.
func DefaultBadgerPath() string {
	return filepath.Join(ReloadDirName, BadgerDirName)
}
