// SPDX-License-Identifier: MPL-2.0

package config

// Directory overrides for tests. os.UserHomeDir() does not reliably respect
// HOME on every platform, so tests set these instead.
var (
	configDirOverride string
	cacheDirOverride  string
)

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	cacheDirOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetCacheDirOverride sets a custom default cache directory path.
func SetCacheDirOverride(dir string) {
	cacheDirOverride = dir
}
