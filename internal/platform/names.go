// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform file name helpers.
package platform

import "strings"

// windowsReservedNames are file names Windows refuses regardless of extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name, ignoring case and any
// extension, is reserved on Windows.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.IndexByte(upper, '.'); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// SafeFileName maps a path segment to a file name usable on every platform.
// Reserved names and names already starting with an underscore get an
// underscore prefix, so distinct segments never map to the same file.
func SafeFileName(seg string) string {
	if IsWindowsReservedName(seg) || strings.HasPrefix(seg, "_") {
		return "_" + seg
	}
	return seg
}
