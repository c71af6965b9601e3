//go:build windows

package env

import "strings"

// Windows environment names are case-insensitive ("Path" == "PATH").
func fold(k string) string { return strings.ToUpper(k) }
