//go:build !windows

package env

func fold(k string) string { return k }
