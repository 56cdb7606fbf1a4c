package cli

import "strings"

var productVersion = "dev"

// SetVersion sets the version shown by interactive commands.
func SetVersion(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	productVersion = v
}

func versionTag() string {
	v := strings.TrimSpace(productVersion)
	if v == "" {
		return "dev"
	}
	if strings.HasPrefix(strings.ToLower(v), "v") || v == "dev" {
		return v
	}
	return "v" + v
}
