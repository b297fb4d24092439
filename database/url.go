package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL combines a base URL with a database name, keeping
// any existing query parameters intact and defaulting sslmode=disable
// when the URL does not already pin one.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	var databaseURL string

	if strings.Contains(baseURL, "?") {
		parts := strings.SplitN(baseURL, "?", 2)
		databaseURL = fmt.Sprintf("%s/%s?%s", parts[0], databaseName, parts[1])
	} else {
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}

	return databaseURL
}
