package store

import (
	"fmt"
	"strings"
)

func containsAll(s string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
