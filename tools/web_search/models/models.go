package models

import "fmt"

// Result is one organic web result.
type Result struct {
	Title   string
	URL     string
	Snippet string
	Date    string // as reported by the engine, often relative ("3 days ago")
}

// Str renders a loosely typed JSON value as a string.
func Str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
