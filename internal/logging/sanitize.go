// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package logging

import (
	"net/url"
)

// SanitizeToken masks a token, showing only the first and last 4 characters.
// Example: "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..." -> "eyJh...kpXV"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeURL drops credentials, query and fragment from a URL. Signed
// download URLs carry their signature in the query string.
// Example: "https://cdn.example.com/a.jpg?X-Sig=abc" -> "https://cdn.example.com/a.jpg"
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return truncateString(raw, 64)
	}
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	return u.String()
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
