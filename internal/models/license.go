// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package models

import (
	"sort"
	"time"
)

// KeyRule is an allow/restrict pair of source metadata keys for one axis.
type KeyRule struct {
	Allowed    []string `json:"allowed,omitempty"`
	Restricted []string `json:"restricted,omitempty"`
}

// IsEmpty reports whether neither list carries a key.
func (r KeyRule) IsEmpty() bool {
	return len(r.Allowed) == 0 && len(r.Restricted) == 0
}

// LicenseTerm is one ordered term of a license. Terms are applied in
// ascending Sequence order.
type LicenseTerm struct {
	Sequence     int        `json:"sequence"`
	Usage        KeyRule    `json:"usage"`
	Size         KeyRule    `json:"size"`
	Placement    KeyRule    `json:"placement"`
	Distribution KeyRule    `json:"distribution"`
	Geography    KeyRule    `json:"geography"`
	Industry     KeyRule    `json:"industry"`
	Language     KeyRule    `json:"language"`
	Exclusivity  KeyRule    `json:"exclusivity"`
	UsageLimit   KeyRule    `json:"usage_limit"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	EditorialUse *bool      `json:"editorial_use,omitempty"`
}

// EffectiveEditorialUse returns the editorial flag, defaulting to true when unset.
func (t *LicenseTerm) EffectiveEditorialUse() bool {
	if t.EditorialUse == nil {
		return true
	}
	return *t.EditorialUse
}

// SortTerms returns a copy of terms ordered by sequence number.
func SortTerms(terms []LicenseTerm) []LicenseTerm {
	out := append([]LicenseTerm(nil), terms...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// DownloadConstraints limits how often a purchase may be used.
// A nil count is unknown; zero means unrestricted.
type DownloadConstraints struct {
	MaxUsers     *int       `json:"max_users,omitempty"`
	MaxDownloads *int       `json:"max_downloads,omitempty"`
	MaxReuses    *int       `json:"max_reuses,omitempty"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// ReleaseDetails carries model and property release status keys.
type ReleaseDetails struct {
	ModelReleaseKey    string `json:"model_release_key,omitempty"`
	PropertyReleaseKey string `json:"property_release_key,omitempty"`
}
