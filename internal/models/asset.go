// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package models

import "time"

// LifecycleState is the purchase state of an asset on the source platform.
type LifecycleState string

// Lifecycle states reported by the source platform.
const (
	LifecyclePending   LifecycleState = "pending"
	LifecycleCompleted LifecycleState = "completed"
	LifecycleCancelled LifecycleState = "cancelled"
	LifecycleRefunded  LifecycleState = "refunded"
	LifecycleUnknown   LifecycleState = "unknown"
)

// LocalizedText maps a locale tag (e.g. "en", "de-CH") to a single value.
type LocalizedText map[string]string

// Get returns the value for locale, or "" if absent.
func (t LocalizedText) Get(locale string) string {
	if t == nil {
		return ""
	}
	return t[locale]
}

// IsEmpty reports whether no locale carries a non-empty value.
func (t LocalizedText) IsEmpty() bool {
	for _, v := range t {
		if v != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// LocalizedList maps a locale tag to an ordered list of values (keywords).
type LocalizedList map[string][]string

// Clone returns an independent copy.
func (l LocalizedList) Clone() LocalizedList {
	if l == nil {
		return nil
	}
	out := make(LocalizedList, len(l))
	for k, v := range l {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Licensee identifies who a purchase was licensed to.
type Licensee struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
}

// Asset is one purchased content unit as delivered by the source platform.
// Assets are created fresh per page and handed to the converter by value.
type Asset struct {
	TransactionID     string         `json:"transaction_id"`
	ContentElementID  string         `json:"content_element_id"`
	CartTransactionID string         `json:"cart_transaction_id"`
	Lifecycle         LifecycleState `json:"lifecycle"`

	ProviderKey string `json:"provider_key"`
	TypeKey     string `json:"type_key"`
	CategoryKey string `json:"category_key,omitempty"`

	Name        LocalizedText `json:"name,omitempty"`
	Description LocalizedText `json:"description,omitempty"`
	Keywords    LocalizedList `json:"keywords,omitempty"`
	Copyright   LocalizedText `json:"copyright,omitempty"`

	ProjectID      string        `json:"project_id,omitempty"`
	ProjectName    LocalizedText `json:"project_name,omitempty"`
	CollectionID   string        `json:"collection_id,omitempty"`
	CollectionName LocalizedText `json:"collection_name,omitempty"`

	Licensee            Licensee            `json:"licensee"`
	LicenseTypeKey      string              `json:"license_type_key"`
	LicenseText         LocalizedText       `json:"license_text,omitempty"`
	LicenseOptionKeys   []string            `json:"license_option_keys,omitempty"`
	LicenseTerms        []LicenseTerm       `json:"license_terms,omitempty"`
	DownloadConstraints DownloadConstraints `json:"download_constraints"`
	ReleaseDetails      ReleaseDetails      `json:"release_details"`
	EditorialUse        *bool               `json:"editorial_use,omitempty"`
	HasLicenseTerms     bool                `json:"has_license_terms"`

	Binaries []Binary `json:"binaries"`

	PurchasedAt   time.Time `json:"purchased_at"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	WebURL        string    `json:"web_url,omitempty"`
}

// IsCancelled reports whether the purchase was cancelled on the source.
func (a *Asset) IsCancelled() bool {
	return a.Lifecycle == LifecycleCancelled
}

// IsCompound reports whether the asset converts into a compound record.
func (a *Asset) IsCompound() bool {
	return len(a.Binaries) > 1
}

// Binary is one deliverable file variant of an asset.
// Version starts at 1 and increases strictly on every source-side edit; it is
// the only staleness signal a target may use.
type Binary struct {
	ID                  string        `json:"id"`
	ContentType         string        `json:"content_type"`
	BinaryTypeKey       string        `json:"binary_type_key"`
	Locale              string        `json:"locale,omitempty"`
	Version             int           `json:"version"`
	Name                LocalizedText `json:"name,omitempty"`
	Description         LocalizedText `json:"description,omitempty"`
	UsageText           LocalizedText `json:"usage_text,omitempty"`
	RecommendedFileName string        `json:"recommended_file_name"`
	DownloadURL         string        `json:"download_url"`
}

// AssetPage is one page of the paged asset listing.
type AssetPage struct {
	Assets            []Asset `json:"assets"`
	ContinuationToken string  `json:"continuation_token"`
	HasMore           bool    `json:"has_more"`
}

// Done reports whether no further pages should be requested.
func (p *AssetPage) Done() bool {
	return !p.HasMore || p.ContinuationToken == ""
}
