// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package models

import "time"

// RecordKind discriminates the two target record variants.
type RecordKind int

const (
	KindBinary RecordKind = iota + 1
	KindCompound
)

func (k RecordKind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Record is a converted target-shaped asset. The set of implementations is
// closed: BinaryAsset and CompoundAsset.
type Record interface {
	Kind() RecordKind
	TransactionID() string
	isRecord()
}

// ContentMetadata is the shared descriptive metadata of a target record.
// All ID fields hold target IDs resolved through the metadata mapping.
type ContentMetadata struct {
	TransactionID     string        `json:"transaction_id"`
	ContentElementID  string        `json:"content_element_id"`
	CartTransactionID string        `json:"cart_transaction_id"`
	Name              LocalizedText `json:"name,omitempty"`
	Description       LocalizedText `json:"description,omitempty"`
	Keywords          LocalizedList `json:"keywords,omitempty"`
	Copyright         LocalizedText `json:"copyright,omitempty"`
	ProviderID        string        `json:"provider_id"`
	TypeID            string        `json:"type_id"`
	CategoryID        string        `json:"category_id,omitempty"`
	ProjectID         string        `json:"project_id,omitempty"`
	ProjectName       LocalizedText `json:"project_name,omitempty"`
	CollectionID      string        `json:"collection_id,omitempty"`
	CollectionName    LocalizedText `json:"collection_name,omitempty"`
	Cancelled         bool          `json:"cancelled"`
	WebURL            string        `json:"web_url,omitempty"`
	PurchasedAt       time.Time     `json:"purchased_at"`
	CreatedAt         time.Time     `json:"created_at"`
	LastUpdatedAt     time.Time     `json:"last_updated_at"`
}

// MappedRule is a KeyRule whose keys were resolved to target IDs.
type MappedRule struct {
	Allowed    []string `json:"allowed,omitempty"`
	Restricted []string `json:"restricted,omitempty"`
}

// MappedTerm is a LicenseTerm with every axis resolved to target IDs.
type MappedTerm struct {
	Sequence     int        `json:"sequence"`
	Usage        MappedRule `json:"usage"`
	Size         MappedRule `json:"size"`
	Placement    MappedRule `json:"placement"`
	Distribution MappedRule `json:"distribution"`
	Geography    MappedRule `json:"geography"`
	Industry     MappedRule `json:"industry"`
	Language     MappedRule `json:"language"`
	Exclusivity  MappedRule `json:"exclusivity"`
	UsageLimit   MappedRule `json:"usage_limit"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	EditorialUse bool       `json:"editorial_use"`
}

// LicenseMetadata is the licensing part of a target record.
type LicenseMetadata struct {
	LicenseTypeID       string              `json:"license_type_id"`
	LicenseText         LocalizedText       `json:"license_text,omitempty"`
	LicenseOptionIDs    []string            `json:"license_option_ids,omitempty"`
	Terms               []MappedTerm        `json:"terms,omitempty"`
	DownloadConstraints DownloadConstraints `json:"download_constraints"`
	ReleaseDetails      ReleaseDetails      `json:"release_details"`
	EditorialUse        *bool               `json:"editorial_use,omitempty"`
	HasLicenseTerms     bool                `json:"has_license_terms"`
	Licensee            Licensee            `json:"licensee"`
}

// BinaryAsset is the target record for one deliverable file.
type BinaryAsset struct {
	Content      ContentMetadata `json:"content"`
	License      LicenseMetadata `json:"license"`
	BinaryID     string          `json:"binary_id"`
	BinaryTypeID string          `json:"binary_type_id,omitempty"`
	ContentType  string          `json:"content_type"`
	Locale       string          `json:"locale,omitempty"`
	Version      int             `json:"version"`
	UsageText    LocalizedText   `json:"usage_text,omitempty"`
	FileName     string          `json:"file_name"`
	DownloadURL  string          `json:"download_url"`
	// LocalPath is set once the binary has been downloaded for this run.
	LocalPath string `json:"local_path,omitempty"`
}

func (BinaryAsset) Kind() RecordKind { return KindBinary }

func (b BinaryAsset) TransactionID() string { return b.Content.TransactionID }

func (BinaryAsset) isRecord() {}

// WithLocalPath returns a copy of b pointing at a downloaded file.
func (b BinaryAsset) WithLocalPath(path string) BinaryAsset {
	b.LocalPath = path
	return b
}

// CompoundAsset groups the binary variants of one purchase.
type CompoundAsset struct {
	Content ContentMetadata `json:"content"`
	License LicenseMetadata `json:"license"`
	Parts   []BinaryAsset   `json:"parts"`
}

func (CompoundAsset) Kind() RecordKind { return KindCompound }

func (c CompoundAsset) TransactionID() string { return c.Content.TransactionID }

func (CompoundAsset) isRecord() {}

// PartIDs returns the binary IDs of the parts in order.
func (c CompoundAsset) PartIDs() []string {
	ids := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		ids[i] = p.BinaryID
	}
	return ids
}

// ConversionResult holds every record produced from one source asset.
type ConversionResult struct {
	Binaries []BinaryAsset
	Compound *CompoundAsset
}

// Records returns the result as a flat list, binaries first.
func (r ConversionResult) Records() []Record {
	out := make([]Record, 0, len(r.Binaries)+1)
	for _, b := range r.Binaries {
		out = append(out, b)
	}
	if r.Compound != nil {
		out = append(out, *r.Compound)
	}
	return out
}

// Len returns the number of records.
func (r ConversionResult) Len() int {
	n := len(r.Binaries)
	if r.Compound != nil {
		n++
	}
	return n
}
