// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package convert

import (
	"fmt"
	"time"

	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/syncerr"
)

// IDLookup resolves source metadata keys to target IDs. *idmap.Mapper
// implements it.
type IDLookup interface {
	Lookup(category models.MetadataCategory, sourceKey string) (string, bool)
}

// Converter turns source assets into target records.
type Converter struct {
	ids IDLookup
}

// New creates a converter resolving keys through ids.
func New(ids IDLookup) *Converter {
	return &Converter{ids: ids}
}

// Convert builds the records for one asset: one BinaryAsset per binary and,
// when there are two or more binaries, a CompoundAsset listing them all.
// An asset without binaries yields an empty result.
//
// Content provider, content type and license type must resolve to a target
// ID; any other unmapped key is left out of the record.
func (c *Converter) Convert(asset models.Asset) (models.ConversionResult, error) {
	if len(asset.Binaries) == 0 {
		return models.ConversionResult{}, nil
	}

	content, err := c.content(&asset)
	if err != nil {
		return models.ConversionResult{}, err
	}
	license, err := c.license(&asset)
	if err != nil {
		return models.ConversionResult{}, err
	}

	binaries := make([]models.BinaryAsset, 0, len(asset.Binaries))
	for i := range asset.Binaries {
		binaries = append(binaries, c.binary(&asset.Binaries[i], content, license))
	}

	result := models.ConversionResult{Binaries: binaries}
	if len(binaries) > 1 {
		result.Compound = &models.CompoundAsset{
			Content: content,
			License: license,
			Parts:   append([]models.BinaryAsset(nil), binaries...),
		}
	}
	return result, nil
}

func (c *Converter) content(asset *models.Asset) (models.ContentMetadata, error) {
	providerID, err := c.required(asset, models.CategoryContentProvider, asset.ProviderKey)
	if err != nil {
		return models.ContentMetadata{}, err
	}
	typeID, err := c.required(asset, models.CategoryContentType, asset.TypeKey)
	if err != nil {
		return models.ContentMetadata{}, err
	}

	return models.ContentMetadata{
		TransactionID:     asset.TransactionID,
		ContentElementID:  asset.ContentElementID,
		CartTransactionID: asset.CartTransactionID,
		Name:              asset.Name.Clone(),
		Description:       asset.Description.Clone(),
		Keywords:          asset.Keywords.Clone(),
		Copyright:         asset.Copyright.Clone(),
		ProviderID:        providerID,
		TypeID:            typeID,
		CategoryID:        c.optional(models.CategoryContentCategory, asset.CategoryKey),
		ProjectID:         asset.ProjectID,
		ProjectName:       asset.ProjectName.Clone(),
		CollectionID:      asset.CollectionID,
		CollectionName:    asset.CollectionName.Clone(),
		Cancelled:         asset.IsCancelled(),
		WebURL:            asset.WebURL,
		PurchasedAt:       asset.PurchasedAt,
		CreatedAt:         asset.CreatedAt,
		LastUpdatedAt:     asset.LastUpdatedAt,
	}, nil
}

func (c *Converter) license(asset *models.Asset) (models.LicenseMetadata, error) {
	licenseTypeID, err := c.required(asset, models.CategoryLicenseType, asset.LicenseTypeKey)
	if err != nil {
		return models.LicenseMetadata{}, err
	}

	terms := models.SortTerms(asset.LicenseTerms)
	mapped := make([]models.MappedTerm, 0, len(terms))
	for i := range terms {
		mapped = append(mapped, c.term(&terms[i]))
	}

	return models.LicenseMetadata{
		LicenseTypeID:       licenseTypeID,
		LicenseText:         asset.LicenseText.Clone(),
		LicenseOptionIDs:    c.optionalAll(models.CategoryLicenseOption, asset.LicenseOptionKeys),
		Terms:               mapped,
		DownloadConstraints: cloneConstraints(asset.DownloadConstraints),
		ReleaseDetails:      asset.ReleaseDetails,
		EditorialUse:        effectiveEditorialUse(asset),
		HasLicenseTerms:     asset.HasLicenseTerms,
		Licensee:            asset.Licensee,
	}, nil
}

func (c *Converter) term(t *models.LicenseTerm) models.MappedTerm {
	return models.MappedTerm{
		Sequence:     t.Sequence,
		Usage:        c.rule(models.CategoryUsage, t.Usage),
		Size:         c.rule(models.CategorySize, t.Size),
		Placement:    c.rule(models.CategoryPlacement, t.Placement),
		Distribution: c.rule(models.CategoryDistribution, t.Distribution),
		Geography:    c.rule(models.CategoryGeography, t.Geography),
		Industry:     c.rule(models.CategoryIndustry, t.Industry),
		Language:     c.rule(models.CategoryLanguage, t.Language),
		Exclusivity:  c.rule(models.CategoryLicenseExclusivity, t.Exclusivity),
		UsageLimit:   c.usageLimitRule(t.UsageLimit),
		ValidFrom:    cloneTime(t.ValidFrom),
		ValidUntil:   cloneTime(t.ValidUntil),
		EditorialUse: t.EffectiveEditorialUse(),
	}
}

func (c *Converter) rule(category models.MetadataCategory, r models.KeyRule) models.MappedRule {
	return models.MappedRule{
		Allowed:    c.optionalAll(category, r.Allowed),
		Restricted: c.optionalAll(category, r.Restricted),
	}
}

// usageLimitRule resolves usage-limit keys, which share the usage table.
func (c *Converter) usageLimitRule(r models.KeyRule) models.MappedRule {
	return c.rule(models.CategoryUsage, models.KeyRule{
		Allowed:    usageLimitKeys(r.Allowed),
		Restricted: usageLimitKeys(r.Restricted),
	})
}

func usageLimitKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = models.UsageLimitKey(k)
	}
	return out
}

func (c *Converter) binary(b *models.Binary, content models.ContentMetadata, license models.LicenseMetadata) models.BinaryAsset {
	content.Name = preferLocalized(b.Name, content.Name)
	content.Description = preferLocalized(b.Description, content.Description)

	return models.BinaryAsset{
		Content:      content,
		License:      license,
		BinaryID:     b.ID,
		BinaryTypeID: c.optional(models.CategoryBinaryType, b.BinaryTypeKey),
		ContentType:  b.ContentType,
		Locale:       b.Locale,
		Version:      b.Version,
		UsageText:    b.UsageText.Clone(),
		FileName:     fileName(b),
		DownloadURL:  b.DownloadURL,
	}
}

func (c *Converter) required(asset *models.Asset, category models.MetadataCategory, key string) (string, error) {
	if id, ok := c.ids.Lookup(category, key); ok && key != "" {
		return id, nil
	}
	return "", syncerr.SyncJob("convert asset", fmt.Errorf("%w: %s %q (transaction %s)",
		syncerr.ErrUnmappedKey, category, key, asset.TransactionID))
}

func (c *Converter) optional(category models.MetadataCategory, key string) string {
	if key == "" {
		return ""
	}
	id, _ := c.ids.Lookup(category, key)
	return id
}

func (c *Converter) optionalAll(category models.MetadataCategory, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id := c.optional(category, k); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// preferLocalized overlays the non-empty values of primary on fallback.
func preferLocalized(primary, fallback models.LocalizedText) models.LocalizedText {
	if primary.IsEmpty() {
		return fallback.Clone()
	}
	out := fallback.Clone()
	if out == nil {
		out = make(models.LocalizedText, len(primary))
	}
	for locale, v := range primary {
		if v != "" {
			out[locale] = v
		}
	}
	return out
}

// fileName returns the recommended file name, falling back to the binary ID.
func fileName(b *models.Binary) string {
	if b.RecommendedFileName != "" {
		return b.RecommendedFileName
	}
	return b.ID
}

func cloneConstraints(dc models.DownloadConstraints) models.DownloadConstraints {
	return models.DownloadConstraints{
		MaxUsers:     cloneInt(dc.MaxUsers),
		MaxDownloads: cloneInt(dc.MaxDownloads),
		MaxReuses:    cloneInt(dc.MaxReuses),
		ValidFrom:    cloneTime(dc.ValidFrom),
		ValidUntil:   cloneTime(dc.ValidUntil),
	}
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
