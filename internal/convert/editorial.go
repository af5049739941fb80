// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package convert

import "github.com/tomtom215/assetsync/internal/models"

// AggregateEditorialUse folds the explicit editorial flags of terms into one
// asset-level value: any explicit true wins, otherwise any explicit false,
// otherwise nil (unknown).
func AggregateEditorialUse(terms []models.LicenseTerm) *bool {
	var sawFalse bool
	for i := range terms {
		v := terms[i].EditorialUse
		if v == nil {
			continue
		}
		if *v {
			return boolPtr(true)
		}
		sawFalse = true
	}
	if sawFalse {
		return boolPtr(false)
	}
	return nil
}

// effectiveEditorialUse prefers the aggregated term value and falls back to
// the asset's own tri-state.
func effectiveEditorialUse(asset *models.Asset) *bool {
	if v := AggregateEditorialUse(asset.LicenseTerms); v != nil {
		return v
	}
	if asset.EditorialUse == nil {
		return nil
	}
	return boolPtr(*asset.EditorialUse)
}

func boolPtr(b bool) *bool { return &b }
