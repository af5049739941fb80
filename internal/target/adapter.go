// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package target

import (
	"context"

	"github.com/tomtom215/assetsync/internal/models"
)

// Adapter is the downstream asset-management system a sync run writes into.
//
// Calls arrive sequentially from a single run; implementations do not need
// to be safe for concurrent runs of the same tenant.
type Adapter interface {
	// Capabilities declares what the target can store. It is read once per run.
	Capabilities() models.Capabilities

	// BeforeSync is called first. Returning false cancels the run without error.
	BeforeSync(ctx context.Context) (bool, error)
	AfterSync(ctx context.Context) error

	// BeforeGenericMetadataSync returning false skips the metadata phase.
	BeforeGenericMetadataSync(ctx context.Context) (bool, error)
	AfterGenericMetadataSync(ctx context.Context) error

	// BeforeAssetsSync returning false skips the asset phase.
	BeforeAssetsSync(ctx context.Context) (bool, error)
	AfterAssetsSync(ctx context.Context) error

	// ImportMetadata stores the elements of one category and returns them
	// with TargetID set on every element.
	ImportMetadata(ctx context.Context, category models.MetadataCategory, elements []models.MetadataElement) ([]models.MetadataElement, error)

	// TargetIDForBinary returns the target ID of a previously imported binary
	// record, or "" if none exists.
	TargetIDForBinary(ctx context.Context, transactionID, binaryID string) (string, error)
	// TargetIDForCompound returns the target ID of a previously imported
	// compound record, or "" if none exists.
	TargetIDForCompound(ctx context.Context, transactionID string) (string, error)

	ImportNewBinaries(ctx context.Context, records []models.BinaryAsset) error
	UpdateBinaries(ctx context.Context, updates []BinaryUpdate) error
	ImportNewCompounds(ctx context.Context, records []models.CompoundAsset) error
	UpdateCompounds(ctx context.Context, updates []CompoundUpdate) error

	// OnAuthError receives authentication failures of a run.
	OnAuthError(ctx context.Context, err error)
	// OnSyncError receives every other failure of a run.
	OnSyncError(ctx context.Context, err error)
}

// BinaryUpdate pairs a converted binary record with the ID of the existing
// target record it replaces.
type BinaryUpdate struct {
	TargetID string
	Record   models.BinaryAsset
}

// CompoundUpdate pairs a converted compound record with the ID of the
// existing target record it replaces.
type CompoundUpdate struct {
	TargetID string
	Record   models.CompoundAsset
}

// Buckets partitions one page's records by kind and by whether the target
// already knows them.
type Buckets struct {
	NewBinaries      []models.BinaryAsset
	UpdatedBinaries  []BinaryUpdate
	NewCompounds     []models.CompoundAsset
	UpdatedCompounds []CompoundUpdate
}

// Counts returns the size of each bucket.
func (b *Buckets) Counts() models.BucketCounts {
	return models.BucketCounts{
		NewBinaries:      len(b.NewBinaries),
		UpdatedBinaries:  len(b.UpdatedBinaries),
		NewCompounds:     len(b.NewCompounds),
		UpdatedCompounds: len(b.UpdatedCompounds),
	}
}

// Partition sorts the records of one conversion result into b, asking the
// adapter whether each record already exists.
func (b *Buckets) Partition(ctx context.Context, a Adapter, result models.ConversionResult) error {
	for _, rec := range result.Records() {
		switch r := rec.(type) {
		case models.BinaryAsset:
			id, err := a.TargetIDForBinary(ctx, r.TransactionID(), r.BinaryID)
			if err != nil {
				return err
			}
			if id == "" {
				b.NewBinaries = append(b.NewBinaries, r)
			} else {
				b.UpdatedBinaries = append(b.UpdatedBinaries, BinaryUpdate{TargetID: id, Record: r})
			}
		case models.CompoundAsset:
			id, err := a.TargetIDForCompound(ctx, r.TransactionID())
			if err != nil {
				return err
			}
			if id == "" {
				b.NewCompounds = append(b.NewCompounds, r)
			} else {
				b.UpdatedCompounds = append(b.UpdatedCompounds, CompoundUpdate{TargetID: id, Record: r})
			}
		}
	}
	return nil
}

// Dispatch sends every non-empty bucket to the matching adapter call.
func (b *Buckets) Dispatch(ctx context.Context, a Adapter) error {
	if len(b.NewBinaries) > 0 {
		if err := a.ImportNewBinaries(ctx, b.NewBinaries); err != nil {
			return err
		}
	}
	if len(b.UpdatedBinaries) > 0 {
		if err := a.UpdateBinaries(ctx, b.UpdatedBinaries); err != nil {
			return err
		}
	}
	if len(b.NewCompounds) > 0 {
		if err := a.ImportNewCompounds(ctx, b.NewCompounds); err != nil {
			return err
		}
	}
	if len(b.UpdatedCompounds) > 0 {
		if err := a.UpdateCompounds(ctx, b.UpdatedCompounds); err != nil {
			return err
		}
	}
	return nil
}
