// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
catalog.go - BadgerDB Catalog Target

Catalog is the bundled target adapter. It keeps imported metadata and asset
records in the shared store under the "catalog:<tenant>:" prefix and copies
downloaded binaries into a blob directory.

Key layout:

	catalog:<tenant>:meta:<category>:<source key>   -> metadata element
	catalog:<tenant>:bin:<tx>:<binary id>           -> StoredBinary
	catalog:<tenant>:cmp:<tx>                       -> StoredCompound

Metadata target IDs are stable: re-importing a source key keeps the ID it was
first given. Blobs are only copied again when the binary's version increases.
*/

//nolint:staticcheck // File documentation, not package doc
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/assetsync/internal/config"
	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/store"
	"github.com/tomtom215/assetsync/internal/target"
)

// StoredBinary is a binary record as kept in the catalog.
type StoredBinary struct {
	TargetID   string             `json:"target_id"`
	Record     models.BinaryAsset `json:"record"`
	BlobPath   string             `json:"blob_path,omitempty"`
	ImportedAt time.Time          `json:"imported_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// StoredCompound is a compound record as kept in the catalog. Parts holds
// the target IDs of the part binaries in order.
type StoredCompound struct {
	TargetID   string               `json:"target_id"`
	Record     models.CompoundAsset `json:"record"`
	Parts      []string             `json:"parts"`
	ImportedAt time.Time            `json:"imported_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// Catalog is a target.Adapter backed by BadgerDB.
type Catalog struct {
	db      *store.DB
	tenant  string
	blobDir string
	caps    models.Capabilities

	mu            sync.Mutex
	lastAuthError error
	lastSyncError error
	lastSyncAt    time.Time
}

var _ target.Adapter = (*Catalog)(nil)

// New creates a catalog for tenant using db and the blob directory from cfg.
func New(db *store.DB, tenant string, cfg *config.CatalogConfig) (*Catalog, error) {
	if err := os.MkdirAll(cfg.BlobDir, 0o750); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Catalog{
		db:      db,
		tenant:  tenant,
		blobDir: cfg.BlobDir,
		caps: models.Capabilities{
			MultiLanguage:  cfg.MultiLanguage,
			CompoundAssets: cfg.CompoundAssets,
			BinaryUpdates:  cfg.BinaryUpdates,
		},
	}, nil
}

func (c *Catalog) prefix() string {
	return "catalog:" + c.tenant + ":"
}

func (c *Catalog) metaKey(category models.MetadataCategory, sourceKey string) []byte {
	return []byte(c.prefix() + "meta:" + category.String() + ":" + sourceKey)
}

func (c *Catalog) binaryKey(transactionID, binaryID string) []byte {
	return []byte(c.prefix() + "bin:" + transactionID + ":" + binaryID)
}

func (c *Catalog) compoundKey(transactionID string) []byte {
	return []byte(c.prefix() + "cmp:" + transactionID)
}

// Capabilities returns the configured capabilities.
func (c *Catalog) Capabilities() models.Capabilities {
	return c.caps
}

// BeforeSync always lets the run proceed.
func (c *Catalog) BeforeSync(ctx context.Context) (bool, error) {
	logging.Ctx(ctx).Debug().Str("tenant", c.tenant).Msg("Catalog sync starting")
	return true, nil
}

// AfterSync records the completion time.
func (c *Catalog) AfterSync(context.Context) error {
	c.mu.Lock()
	c.lastSyncAt = time.Now()
	c.mu.Unlock()
	return nil
}

// BeforeGenericMetadataSync always runs the metadata phase when asked to.
func (c *Catalog) BeforeGenericMetadataSync(context.Context) (bool, error) { return true, nil }

// AfterGenericMetadataSync is a no-op.
func (c *Catalog) AfterGenericMetadataSync(context.Context) error { return nil }

// BeforeAssetsSync always runs the asset phase.
func (c *Catalog) BeforeAssetsSync(context.Context) (bool, error) { return true, nil }

// AfterAssetsSync is a no-op.
func (c *Catalog) AfterAssetsSync(context.Context) error { return nil }

// ImportMetadata stores elements and stamps each with a target ID, reusing
// the ID of a previously imported element with the same source key.
func (c *Catalog) ImportMetadata(ctx context.Context, category models.MetadataCategory, elements []models.MetadataElement) ([]models.MetadataElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.MetadataElement, len(elements))

	err := c.db.Update(func(txn *badger.Txn) error {
		for i, el := range elements {
			key := c.metaKey(category, el.SourceKey)

			var existing models.MetadataElement
			found, err := getJSON(txn, key, &existing)
			if err != nil {
				return err
			}
			el.Names = el.Names.Clone()
			if found && existing.TargetID != "" {
				el.TargetID = existing.TargetID
			} else {
				el.TargetID = uuid.New().String()
			}
			if err := setJSON(txn, key, el); err != nil {
				return err
			}
			out[i] = el
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import %s metadata: %w", category, err)
	}
	return out, nil
}

// TargetIDForBinary returns the target ID of a stored binary, or "".
func (c *Catalog) TargetIDForBinary(_ context.Context, transactionID, binaryID string) (string, error) {
	sb, found, err := c.Binary(transactionID, binaryID)
	if err != nil || !found {
		return "", err
	}
	return sb.TargetID, nil
}

// TargetIDForCompound returns the target ID of a stored compound, or "".
func (c *Catalog) TargetIDForCompound(_ context.Context, transactionID string) (string, error) {
	sc, found, err := c.Compound(transactionID)
	if err != nil || !found {
		return "", err
	}
	return sc.TargetID, nil
}

// ImportNewBinaries stores new binary records and copies their files.
func (c *Catalog) ImportNewBinaries(ctx context.Context, records []models.BinaryAsset) error {
	now := time.Now()
	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		sb := StoredBinary{
			TargetID:   uuid.New().String(),
			Record:     records[i],
			ImportedAt: now,
			UpdatedAt:  now,
		}
		if err := c.putBinary(&sb, true); err != nil {
			return err
		}
	}
	logging.Ctx(ctx).Info().Int("count", len(records)).Msg("Catalog imported new binaries")
	return nil
}

// UpdateBinaries replaces stored binary records. The file is copied again
// only when the version increased or no blob is present.
func (c *Catalog) UpdateBinaries(ctx context.Context, updates []target.BinaryUpdate) error {
	now := time.Now()
	for _, u := range updates {
		if err := ctx.Err(); err != nil {
			return err
		}
		prev, found, err := c.Binary(u.Record.TransactionID(), u.Record.BinaryID)
		if err != nil {
			return err
		}
		sb := StoredBinary{
			TargetID:   u.TargetID,
			Record:     u.Record,
			ImportedAt: now,
			UpdatedAt:  now,
		}
		copyBlob := true
		if found {
			sb.ImportedAt = prev.ImportedAt
			sb.BlobPath = prev.BlobPath
			copyBlob = u.Record.Version > prev.Record.Version || prev.BlobPath == ""
		}
		if err := c.putBinary(&sb, copyBlob); err != nil {
			return err
		}
	}
	logging.Ctx(ctx).Info().Int("count", len(updates)).Msg("Catalog updated binaries")
	return nil
}

// ImportNewCompounds stores new compound records.
func (c *Catalog) ImportNewCompounds(ctx context.Context, records []models.CompoundAsset) error {
	now := time.Now()
	for i := range records {
		sc := StoredCompound{
			TargetID:   uuid.New().String(),
			Record:     records[i],
			ImportedAt: now,
			UpdatedAt:  now,
		}
		if err := c.putCompound(ctx, &sc); err != nil {
			return err
		}
	}
	logging.Ctx(ctx).Info().Int("count", len(records)).Msg("Catalog imported new compounds")
	return nil
}

// UpdateCompounds replaces stored compound records.
func (c *Catalog) UpdateCompounds(ctx context.Context, updates []target.CompoundUpdate) error {
	now := time.Now()
	for _, u := range updates {
		prev, found, err := c.Compound(u.Record.TransactionID())
		if err != nil {
			return err
		}
		sc := StoredCompound{
			TargetID:   u.TargetID,
			Record:     u.Record,
			ImportedAt: now,
			UpdatedAt:  now,
		}
		if found {
			sc.ImportedAt = prev.ImportedAt
		}
		if err := c.putCompound(ctx, &sc); err != nil {
			return err
		}
	}
	logging.Ctx(ctx).Info().Int("count", len(updates)).Msg("Catalog updated compounds")
	return nil
}

// OnAuthError logs and keeps the error.
func (c *Catalog) OnAuthError(ctx context.Context, err error) {
	c.mu.Lock()
	c.lastAuthError = err
	c.mu.Unlock()
	logging.Ctx(ctx).Error().Err(err).Str("tenant", c.tenant).Msg("Catalog sync stopped: authentication failed")
}

// OnSyncError logs and keeps the error.
func (c *Catalog) OnSyncError(ctx context.Context, err error) {
	c.mu.Lock()
	c.lastSyncError = err
	c.mu.Unlock()
	logging.Ctx(ctx).Error().Err(err).Str("tenant", c.tenant).Msg("Catalog sync failed")
}

// LastErrors returns the most recent errors passed to the handlers.
func (c *Catalog) LastErrors() (authErr, syncErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAuthError, c.lastSyncError
}

// LastSyncAt returns when AfterSync was last called.
func (c *Catalog) LastSyncAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSyncAt
}

// Binary returns a stored binary record.
func (c *Catalog) Binary(transactionID, binaryID string) (StoredBinary, bool, error) {
	var sb StoredBinary
	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, c.binaryKey(transactionID, binaryID), &sb)
		return err
	})
	if err != nil {
		return StoredBinary{}, false, fmt.Errorf("read binary %s/%s: %w", transactionID, binaryID, err)
	}
	return sb, found, nil
}

// Compound returns a stored compound record.
func (c *Catalog) Compound(transactionID string) (StoredCompound, bool, error) {
	var sc StoredCompound
	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, c.compoundKey(transactionID), &sc)
		return err
	})
	if err != nil {
		return StoredCompound{}, false, fmt.Errorf("read compound %s: %w", transactionID, err)
	}
	return sc, found, nil
}

// Metadata returns every stored element of a category.
func (c *Catalog) Metadata(category models.MetadataCategory) ([]models.MetadataElement, error) {
	prefix := []byte(c.prefix() + "meta:" + category.String() + ":")
	var out []models.MetadataElement
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var el models.MetadataElement
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &el)
			}); err != nil {
				return err
			}
			out = append(out, el)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s metadata: %w", category, err)
	}
	return out, nil
}

func (c *Catalog) putBinary(sb *StoredBinary, copyBlob bool) error {
	if copyBlob && sb.Record.LocalPath != "" {
		path, err := c.storeBlob(sb.TargetID, &sb.Record)
		if err != nil {
			return err
		}
		sb.BlobPath = path
	}
	// LocalPath points into the run's temp dir, which is gone after the run.
	sb.Record.LocalPath = ""

	err := c.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, c.binaryKey(sb.Record.TransactionID(), sb.Record.BinaryID), sb)
	})
	if err != nil {
		return fmt.Errorf("store binary %s: %w", sb.Record.BinaryID, err)
	}
	return nil
}

func (c *Catalog) putCompound(ctx context.Context, sc *StoredCompound) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc.Record.Parts = append([]models.BinaryAsset(nil), sc.Record.Parts...)
	parts := make([]string, 0, len(sc.Record.Parts))
	for i := range sc.Record.Parts {
		p := &sc.Record.Parts[i]
		id, err := c.TargetIDForBinary(ctx, p.TransactionID(), p.BinaryID)
		if err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("compound %s: %w: part %s", sc.TargetID, ErrUnknownPart, p.BinaryID)
		}
		parts = append(parts, id)
		p.LocalPath = ""
	}
	sc.Parts = parts

	err := c.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, c.compoundKey(sc.Record.TransactionID()), sc)
	})
	if err != nil {
		return fmt.Errorf("store compound %s: %w", sc.Record.TransactionID(), err)
	}
	return nil
}

// ErrUnknownPart is returned when a compound references a binary that was
// not imported first.
var ErrUnknownPart = errors.New("compound part not imported")

func getJSON(txn *badger.Txn, key []byte, v interface{}) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
	if err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set(key, data)
}
