// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
orchestrator.go - One Sync Run

Orchestrator drives a single run for one tenant:

 1. Validate settings, target language capability and credential presence.
    Failures here are configuration errors returned to the caller.
 2. BeforeSync hook (false cancels the run).
 3. Metadata phase when forced by the caller or when the ID mapping is empty.
 4. Asset phase: page through the source from the stored continuation
    token, convert, download, partition and dispatch each page.
 5. AfterSync hook.

Everything after step 1 is routed to the adapter's error handlers instead of
being returned: authentication errors to OnAuthError, all others (including
recovered panics) to OnSyncError.

The orchestrator starts no goroutines. Runs must be serialized by the caller;
Manager does this through the job queue.
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/assetsync/internal/convert"
	"github.com/tomtom215/assetsync/internal/idmap"
	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/metrics"
	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/store"
	"github.com/tomtom215/assetsync/internal/syncerr"
	"github.com/tomtom215/assetsync/internal/target"
	"github.com/tomtom215/assetsync/internal/validation"
)

// Source is the part of source.ResilientClient the orchestrator uses.
type Source interface {
	CheckCredential(ctx context.Context) error
	FetchMetadata(ctx context.Context) (*models.MetadataBundle, error)
	FetchAssetPage(ctx context.Context, continuation string, caps models.Capabilities) (*models.AssetPage, error)
}

// Downloader fetches one binary to a local path.
type Downloader interface {
	Download(ctx context.Context, sourceURL, destPath string) (string, error)
}

// Settings are the per-tenant run settings.
type Settings struct {
	TenantID        string
	ImportLanguages []string
	// TempDir is the parent of the per-run download directory. Empty uses os.TempDir().
	TempDir string
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Source     Source
	Target     target.Adapter
	Downloader Downloader
	Tokens     store.TokenStore
	// IDs is the metadata mapping cache. It survives between runs; nil creates one.
	IDs *idmap.Mapper
}

// Orchestrator runs sync jobs for one tenant.
type Orchestrator struct {
	settings   Settings
	source     Source
	target     target.Adapter
	downloader Downloader
	tokens     store.TokenStore
	ids        *idmap.Mapper
	converter  *convert.Converter
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(settings Settings, deps Deps) *Orchestrator {
	ids := deps.IDs
	if ids == nil {
		ids = idmap.New()
	}
	return &Orchestrator{
		settings:   settings,
		source:     deps.Source,
		target:     deps.Target,
		downloader: deps.Downloader,
		tokens:     deps.Tokens,
		ids:        ids,
		converter:  convert.New(ids),
	}
}

// IDs returns the mapping cache.
func (o *Orchestrator) IDs() *idmap.Mapper {
	return o.ids
}

// Synchronize performs one run. Only configuration errors are returned;
// every other failure is handed to the target's error handlers.
func (o *Orchestrator) Synchronize(ctx context.Context, syncMetadata bool) error {
	_, err := o.Run(ctx, "", syncMetadata)
	return err
}

// Run performs one run and reports what it did. The report is returned even
// when the run fails.
func (o *Orchestrator) Run(ctx context.Context, trigger string, syncMetadata bool) (*models.RunReport, error) {
	report := &models.RunReport{
		RunID:     uuid.New().String(),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
	ctx = logging.ContextWithRun(ctx, report.RunID, o.settings.TenantID)
	log := logging.Ctx(ctx)

	defer func() {
		report.FinishedAt = time.Now()
		label := trigger
		if label == "" {
			label = "direct"
		}
		metrics.RecordSyncRun(label, report.Outcome, report.Duration())
		log.Info().
			Str("outcome", report.Outcome).
			Int("pages", report.Pages).
			Int("assets", report.Assets).
			Int("records", report.Buckets.Total()).
			Int("failed_assets", len(report.FailedAssets)).
			Dur("duration", report.Duration()).
			Msg("Sync run finished")
	}()

	caps := o.target.Capabilities()
	if err := o.validate(caps); err != nil {
		return o.fail(report, models.OutcomeConfigError, err)
	}
	if err := o.source.CheckCredential(ctx); err != nil {
		if syncerr.IsConfig(err) {
			return o.fail(report, models.OutcomeConfigError, err)
		}
		o.route(ctx, report, err)
		return report, nil
	}

	log.Info().Bool("sync_metadata", syncMetadata).Str("trigger", trigger).Msg("Sync run started")

	cancelled, err := o.runPhases(ctx, report, caps, syncMetadata)
	switch {
	case err != nil:
		o.route(ctx, report, err)
	case cancelled:
		report.Outcome = models.OutcomeCancelled
	default:
		report.Outcome = models.OutcomeSucceeded
	}
	return report, nil
}

func (o *Orchestrator) fail(report *models.RunReport, outcome string, err error) (*models.RunReport, error) {
	report.Outcome = outcome
	report.Error = err.Error()
	return report, err
}

// validate checks the settings before any network call.
func (o *Orchestrator) validate(caps models.Capabilities) error {
	const op = "validate settings"
	if o.settings.TenantID == "" {
		return syncerr.Config(op, syncerr.ErrMissingTenant)
	}
	if len(o.settings.ImportLanguages) == 0 {
		return syncerr.Config(op, syncerr.ErrNoImportLanguages)
	}
	for _, lang := range o.settings.ImportLanguages {
		if err := validation.LanguageTag(lang); err != nil {
			return syncerr.Config(op, fmt.Errorf("%w: %w", syncerr.ErrInvalidLanguage, err))
		}
	}
	if !caps.MultiLanguage && len(o.settings.ImportLanguages) > 1 {
		return syncerr.Config(op, fmt.Errorf("%w: %d languages", syncerr.ErrMultiLanguageUnsupported, len(o.settings.ImportLanguages)))
	}
	return nil
}

// route hands a run failure to the matching adapter handler.
func (o *Orchestrator) route(ctx context.Context, report *models.RunReport, err error) {
	report.Error = err.Error()
	log := logging.Ctx(ctx)

	if syncerr.IsAuth(err) {
		report.Outcome = models.OutcomeAuthError
		log.Error().Err(err).Msg("Sync run failed: authentication")
		o.safeHandler(ctx, func() { o.target.OnAuthError(ctx, err) })
		return
	}
	report.Outcome = models.OutcomeSyncError
	log.Error().Err(err).Str("kind", syncerr.KindOf(err).String()).Msg("Sync run failed")
	o.safeHandler(ctx, func() { o.target.OnSyncError(ctx, err) })
}

func (o *Orchestrator) safeHandler(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().Interface("panic", r).Msg("Target error handler panicked")
		}
	}()
	fn()
}

// runPhases runs steps 2-5. cancelled is true when BeforeSync declined.
func (o *Orchestrator) runPhases(ctx context.Context, report *models.RunReport, caps models.Capabilities, syncMetadata bool) (cancelled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = syncerr.SyncJob("synchronize", fmt.Errorf("panic: %v", r))
		}
	}()

	proceed, err := o.target.BeforeSync(ctx)
	if err != nil {
		return false, fmt.Errorf("before sync hook: %w", err)
	}
	if !proceed {
		logging.Ctx(ctx).Info().Msg("Sync run cancelled by target")
		return true, nil
	}

	forced := o.ids.IsEmpty()
	if syncMetadata || forced {
		if err := o.syncMetadata(ctx, report, forced); err != nil {
			return false, err
		}
	}

	if err := o.syncAssets(ctx, report, caps); err != nil {
		return false, err
	}

	if err := o.target.AfterSync(ctx); err != nil {
		return false, fmt.Errorf("after sync hook: %w", err)
	}
	return false, nil
}

// syncMetadata rebuilds the ID mapping from a fresh metadata import. When
// forced, the phase runs even if the target hook declines it.
func (o *Orchestrator) syncMetadata(ctx context.Context, report *models.RunReport, forced bool) error {
	log := logging.Ctx(ctx)

	proceed, err := o.target.BeforeGenericMetadataSync(ctx)
	if err != nil {
		return fmt.Errorf("before metadata sync hook: %w", err)
	}
	if !proceed {
		if !forced {
			log.Info().Msg("Metadata phase skipped by target")
			return nil
		}
		log.Warn().Msg("Target declined metadata phase but the ID mapping is empty, running it anyway")
	}

	// A failed import leaves the mapping empty so the next run rebuilds it.
	o.ids.Clear()
	staged := idmap.New()

	bundle, err := o.source.FetchMetadata(ctx)
	if err != nil {
		return err
	}

	for _, category := range models.AllCategories() {
		imported, err := o.target.ImportMetadata(ctx, category, bundle.Get(category))
		if err != nil {
			return fmt.Errorf("import %s metadata: %w", category, err)
		}
		for _, el := range imported {
			if el.TargetID == "" {
				return syncerr.SyncJob("import metadata", fmt.Errorf("%w: %s element %q",
					syncerr.ErrMissingTargetID, category, el.SourceKey))
			}
		}
		if err := staged.AddMapping(category, imported); err != nil {
			return syncerr.SyncJob("import metadata", fmt.Errorf("%s: %w", category, err))
		}
		metrics.MetadataElementsImported.WithLabelValues(category.String()).Add(float64(len(imported)))
	}
	o.ids.Replace(staged)
	report.MetadataRan = true
	log.Info().Int("elements", bundle.Total()).Msg("Metadata imported")

	if err := o.target.AfterGenericMetadataSync(ctx); err != nil {
		return fmt.Errorf("after metadata sync hook: %w", err)
	}
	return nil
}

// syncAssets pages through the asset listing.
func (o *Orchestrator) syncAssets(ctx context.Context, report *models.RunReport, caps models.Capabilities) error {
	log := logging.Ctx(ctx)

	proceed, err := o.target.BeforeAssetsSync(ctx)
	if err != nil {
		return fmt.Errorf("before assets sync hook: %w", err)
	}
	if !proceed {
		log.Info().Msg("Asset phase skipped by target")
		return nil
	}

	dir, err := os.MkdirTemp(o.settings.TempDir, "assetsync-run-*")
	if err != nil {
		return syncerr.SyncJob("create run directory", err)
	}
	defer func() {
		if rmErr := removeTree(dir); rmErr != nil {
			log.Warn().Err(rmErr).Str("dir", dir).Msg("Failed to remove run directory")
		}
	}()

	continuation, err := o.tokens.Load(ctx, o.settings.TenantID)
	if err != nil {
		return syncerr.SyncJob("load continuation token", err)
	}

	for {
		page, err := o.source.FetchAssetPage(ctx, continuation, caps)
		if err != nil {
			return err
		}
		report.Pages++
		metrics.SyncPagesTotal.Inc()

		counts, err := o.processPage(ctx, report, page, dir)
		if err != nil {
			return err
		}
		report.Buckets.Add(counts)

		if page.ContinuationToken != "" {
			continuation = page.ContinuationToken
			if err := o.tokens.Save(ctx, o.settings.TenantID, continuation); err != nil {
				return syncerr.SyncJob("save continuation token", err)
			}
		}

		log.Debug().
			Int("page", report.Pages).
			Int("assets", len(page.Assets)).
			Int("records", counts.Total()).
			Bool("has_more", page.HasMore).
			Msg("Asset page synchronized")

		if page.Done() {
			break
		}
	}

	if err := o.target.AfterAssetsSync(ctx); err != nil {
		return fmt.Errorf("after assets sync hook: %w", err)
	}
	return nil
}

// processPage converts, downloads, partitions and dispatches one page.
func (o *Orchestrator) processPage(ctx context.Context, report *models.RunReport, page *models.AssetPage, dir string) (models.BucketCounts, error) {
	var buckets target.Buckets

	for i := range page.Assets {
		asset := page.Assets[i]
		report.Assets++

		result, err := o.converter.Convert(asset)
		if err != nil {
			return models.BucketCounts{}, fmt.Errorf("convert asset %s: %w", asset.TransactionID, err)
		}
		if result.Len() == 0 {
			continue
		}

		result, err = o.downloadAll(ctx, dir, result)
		if err != nil {
			if ctx.Err() != nil {
				return models.BucketCounts{}, syncerr.SyncJob("download binaries", err)
			}
			o.assetFailed(ctx, report, asset.TransactionID, err)
			continue
		}

		if err := buckets.Partition(ctx, o.target, result); err != nil {
			return models.BucketCounts{}, fmt.Errorf("look up target IDs for %s: %w", asset.TransactionID, err)
		}
	}

	if err := buckets.Dispatch(ctx, o.target); err != nil {
		return models.BucketCounts{}, fmt.Errorf("dispatch records: %w", err)
	}

	counts := buckets.Counts()
	metrics.RecordRecords("new_binaries", counts.NewBinaries)
	metrics.RecordRecords("updated_binaries", counts.UpdatedBinaries)
	metrics.RecordRecords("new_compounds", counts.NewCompounds)
	metrics.RecordRecords("updated_compounds", counts.UpdatedCompounds)
	return counts, nil
}

func (o *Orchestrator) assetFailed(ctx context.Context, report *models.RunReport, transactionID string, err error) {
	reason := "download"
	if errors.Is(err, errEmptyDownloadURL) {
		reason = "missing_url"
	}
	report.FailedAssets = append(report.FailedAssets, models.AssetFailure{
		TransactionID: transactionID,
		Reason:        err.Error(),
	})
	metrics.SyncAssetFailures.WithLabelValues(reason).Inc()
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("transaction_id", transactionID).
		Msg("Asset skipped, binary download failed")
}
