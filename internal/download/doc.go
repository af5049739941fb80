// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package download fetches binary payloads into local files, at most once
// per destination path, attaching platform credentials only to the
// platform's own hosts.
package download
