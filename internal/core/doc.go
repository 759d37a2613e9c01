// Package core holds the ingestion pipeline for equipment parameter files.
//
// It has no knowledge of HTTP or terminals; the web server, the CLI and the
// drop-folder watcher all drive the same [Service].
//
// # Pipeline
//
//  1. [ReadTable] turns a CSV or XLSX stream into a [RawTable]. A UTF-8 BOM is
//     dropped and invalid bytes are replaced.
//  2. [Validate] checks for the five required columns and parses every row
//     into an [EquipmentRecord]. The first bad row fails the whole file.
//  3. [Aggregate] computes the KPIs and the type distribution.
//  4. The service records a history entry, publishes a new [View] and
//     restarts the distribution reveal.
//
// Only one ingestion runs at a time. A second caller waits up to the
// configured time and then receives [ErrIngestBusy].
//
// History is best effort. If the store is down the new view is still
// published and the failure is logged and counted.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - VAL002-VAL004: row and header validation
//   - FILE001-FILE006: size, parsing and format problems
//   - HIST001: history store unavailable
//   - ING001-ING003: busy, cancelled or timed out
package core
