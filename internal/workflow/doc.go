// Package workflow drives the processing pipeline: it scans the input
// directory for new source videos, walks queue items through the analysis,
// compilation and rendering stages, and isolates per-item failures so one
// bad video never halts the batch.
package workflow
