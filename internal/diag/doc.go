// Package diag defines the diagnostics reported by the symbex pipeline.
//
// A Diagnostic carries a severity, a stable code (see codes.go), a short
// message, a primary Location inside an IR program and optional notes.
// Locations name a file, an explored block key and an instruction index,
// since IR programs have no source text to point into.
//
// Producers emit through a Reporter; BagReporter collects into a Bag that
// the CLI sorts, deduplicates and prints. FromError converts a failed
// specialization into a diagnostic, turning the engine call stack into
// notes. The specializer itself never builds diagnostics.
package diag
