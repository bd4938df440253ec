// Package changelog builds release notes from repository history.
//
// This package implements:
//   - tag ordering and predecessor resolution
//   - commit de-duplication, ordering and exclusion
//   - label extraction and regex transformers compiled from configuration
//   - pull request and document template filling
//   - classification of pull requests into categories
//
// Everything here operates on data already fetched by a Source; it performs
// no I/O of its own. Malformed rules are skipped with a logged warning and
// never abort a build.
package changelog
