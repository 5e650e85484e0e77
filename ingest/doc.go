// Package ingest seeds the store from JSON fixture files.
//
// The Loader type handles one-shot loading of deck and knowledge fixtures:
//   - Card fixtures are decoded and written to the card repository.
//   - Knowledge fixtures are embedded in batches on a worker pool and
//     upserted under content-derived IDs, so reseeding the same fixture
//     replaces chunks instead of duplicating them.
//
// Loading is synchronous: LoadKnowledge returns once every batch has been
// embedded and stored, joining any batch errors.
package ingest
