// Package reindex migrates stored knowledge vectors to a new embedding
// model.
//
// The Reindexer streams every chunk in the knowledge base in batches,
// embeds the chunk text with the configured embedder and writes normalized
// vectors back under the same IDs. Embedding calls retry with exponential
// backoff, progress is reported to a writer, and a checkpoint is saved
// after each batch so an interrupted run resumes where it stopped.
package reindex
