// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LLMService: Text and vision generation against a model provider
//   - PromptStore: Prompt templates for analysis and simplification
//   - ConfigStore: Application configuration
//   - FileStore: Uploaded report persistence
//   - NormaliserRegistry: Text extraction by file type
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, reference retrieval is disabled.
//   - ReferenceStore: Reference chunk storage and similarity search.
//   - PostProcessor: Splits reference documents into chunks before embedding.
//   - ReferenceSource: Fetches reference documents from a remote repository.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
