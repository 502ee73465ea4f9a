// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentLoader: Reads source files into documents
//   - Normaliser: Transforms raw file bytes into a document
//   - PostProcessor / PostProcessorPipeline: Splits documents into chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore / VectorIndex: Persists and searches embedding records
//   - LLMService: Generates answers, whole or streamed
//   - PromptStore: Prompt templates, overridable on disk
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Provider connectivity checks
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
