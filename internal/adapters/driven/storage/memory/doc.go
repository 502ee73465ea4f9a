// Package memory provides in-process implementations of driven ports.
//
// ConfigStore backs settings in tests. VectorStore keeps an index for the
// lifetime of the process, for ephemeral runs and tests. Index is the search
// structure shared with the SQLite store, which loads persisted records into it.
package memory
