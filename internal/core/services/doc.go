// Package services implements the driving port interfaces.
// Services contain the pipeline logic and orchestrate calls to driven
// ports (adapters): indexing, retrieval, answer synthesis and the
// interactive question loop.
//
// Services are pure Go with no CGO or external dependencies.
package services
