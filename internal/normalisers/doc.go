// Package normalisers holds the Normaliser implementations that turn raw
// file bytes into documents. tfask reads Terraform and other text sources
// through the plaintext normaliser.
package normalisers
