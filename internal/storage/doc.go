// Package storage keeps uploaded video payloads.
//
// A [Store] writes objects under opaque keys. [LocalStore] keeps them in a directory and
// [S3Store] in an S3-compatible bucket (AWS, R2 or MinIO through a custom endpoint).
// [HashingReader] computes the SHA-256 of a payload while it streams into a store.
package storage
