// Package ziptype defines shared types used across the zipview package and its
// internal packages. This avoids circular imports between zipview and
// internal/zipfile.
package ziptype
