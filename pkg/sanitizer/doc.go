// Package sanitizer provides normalization functions for catalog data.
//
// All functions are idempotent - applying them multiple times produces the same
// result. Invalid input is handled by returning empty strings or empty slices
// rather than errors.
//
// Normalization includes:
//   - Display text (venue names, addresses, court labels): trim and collapse whitespace
//   - Facility labels: display normalization plus case-insensitive de-duplication
//   - Keys: lowercase, non-alphanumerics collapsed to "_" - "Badminton VIP 1" becomes "badminton_vip_1"
package sanitizer
