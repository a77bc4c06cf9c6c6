// Package filtering decides which catalog products the storefront may list.
//
// Visibility rules come from the filtering section of the configuration and are
// applied to every provider result before facets are computed, so hidden
// products never contribute to facet counts.
//
// # Handle Filtering
//
// Handle filtering uses gobwas/glob patterns, supporting '*', '?' and
// character classes '[...]':
//
//   - "sample-*" matches "sample-ring", "sample-tote"
//   - "ring-?" matches "ring-1" but not "ring-10"
//
// # Tag Filtering
//
// Tag filtering compares product tags case-insensitively. The configured hidden
// tag (default "nextjs-frontend-hidden") is always part of the exclude list.
//
// # Filtering Logic
//
// Both filters follow the same precedence rules:
//
//  1. If an exclude pattern/tag matches -> exclude (exclude wins)
//  2. If include patterns/tags are specified and one matches -> include
//  3. If include patterns/tags are specified but none match -> exclude
//  4. Otherwise -> include
//
// A product is listed only if it passes BOTH handle and tag filtering.
package filtering
