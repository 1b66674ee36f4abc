// Package passage serves diverse, relevant text passages from a corpus of
// scraped documentation pages. It chunks pages into retrievable passages,
// fits a character n-gram lexical index over them, and selects a
// diversity-aware top-k answer set with Maximal Marginal Relevance.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, mcp/).
package passage
