// Package imdbscrape provides a small HTTP service that scrapes IMDb title
// pages. A client posts a title page URL, the server fetches the page,
// extracts a fixed set of fields from the markup and answers with an HTML
// fragment summarizing the movie.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, rod/).
package imdbscrape
