// Package filter reduces or reshapes crawl results according to a
// natural-language instruction. The crawl core treats the filter as an
// external collaborator behind the Filter interface; the bundled
// Heuristic implementation understands quoted must-contain phrases and
// field-name projections, and passes everything else through unchanged.
package filter
