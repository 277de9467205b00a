// Package extract turns fetched HTML into the structured page field bag:
// title, visible text, outbound links, images, headings, tables, lists,
// and meta tags. Relative references are resolved against the page URL.
package extract
