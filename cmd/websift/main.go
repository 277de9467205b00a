// Package main provides the entry point for the websift CLI.
//
// websift acquires structured data from the web: it fetches pages, crawls
// bounded frontiers, and extracts titles, text, links, and tables into
// machine-readable records.
//
// Usage:
//
//	websift crawl <url> [url...]
//	websift crawl --query "search terms"
//
// See --help for all available options.
package main

// main is the entry point for websift.
func main() {
	Execute()
}
