// Package main provides the entry point for the nbscan CLI.
//
// nbscan scans a directory of Jupyter notebooks, extracts the URLs passed
// to CSV-loading calls in code cells, and writes the deduplicated, sorted
// list to a text file. Notebook files that fail to parse are deleted.
//
// Usage:
//
//	nbscan scan <directory>
//	nbscan compare <directory>
//
// See --help for all available options.
package main

// main is the entry point for nbscan.
func main() {
	Execute()
}
