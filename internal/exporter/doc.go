// Package exporter serializes dashboard metric series into downloadable
// CSV and XLSX documents.
package exporter
