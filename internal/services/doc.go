// Package services holds the business logic behind the HTTP handlers:
// the dashboard snapshot with its per-view aggregations, and health
// reporting. Services own state; handlers stay thin.
package services
