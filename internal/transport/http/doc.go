// Package http contains the chi handlers of the dashboard API. Handlers
// translate requests into service calls and render JSON envelopes or
// RFC 7807 problem details; they hold no business logic.
package http
