// Package handlers provides the HTTP API of the thumbnail service.
//
// It includes handlers for:
//   - Image and video thumbnails from an uploaded buffer
//   - Kind dispatch on the request Content-Type
//   - Health, liveness and version checks
//   - The Prometheus metrics endpoint
package handlers
