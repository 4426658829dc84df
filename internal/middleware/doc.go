// Package middleware provides HTTP middleware for the thumbnail service.
//
// It includes:
//   - Request IDs, echoed in the X-Request-ID response header
//   - Access logging in W3C Extended Log Format, including the media kind,
//     outcome class and size of each thumbnail
//   - Prometheus request metrics keyed by route template
package middleware
