/*
Package filesystem reads source files with retry logic for NFS stale file
handle errors.

Media libraries are often NFS mounts, and a file replaced on the server
can fail with ESTALE on the first access. The thumbnail CLI reads its
inputs through [ReadFileWithRetry]:

	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())

# Retry Behavior

Only ESTALE triggers a retry. Every other error returns immediately. The
defaults are 3 retries with exponential backoff from 50ms capped at 500ms.
*/
package filesystem
