/*
Package workers sizes worker pools for derivation jobs in containerized
environments.

Go 1.19+ sets GOMAXPROCS from the container CPU limit, while runtime.NumCPU
still reports the host. Every count here starts from GOMAXPROCS, so a pod
limited to 2 cores on a 64-core node gets 2 image workers, not 64.

# Job Kinds

Image compression decodes, resamples and encodes in-process, so it is
CPU-bound: one worker per CPU. Video sampling spends most of its time in an
ffmpeg subprocess and waiting on pipes, so it uses 1.5 workers per CPU.

	n := workers.ForKind(mediatypes.FileTypeVideo, 16)

# Override

The WORKERS environment variable replaces the computed count, still
subject to the caller's limit:

	WORKERS=4 thumbnail batch ./clips
*/
package workers
