package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	kinds := []string{"image", "video"}
	statuses := []string{"success", "error_decode", "error_encode", "error_load", "error_options", "error"}
	stages := map[string][]string{
		"image": {"decode", "encode"},
		"video": {"probe", "capture", "rasterize", "compress"},
	}

	for _, kind := range kinds {
		for _, status := range statuses {
			DerivationsTotal.WithLabelValues(kind, status)
		}
		for _, stage := range stages[kind] {
			StageDuration.WithLabelValues(kind, stage)
		}
		DerivationDuration.WithLabelValues(kind)
		OutputBytes.WithLabelValues(kind)
		DecodeHandlesOpen.WithLabelValues(kind)
	}

	for _, reason := range []string{"canceled", "memory"} {
		JobsRejectedTotal.WithLabelValues(reason)
	}
}
