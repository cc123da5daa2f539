package run_lifecycle_sweep

// Response итог одного прохода sweep
type Response struct {
	Scanned   int
	Completed int
	Cancelled int
	Failed    int
}
