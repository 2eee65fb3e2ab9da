package metrics

// Config labels every metric with the emitting service and environment.
type Config struct {
	ServiceName string
	Environment string
}
