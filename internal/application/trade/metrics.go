package trade

// Metrics receives order and checkout outcomes. *telemetry.Metrics
// implements it.
type Metrics interface {
	OrderCreated(status string)
	CheckoutSubmitted(result string)
}

type noopMetrics struct{}

func (noopMetrics) OrderCreated(string)      {}
func (noopMetrics) CheckoutSubmitted(string) {}
