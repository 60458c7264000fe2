package trends

import "context"

// NoOp is the stand-in Provider used when no interest bridge is configured.
type NoOp struct{}

// NewNoOp creates a NoOp provider.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) InterestOverTime(_ context.Context, _ []string, _ string) (map[string][]Point, error) {
	return nil, ErrUnavailable
}

func (n *NoOp) InterestByRegion(_ context.Context, _ string, _ string) (map[string]int, error) {
	return nil, ErrUnavailable
}

func (n *NoOp) ResetSession(_ context.Context) error {
	return nil
}
