package field

// SettleDetector latches once every flake rests on the bottom edge.
// The latch is cleared with Reset when a shake ends, so the next
// settle fires again.
type SettleDetector struct {
	settled bool
}

func NewSettleDetector() *SettleDetector {
	return &SettleDetector{}
}

// Update returns true on the tick the whole field first comes to rest.
// While the latch is set it returns false.
func (d *SettleDetector) Update(f *Field) bool {
	if d.settled {
		return false
	}
	if f.AtBottom() != f.Len() {
		return false
	}
	d.settled = true
	return true
}

func (d *SettleDetector) Reset() {
	d.settled = false
}

func (d *SettleDetector) Settled() bool {
	return d.settled
}
