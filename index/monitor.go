package index

// Monitor provides hooks to observe an index run.
// Implement this interface to track progress and skipped sidecars.
type Monitor interface {
	Start(basePath string)
	SidecarIndexed(path string)
	SidecarSkipped(path string, err error)
	Finish(report *Report)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) SidecarIndexed(_ string)          {}
func (n *noopMonitor) SidecarSkipped(_ string, _ error) {}
func (n *noopMonitor) Finish(_ *Report)                 {}
