package enums

type SignalKind string

const (
	// stop the current extractor, parent jobs continue
	SignalKindStop SignalKind = "stop"
	// like stop, but reported as a warning
	SignalKindAbort SignalKind = "abort"
	// stop the whole job tree
	SignalKindTerminate SignalKind = "terminate"
	// re-create the extractor and run it again
	SignalKindRestart SignalKind = "restart"
)
