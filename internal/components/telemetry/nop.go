package telemetry

// Nop discards every report.
type Nop struct{}

func (Nop) ReportBroken(id string, params ...any)  {}
func (Nop) ReportWarning(id string, params ...any) {}
func (Nop) ReportDebug(msg string, params ...any)  {}
func (Nop) ReportCount(id string, count int64)     {}
