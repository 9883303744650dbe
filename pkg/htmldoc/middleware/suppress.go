package middleware

// DiagnosticsToggle is the part of a parser SuppressDiagnostics drives.
type DiagnosticsToggle interface {
	SetCollectDiagnostics(enabled bool)
	ClearDiagnostics()
}

// SuppressDiagnostics turns parser diagnostic collection off before a parse
// and discards whatever was collected after it. It keeps no state.
type SuppressDiagnostics struct {
	Base
	parser DiagnosticsToggle
}

func NewSuppressDiagnostics(parser DiagnosticsToggle) *SuppressDiagnostics {
	return &SuppressDiagnostics{parser: parser}
}

func (s *SuppressDiagnostics) Kind() Kind { return KindSuppressDiagnostics }

func (s *SuppressDiagnostics) BeforeLoad(markup string) string {
	s.parser.SetCollectDiagnostics(false)
	return markup
}

func (s *SuppressDiagnostics) AfterLoad() {
	s.parser.ClearDiagnostics()
}
