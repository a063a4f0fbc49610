package store

// ScanRun summarizes one engine scan.
type ScanRun struct {
	ID          string
	Patterns    []string
	MethodCount int
	MatchCount  int
	FirstSeq    int64 // seq of the first match, or the clock position when there are none
	LastSeq     int64
}

// MatchRecord is one pattern match inside a method body.
type MatchRecord struct {
	RunID   string
	Seq     int64
	Pattern string
	Method  string   // full method name, e.g. "Lcom/Foo;.run:()V"
	Start   int      // index of the first matched instruction
	Insns   []string // rendered matched instructions
}

// ProfileRecord holds the stats of one profiled method.
type ProfileRecord struct {
	Method        string
	AppearPercent float64
	CallCount     float64
	OrderPercent  float64
	MinAPILevel   uint8
}
