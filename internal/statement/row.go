package statement

// RowKind classifies the outcome of reading one data row.
type RowKind int

const (
	// RowAccepted produced a candidate.
	RowAccepted RowKind = iota
	// RowSkipped is a blank or footer line missing its date or amount.
	RowSkipped
	// RowFailed has a malformed required field and aborts the parse.
	RowFailed
)

func (k RowKind) String() string {
	switch k {
	case RowAccepted:
		return "accepted"
	case RowSkipped:
		return "skipped"
	case RowFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Row is the outcome of reading one data row.
type Row struct {
	Kind        RowKind
	Candidate   Candidate
	Description string
	Err         error
}

func accept(c Candidate, description string) Row {
	return Row{Kind: RowAccepted, Candidate: c, Description: description}
}

func skip() Row { return Row{Kind: RowSkipped} }

func fail(err error) Row { return Row{Kind: RowFailed, Err: err} }
