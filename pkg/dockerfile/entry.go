package dockerfile

// Entry is one record of a Dockerfile's structure: either an instruction
// (Instruction holds its uppercased keyword) or a comment (Instruction is
// CommentInstruction).
//
// For a multi-line instruction joined by escaped line continuations,
// StartLine/EndLine span every physical line that contributed to it, and
// Content is the exact source text of the full contiguous physical range
// from StartLine to EndLine concatenated, including the raw text of any
// comment line that interrupted the continuation. That comment still gets
// its own Entry, positioned in Structure() at the point it was read, which
// can be earlier in the slice than the instruction it interrupts despite
// having a larger StartLine — but its text is excluded only from Value,
// not from Content.
type Entry struct {
	Instruction string
	StartLine   int
	EndLine     int
	Content     string
	Value       string
}

// IsComment reports whether e is a comment record.
func (e Entry) IsComment() bool {
	return e.Instruction == CommentInstruction
}
