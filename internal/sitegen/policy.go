package sitegen

// Policy decides what happens when the model path fails. Generation and
// editing share one policy.
type Policy struct {
	// ModelAttempts is how many times one variant or one edit is sent to the
	// model before it counts as failed.
	ModelAttempts int
	// SkipFailedVariants keeps the variants that succeeded when others fail.
	// When false the first failed variant fails the whole generation.
	SkipFailedVariants bool
	// FallbackToDeterministic uses the assembler (generation) or the
	// heuristic editor (editing) when the model produced nothing usable.
	FallbackToDeterministic bool
}

func DefaultPolicy() Policy {
	return Policy{ModelAttempts: 1, SkipFailedVariants: true, FallbackToDeterministic: true}
}

func (p Policy) attempts() int {
	if p.ModelAttempts < 1 {
		return 1
	}
	return p.ModelAttempts
}
