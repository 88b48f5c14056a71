// Copyright © 2024 The moqls authors

package moq

// OutcomeKind is the tag of a MatchOutcome.
type OutcomeKind uint8

const (
	Ok OutcomeKind = iota
	CountMismatch
	TypeMismatches
)

func (k OutcomeKind) String() string {
	switch k {
	case CountMismatch:
		return "count-mismatch"
	case TypeMismatches:
		return "type-mismatches"
	}
	return "ok"
}

// MatchOutcome is the result of comparing a reference parameter list with a
// candidate list.
type MatchOutcome struct {
	Kind     OutcomeKind
	Expected int
	Actual   int
	// Indices lists the mismatching positions of a TypeMismatches outcome
	// in ascending order.
	Indices []int
}

// Match compares candidate against reference by position. Types compare by
// identity. A side whose type is unknown matches anything, so a parameter
// written without a type or naming an unresolved type only counts.
func Match(reference, candidate []Param) MatchOutcome {
	if len(reference) != len(candidate) {
		return MatchOutcome{Kind: CountMismatch, Expected: len(reference), Actual: len(candidate)}
	}
	var idx []int
	for i := range reference {
		want, got := reference[i].Type, candidate[i].Type
		if !want.Known() || !got.Known() {
			continue
		}
		if want.ID != got.ID {
			idx = append(idx, i)
		}
	}
	if len(idx) > 0 {
		return MatchOutcome{Kind: TypeMismatches, Expected: len(reference), Actual: len(candidate), Indices: idx}
	}
	return MatchOutcome{Kind: Ok, Expected: len(reference), Actual: len(candidate)}
}

// aggregate combines the outcomes of every candidate overload. One Ok
// exonerates the call. Otherwise the type outcome with the fewest
// mismatches wins over count outcomes, and the first outcome wins ties.
// It returns the index of the chosen outcome, or -1 for no outcomes.
func aggregate(outcomes []MatchOutcome) (MatchOutcome, int) {
	best := -1
	for i, o := range outcomes {
		switch {
		case o.Kind == Ok:
			return o, i
		case best < 0:
			best = i
		case o.Kind == TypeMismatches && outcomes[best].Kind == CountMismatch:
			best = i
		case o.Kind == TypeMismatches && len(o.Indices) < len(outcomes[best].Indices):
			best = i
		}
	}
	if best < 0 {
		return MatchOutcome{}, -1
	}
	return outcomes[best], best
}
