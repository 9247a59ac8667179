package nullable

// Bool is a three-valued (Kleene) boolean
type Bool uint8

const (
	Unknown Bool = iota
	False
	True
)

// BoolOf lifts a plain bool
func BoolOf(b bool) Bool {
	if b {
		return True
	}
	return False
}

// And is Kleene conjunction: False dominates, then Unknown
func (b Bool) And(o Bool) Bool {
	if b == False || o == False {
		return False
	}
	if b == Unknown || o == Unknown {
		return Unknown
	}
	return True
}

// Or is Kleene disjunction: True dominates, then Unknown
func (b Bool) Or(o Bool) Bool {
	if b == True || o == True {
		return True
	}
	if b == Unknown || o == Unknown {
		return Unknown
	}
	return False
}

func (b Bool) Not() Bool {
	switch b {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

// IsTrue collapses to a plain flag. Unknown is never eligible.
func (b Bool) IsTrue() bool {
	return b == True
}

// All folds a conjunction over conds
func All(conds ...Bool) Bool {
	out := True
	for _, c := range conds {
		out = out.And(c)
	}
	return out
}

func (b Bool) String() string {
	switch b {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unknown"
}
