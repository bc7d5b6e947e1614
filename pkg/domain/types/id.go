package types

// Row identifiers for the persisted tables. All backends allocate them as
// monotonically increasing integers.
type (
	ActorID   int64
	VerbID    int64
	ObjectID  int64
	ResultID  int64
	SummaryID int64
)

// IsValid reports whether the ID refers to an allocated row.
func (id ActorID) IsValid() bool { return id > 0 }

// IsValid reports whether the ID refers to an allocated row.
func (id VerbID) IsValid() bool { return id > 0 }

// IsValid reports whether the ID refers to an allocated row.
func (id ObjectID) IsValid() bool { return id > 0 }

// IsValid reports whether the ID refers to an allocated row.
func (id ResultID) IsValid() bool { return id > 0 }

// IsValid reports whether the ID refers to an allocated row.
func (id SummaryID) IsValid() bool { return id > 0 }
