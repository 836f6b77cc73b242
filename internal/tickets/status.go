package tickets

// Status is the ticket lifecycle state.
//
//	RESERVED  -> CONFIRMED | CANCELLED
//	CONFIRMED -> CANCELLED | SUSPENDED
//	SUSPENDED, CANCELLED: terminal
type Status string

const (
	StatusReserved  Status = "RESERVED"
	StatusConfirmed Status = "CONFIRMED"
	StatusSuspended Status = "SUSPENDED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the ticket status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusConfirmed, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusSuspended || s == StatusCancelled
}

// OccupiesSeat reports whether a ticket in this status blocks overlapping
// bookings of its seat range.
func (s Status) OccupiesSeat() bool {
	return s == StatusReserved || s == StatusConfirmed
}

// BlocksAvailability reports whether the seat must be hidden from free-seat
// listings. Suspended tickets hold their seat out of sale even though the
// hold is administrative rather than a live booking.
func (s Status) BlocksAvailability() bool {
	return s.OccupiesSeat() || s == StatusSuspended
}

// CanTransitionTo checks a lifecycle transition.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusReserved:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCancelled || target == StatusSuspended
	}
	return false
}

// PaymentStatus tracks settlement independently of the seat lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

func (p PaymentStatus) String() string {
	return string(p)
}
