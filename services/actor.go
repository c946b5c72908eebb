package services

// Actor is the authenticated identity behind a call.
type Actor struct {
	UserID  uint
	IsStaff bool
}

func requireStaff(actor Actor) error {
	if !actor.IsStaff {
		return ErrStaffOnly
	}
	return nil
}
