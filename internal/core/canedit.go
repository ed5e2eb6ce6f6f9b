package core

// CanEdit is the single access-control rule of the system: the host may
// mutate any buffer, everyone else only the buffer their own view currently
// points at. Kept pure so the rule is testable away from any transport.
func CanEdit(host, caller, target, callerView SessionID) bool {
	if caller == host {
		return true
	}
	return callerView == target
}
