package models

// Stats holds aggregate counts exported as metrics.
type Stats struct {
	Users         int64
	Lists         int64
	Items         int64
	ClaimedItems  int64
	PendingShares int64
	BoundShares   int64
}
