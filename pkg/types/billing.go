package types

// BillingEntry is one line of an order's collection history. Entries are only
// ever appended; the slice as a whole is stored as a JSON column.
type BillingEntry struct {
	Date   string `json:"date"`
	Note   string `json:"note,omitempty"`
	Status string `json:"status"`
}

// BillingHistory is the append-only list of billing entries on an order.
type BillingHistory []BillingEntry

// Append returns the history with one more entry. The receiver is not mutated
// so callers can hold the previous value while a save is in flight.
func (h BillingHistory) Append(entry BillingEntry) BillingHistory {
	out := make(BillingHistory, 0, len(h)+1)
	out = append(out, h...)
	return append(out, entry)
}
