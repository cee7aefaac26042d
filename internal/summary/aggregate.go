package summary

// GroupKey identifies one aggregation group. It is a genuine composite key:
// grouping must never run through a concatenated string, since either name
// could contain the join delimiter.
type GroupKey struct {
	HospitalName string
	PatientName  string
}

// ConsolidatedGroup is one output summary row: all receipts sharing a
// normalized (hospital, patient) pair. Built in a single pass over the
// full item set, never updated incrementally.
type ConsolidatedGroup struct {
	HospitalName       string
	PatientName        string
	TotalAmount        int
	ReceiptCount       int
	ReceiptsWithAmount int
	Filenames          []string
}

// Aggregate groups items by (hospital, patient) and sums the valid amounts
// per group. TotalAmount counts only items whose amount parsed as a
// non-negative integer; ReceiptCount counts every item. Groups come back in
// first-seen order and filenames in encounter order, so the output is a
// deterministic function of the input order.
func Aggregate(items []ReceiptItem) []*ConsolidatedGroup {
	byKey := make(map[GroupKey]*ConsolidatedGroup)
	groups := make([]*ConsolidatedGroup, 0)

	for _, item := range items {
		key := GroupKey{HospitalName: item.HospitalName, PatientName: item.PatientName}
		group, ok := byKey[key]
		if !ok {
			group = &ConsolidatedGroup{
				HospitalName: item.HospitalName,
				PatientName:  item.PatientName,
			}
			byKey[key] = group
			groups = append(groups, group)
		}

		group.ReceiptCount++
		group.Filenames = append(group.Filenames, item.Filename)
		if item.AmountValid {
			group.TotalAmount += item.AmountValue
			group.ReceiptsWithAmount++
		}
	}

	return groups
}
