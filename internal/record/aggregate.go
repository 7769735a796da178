package record

// SumCount returns the total usage count of the given records.
func SumCount(records []Record) int64 {
	var sum int64
	for _, r := range records {
		sum += r.UsageCount
	}
	return sum
}

// WithText returns the records whose text equals text exactly.
func WithText(records []Record, text string) []Record {
	var out []Record
	for _, r := range records {
		if r.Text == text {
			out = append(out, r)
		}
	}
	return out
}

// GroupAndSum collapses records sharing the same text into one record whose
// usage count is the sum of the group. The first record seen for a text
// supplies the id, and groups keep the order of their first appearance.
func GroupAndSum(records []Record) []Record {
	index := make(map[string]int, len(records))
	var out []Record
	for _, r := range records {
		if i, ok := index[r.Text]; ok {
			out[i].UsageCount += r.UsageCount
			continue
		}
		index[r.Text] = len(out)
		out = append(out, r)
	}
	return out
}
