package models

// Dataset is the final, deduplicated and shuffled collection of records.
type Dataset struct {
	Records []Record
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Singers returns the number of distinct singers.
func (d *Dataset) Singers() int {
	if d == nil {
		return 0
	}
	seen := make(map[string]struct{}, len(d.Records))
	for _, r := range d.Records {
		seen[r.Singer] = struct{}{}
	}
	return len(seen)
}

// DistinctTracks returns the number of distinct (singer, track) pairs.
func (d *Dataset) DistinctTracks() int {
	if d == nil {
		return 0
	}
	seen := make(map[Pair]struct{}, len(d.Records))
	for _, r := range d.Records {
		seen[r.Pair()] = struct{}{}
	}
	return len(seen)
}
