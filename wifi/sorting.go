package wifi

import "sort"

// SortNetworks sorts networks in place.
// The sorting order is:
// 1. Current connection first.
// 2. Networks with a known signal, strongest first.
// 3. Most recently used first.
// 4. Fallback to SSID alphabetically.
func SortNetworks(networks []Network) {
	sort.SliceStable(networks, func(i, j int) bool {
		a := networks[i]
		b := networks[j]

		if a.IsCurrent != b.IsCurrent {
			return a.IsCurrent
		}

		if a.Signal != b.Signal {
			return a.Signal > b.Signal
		}

		// A non-nil time is considered more recent than a nil time.
		if a.LastUsed != nil && b.LastUsed == nil {
			return true
		}
		if a.LastUsed == nil && b.LastUsed != nil {
			return false
		}
		if a.LastUsed != nil && b.LastUsed != nil && !a.LastUsed.Equal(*b.LastUsed) {
			return a.LastUsed.After(*b.LastUsed)
		}

		return a.SSID < b.SSID
	})
}
