package layout

import (
	"fmt"

	"qslgen/internal/contact"
)

// Batch is the ordered set of contacts destined for one card.
type Batch struct {
	Contacts []contact.Contact
	// Callsign is set when the batch was grouped by callsign, or when
	// every contact in an ungrouped chunk happens to share one call.
	Callsign string
	// Index/Total number the cards produced for one callsign group
	// (or, ungrouped, the chunks of the whole run).
	Index int
	Total int
	// GroupTotal is the callsign's full contact count across all its
	// cards; the confirmation text reports this, not the per-card count.
	GroupTotal int
}

// Plan partitions contacts into per-card batches. Without grouping the
// input is sliced in order into chunks of at most maxPerCard. With
// grouping, contacts are bucketed by callsign in first-appearance order
// (input order preserved within a group) and each group is chunked.
// The result is fully determined by the input order and flags.
func Plan(contacts []contact.Contact, groupByCall bool, maxPerCard int) ([]Batch, error) {
	if maxPerCard < 1 {
		return nil, fmt.Errorf("max contacts per card must be >= 1, got %d", maxPerCard)
	}
	if len(contacts) == 0 {
		return nil, nil
	}

	if !groupByCall {
		chunks := chunk(contacts, maxPerCard)
		batches := make([]Batch, 0, len(chunks))
		for i, ch := range chunks {
			batches = append(batches, Batch{
				Contacts:   ch,
				Callsign:   commonCall(ch),
				Index:      i + 1,
				Total:      len(chunks),
				GroupTotal: len(ch),
			})
		}
		return batches, nil
	}

	// First-appearance order, never map iteration order.
	var order []string
	groups := make(map[string][]contact.Contact)
	for _, c := range contacts {
		if _, seen := groups[c.Call]; !seen {
			order = append(order, c.Call)
		}
		groups[c.Call] = append(groups[c.Call], c)
	}

	var batches []Batch
	for _, call := range order {
		group := groups[call]
		chunks := chunk(group, maxPerCard)
		for i, ch := range chunks {
			batches = append(batches, Batch{
				Contacts:   ch,
				Callsign:   call,
				Index:      i + 1,
				Total:      len(chunks),
				GroupTotal: len(group),
			})
		}
	}
	return batches, nil
}

func chunk(contacts []contact.Contact, size int) [][]contact.Contact {
	var out [][]contact.Contact
	for start := 0; start < len(contacts); start += size {
		end := start + size
		if end > len(contacts) {
			end = len(contacts)
		}
		out = append(out, contacts[start:end])
	}
	return out
}

func commonCall(contacts []contact.Contact) string {
	call := contacts[0].Call
	for _, c := range contacts[1:] {
		if c.Call != call {
			return ""
		}
	}
	return call
}
