package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qslgen/internal/contact"
)

func makeContact(call string) contact.Contact {
	return contact.Contact{
		Call:    call,
		When:    time.Date(2024, 6, 1, 18, 45, 0, 0, time.UTC),
		FreqMHz: 14.074,
		Mode:    "FT8",
	}
}

func makeContacts(calls ...string) []contact.Contact {
	out := make([]contact.Contact, len(calls))
	for i, c := range calls {
		out[i] = makeContact(c)
	}
	return out
}

func TestPlanUngroupedChunks(t *testing.T) {
	contacts := makeContacts("A", "B", "C", "D", "E", "F", "G")

	batches, err := Plan(contacts, false, 5)
	require.NoError(t, err)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Contacts, 5)
	assert.Len(t, batches[1].Contacts, 2)

	// Input order preserved across the chunk boundary.
	assert.Equal(t, "A", batches[0].Contacts[0].Call)
	assert.Equal(t, "E", batches[0].Contacts[4].Call)
	assert.Equal(t, "F", batches[1].Contacts[0].Call)
}

func TestPlanGroupedFirstAppearanceOrder(t *testing.T) {
	contacts := makeContacts("A", "A", "B", "A")

	batches, err := Plan(contacts, true, 2)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	// A appears first, so A's cards precede B's.
	assert.Equal(t, "A", batches[0].Callsign)
	assert.Len(t, batches[0].Contacts, 2)
	assert.Equal(t, 1, batches[0].Index)
	assert.Equal(t, 2, batches[0].Total)
	assert.Equal(t, 3, batches[0].GroupTotal)

	assert.Equal(t, "A", batches[1].Callsign)
	assert.Len(t, batches[1].Contacts, 1)
	assert.Equal(t, 2, batches[1].Index)
	assert.Equal(t, 2, batches[1].Total)

	assert.Equal(t, "B", batches[2].Callsign)
	assert.Len(t, batches[2].Contacts, 1)
	assert.Equal(t, 1, batches[2].Index)
	assert.Equal(t, 1, batches[2].Total)
	assert.Equal(t, 1, batches[2].GroupTotal)
}

func TestPlanDeterministic(t *testing.T) {
	contacts := makeContacts("K1A", "W2B", "K1A", "N3C", "W2B", "K1A")

	first, err := Plan(contacts, true, 2)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Plan(contacts, true, 2)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPlanEmptyInput(t *testing.T) {
	batches, err := Plan(nil, true, 5)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestPlanRejectsBadLimit(t *testing.T) {
	_, err := Plan(makeContacts("A"), false, 0)
	assert.Error(t, err)
}

func TestPlanUngroupedSharedCallsign(t *testing.T) {
	batches, err := Plan(makeContacts("A", "A"), false, 5)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "A", batches[0].Callsign)

	mixed, err := Plan(makeContacts("A", "B"), false, 5)
	require.NoError(t, err)
	require.Len(t, mixed, 1)
	assert.Empty(t, mixed[0].Callsign)
}
