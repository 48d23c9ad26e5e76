package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "00000000"},
		{"1:2:3", "0001:2:3"},
		{"9:05:00", "09:05:00"},
		{"12:30:45", "12:30:45"},
		{"12:30:45.123", "12:30:45.123"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeTime(tc.in), "NormalizeTime(%q)", tc.in)
	}
}

func TestNormalizeAllKeepsOrderAndInput(t *testing.T) {
	in := []Transaction{{Time: "1:00:00", Vendor: "a"}, {Time: "23:59:59", Vendor: "b"}}
	out := NormalizeAll(in)

	assert.Equal(t, "01:00:00", out[0].Time)
	assert.Equal(t, "a", out[0].Vendor)
	assert.Equal(t, "b", out[1].Vendor)
	assert.Equal(t, "1:00:00", in[0].Time, "input must not be mutated")
}

func TestTransactionClassification(t *testing.T) {
	assert.True(t, Transaction{Type: "credit"}.IsCredit())
	assert.False(t, Transaction{Type: "Credit"}.IsCredit())
	assert.False(t, Transaction{Type: ""}.IsCredit())

	assert.True(t, Transaction{Amount: 0.01}.IsDeposit())
	assert.True(t, Transaction{Amount: -0.01}.IsPayment())
	zero := Transaction{}
	assert.False(t, zero.IsDeposit())
	assert.False(t, zero.IsPayment())
}
