package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangePathEncodesComponents(t *testing.T) {
	assert.Equal(t,
		"/api/transactions/range?start=2024-01-01&end=2024-02-01",
		RangePath("2024-01-01", "2024-02-01"))
	assert.Equal(t,
		"/api/transactions/range?start=a%20b&end=x%26y%3Dz",
		RangePath("a b", "x&y=z"))
}

func TestUserLookupPath(t *testing.T) {
	assert.Equal(t, "/api/transactions/user/42", UserLookupPath(UserPath, "42"))
	assert.Equal(t, "/api/transactions/user/42", UserLookupPath(UserPath+"/", "42"))
	assert.Equal(t, "/api/transactions/user/4%2F2", UserLookupPath(UserPath, "4/2"))
}
