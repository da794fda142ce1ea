package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderHistorySort_Column(t *testing.T) {
	inputs := []string{
		"",
		"TOTAL",
		"session_id",
		"password_hash",
		"total; DROP TABLE carts",
		"id' OR '1'='1",
		"id UNION SELECT * FROM users",
		"(SELECT email FROM users)",
		"total\n; DELETE FROM orders",
	}
	for _, in := range inputs {
		assert.Equal(t, "placed_at", orderHistorySort.column(in), "input %q", in)
	}
	assert.Equal(t, "total", orderHistorySort.column("total"))
	assert.Equal(t, "order_number", orderHistorySort.column("  order_number "))
}

func TestOrderHistorySort_Direction(t *testing.T) {
	tests := []struct {
		dir      string
		wantDesc bool
	}{
		{"", true},
		{"asc", false},
		{" ASC ", false},
		{"desc", true},
		{"ASC; DROP TABLE orders;--", true},
		{"sideways", true},
	}
	for _, tt := range tests {
		ob := orderHistorySort.orderBy("total", tt.dir)
		assert.Equal(t, "total", ob.Column.Name)
		assert.Equal(t, tt.wantDesc, ob.Desc, "dir %q", tt.dir)
	}
}

func TestNewSortColumns_FallbackIsAllowed(t *testing.T) {
	s := newSortColumns("name", "price")
	assert.Equal(t, "name", s.column("name"))
	assert.Equal(t, "price", s.column("price"))
	assert.Equal(t, "name", s.column("stock"))
}
