package pharmacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pharmacyIDs(ps []Pharmacy) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"no filters", Query{}, []string{"p001", "p002", "p003", "p004"}},
		{"by name", Query{Search: "healthfirst"}, []string{"p001"}},
		{"by address", Query{Search: "MAIN ST"}, []string{"p001"}},
		{"shared town", Query{Search: "anytown"}, []string{"p001", "p002", "p003", "p004"}},
		{"open now", Query{OpenNow: true}, []string{"p001", "p003", "p004"}},
		{"delivery", Query{Delivery: true}, []string{"p001", "p002", "p004"}},
		{"open with delivery", Query{OpenNow: true, Delivery: true}, []string{"p001", "p004"}},
		{"search and filter", Query{Search: "rx", Delivery: true}, []string{}},
		{"no match", Query{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pharmacyIDs(Filter(Seed(), tt.query)))
		})
	}
}

func TestPharmacy_DistanceLabel(t *testing.T) {
	ps := Seed()
	assert.Equal(t, "0.5 miles", ps[0].DistanceLabel())
	assert.Equal(t, "2.0 miles", ps[2].DistanceLabel())
}
