package pharmacy

import (
	"context"
	"testing"

	"github.com/emedico/backend/internal/domain/pharmacy"
	"github.com/stretchr/testify/assert"
)

func TestService_List(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		query pharmacy.Query
		want  []string
	}{
		{"all", pharmacy.Query{}, []string{"p001", "p002", "p003", "p004"}},
		{"open now", pharmacy.Query{OpenNow: true}, []string{"p001", "p003", "p004"}},
		{"delivery", pharmacy.Query{Delivery: true}, []string{"p001", "p002", "p004"}},
		{"open with delivery", pharmacy.Query{OpenNow: true, Delivery: true}, []string{"p001", "p004"}},
		{"search by address", pharmacy.Query{Search: "elm st"}, []string{"p004"}},
		{"search by name", pharmacy.Query{Search: "WELL"}, []string{"p002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.List(ctx, tt.query)
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
