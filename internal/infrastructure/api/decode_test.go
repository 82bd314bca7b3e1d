package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-console/internal/domain"
)

func TestDecodeCollection_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantIDs   []int64
		wantTotal int
		paged     bool
	}{
		{name: "envelope", body: `{"success":true,"data":[{"id":1},{"id":2}]}`, wantIDs: []int64{1, 2}},
		{name: "bare array", body: `[{"id":3}]`, wantIDs: []int64{3}},
		{name: "empty body", body: ``, wantIDs: []int64{}},
		{name: "null data", body: `{"success":true,"data":null}`, wantIDs: []int64{}},
		{
			name:      "paginated",
			body:      `{"data":[{"id":4}],"current_page":1,"last_page":1,"per_page":15,"total":1,"from":1,"to":1}`,
			wantIDs:   []int64{4},
			wantTotal: 1,
			paged:     true,
		},
		{
			name:      "paginated inside envelope",
			body:      `{"success":true,"data":{"data":[{"id":5},{"id":6}],"current_page":2,"last_page":2,"total":17}}`,
			wantIDs:   []int64{5, 6},
			wantTotal: 17,
			paged:     true,
		},
		{
			name:      "links as array",
			body:      `{"data":[{"id":7}],"current_page":1,"last_page":1,"total":1,"links":[{"url":null,"label":"1","active":true}]}`,
			wantIDs:   []int64{7},
			wantTotal: 1,
			paged:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeCollection[domain.Brand]([]byte(tt.body))
			require.NoError(t, err)

			ids := make([]int64, 0, got.Len())
			for _, b := range got.Items {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			if !tt.paged {
				assert.Nil(t, got.Page)
				return
			}
			require.NotNil(t, got.Page)
			assert.Equal(t, tt.wantTotal, got.Page.Total)
		})
	}
}

func TestDecodeCollection_RejectsGarbage(t *testing.T) {
	_, err := decodeCollection[domain.Brand]([]byte(`<html>`))
	assert.Error(t, err)
}

func TestDecodeEntity_EnvelopedAndBare(t *testing.T) {
	wrapped, err := decodeEntity[domain.User]([]byte(`{"success":true,"data":{"id":1,"name":"Awa"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Awa", wrapped.Name)

	bare, err := decodeEntity[domain.User]([]byte(`{"id":2,"name":"Jean","permissions":[{"id":9,"name":"view users"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"view users"}, bare.PermissionNames())
}
