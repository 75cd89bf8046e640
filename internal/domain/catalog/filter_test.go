package catalog

import "testing"

func TestFilter(t *testing.T) {
	products := []Product{
		{ID: 1, Name: "Patrulla X Especie en Peligro"},
		{ID: 2, Name: "Superior Ironman"},
		{ID: 3, Name: "Película del Ratón"},
	}

	tests := []struct {
		name string
		term string
		want []int
	}{
		{name: "empty term returns everything", term: "", want: []int{1, 2, 3}},
		{name: "case insensitive", term: "IRONMAN", want: []int{2}},
		{name: "diacritics in catalog ignored", term: "pelicula", want: []int{3}},
		{name: "diacritics in term ignored", term: "PELÍCULA", want: []int{3}},
		{name: "substring match", term: "especie", want: []int{1}},
		{name: "no match", term: "batman", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(products, tt.term)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d products, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("result %d has id %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}
