package catalog

// builtins is the fixed default catalog. IDs 1..n are reserved for it.
var builtins = []Product{
	{
		ID:    1,
		Name:  "New Mutants Combate el Futuro 3 de 3",
		Price: 5990,
		Image: "/static/covers/new-mutants-combate-el-futuro-3.jpg",
	},
	{
		ID:    2,
		Name:  "Patrulla X Especie en Peligro 13",
		Price: 8990,
		Image: "/static/covers/patrulla-x-especie-en-peligro-13.jpg",
	},
	{
		ID:    3,
		Name:  "Superior Ironman",
		Price: 15990,
		Image: "/static/covers/superior-ironman.jpg",
	},
}

// Builtins returns a fresh copy of the built-in product set.
func Builtins() []Product {
	out := make([]Product, len(builtins))
	copy(out, builtins)
	return out
}
