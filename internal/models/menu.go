package models

// MenuItem represents a drink or pastry the shop sells
type MenuItem struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}
