package models

// Game is an entry of the game registry.
type Game struct {
	Title    string   `json:"title" yaml:"title"`
	Slug     string   `json:"slug" yaml:"slug"`
	Aliases  []string `json:"aliases" yaml:"aliases"`
	Category string   `json:"category" yaml:"category"`
}
