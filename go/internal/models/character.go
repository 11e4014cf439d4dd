package models

// Character is a catalog entry. Identity is ID, assigned by the catalog service.
type Character struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}
