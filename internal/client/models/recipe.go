package models

import "time"

type Recipe struct {
	ID              string    `json:"id"`
	CreatedDate     time.Time `json:"createdDate"`
	UpdatedDate     time.Time `json:"updatedDate"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Ingredients     string    `json:"ingredients"`
	Instructions    string    `json:"instructions"`
	PrepTimeMinutes int       `json:"prepTimeMinutes"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"imageUrl"`
}

// RecipeInput is the body of a create or update request.
type RecipeInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Ingredients     string `json:"ingredients"`
	Instructions    string `json:"instructions"`
	PrepTimeMinutes int    `json:"prepTimeMinutes"`
	Category        string `json:"category"`
	ImageURL        string `json:"imageUrl"`
}

// ImageUpload is a presigned slot for one recipe image.
type ImageUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}
