package dto

import "reviewhub/internal/api/models"

// CreateCategoryDTO for POST /api/v1/categories
type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"required,max=50"`
}

func (in CreateCategoryDTO) ToModel() models.Category {
	return models.Category{Name: in.Name, Slug: in.Slug}
}

// CategoryResponse deliberately hides the internal numeric id; the slug
// is the external identifier.
type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func CategoryFromModel(c models.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}
