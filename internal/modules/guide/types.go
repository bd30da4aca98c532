package guide

// generateGuideDTO is the request body for study-guide generation.
type generateGuideDTO struct {
	InputType  string `json:"input_type"  binding:"required"`
	InputValue string `json:"input_value" binding:"required"`
	Language   string `json:"language"`
}

type setSavedDTO struct {
	IsSaved *bool `json:"is_saved" binding:"required"`
}
