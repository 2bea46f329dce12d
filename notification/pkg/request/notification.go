package request

type Contact struct {
	Name    string `json:"name"    validate:"required"`
	Email   string `json:"email"   validate:"required,email"`
	Type    string `json:"type"    validate:"required,oneof=booking press general"`
	Message string `json:"message" validate:"required"`
}

type Newsletter struct {
	Email     string `json:"email"     validate:"required,email"`
	FirstName string `json:"firstName"`
}
