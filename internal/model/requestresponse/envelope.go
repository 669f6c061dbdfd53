package requestresponse

// SuccessResponse : общий конверт успешного ответа
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty" example:"ok"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse : общий конверт ошибки.
// Errors содержит ошибки по полям, все сразу.
type ErrorResponse struct {
	Success bool                `json:"success" example:"false"`
	Message string              `json:"message" example:"ошибка валидации"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
