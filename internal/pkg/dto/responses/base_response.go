package responses

type ResponseDTO struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorDTO struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	DevMessage string      `json:"dev_message,omitempty"`
}
