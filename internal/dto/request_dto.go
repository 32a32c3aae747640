package dto

type BeginSessionRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	Mode       string `json:"mode" binding:"required"` // diagnostic, drill or practice-N
	Section    string `json:"section" binding:"required"`
	Difficulty int    `json:"difficulty" binding:"min=0"`
}

type AnswerRequest struct {
	Option *int `json:"option" binding:"required,min=0"`
}

// TextAnswerRequest replaces the whole response; an empty text clears it.
type TextAnswerRequest struct {
	Text string `json:"text"`
}

type SeekRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

type SubmitRequest struct {
	Confirm bool `json:"confirm"`
}

type HostEventRequest struct {
	Event string `json:"event" binding:"required,oneof=unload hidden visible focus blur"`
}
