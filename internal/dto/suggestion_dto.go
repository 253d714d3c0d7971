package dto

// SuggestionRequest Request parameters for reference auto-completion
// SuggestionRequest 引用联想的请求参数
type SuggestionRequest struct {
	Query string `json:"query" form:"query"`
}

// SuggestionItem One auto-completion candidate
// SuggestionItem 一个联想候选
type SuggestionItem struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Type  string `json:"type,omitempty"`
	IsNew bool   `json:"isNew"`
}
