package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type HistoryRequest struct {
	Asset  string `query:"asset" json:"asset"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Offset int    `query:"offset" json:"offset" default:"0" validate:"gte=0"`
}
