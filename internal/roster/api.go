package roster

import "crew-booking-backend/internal/store"

// RosterResponse models the top-level structure of the upstream directory's response.
type RosterResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int                 `json:"page"`
		PageSize int                 `json:"pageSize"`
		Total    int                 `json:"total"`
		Items    []store.RosterEntry `json:"items"`
	} `json:"data"`
}
