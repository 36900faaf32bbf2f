package response

type SlotResponse struct {
	Time              string `json:"time"`
	Available         bool   `json:"available"`
	RemainingCapacity int    `json:"remaining_capacity"`
}

type AvailabilityResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}
