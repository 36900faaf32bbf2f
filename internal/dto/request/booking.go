package request

type ReserveRequest struct {
	ClientName  string `json:"client_name" validate:"required,min=2,max=120"`
	ClientEmail string `json:"client_email" validate:"required,email"`
	ClientPhone string `json:"client_phone" validate:"required,e164"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Modality    string `json:"modality" validate:"required,oneof=remote in_person"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type RescheduleRequest struct {
	NewDate string `json:"new_date" validate:"required,datetime=2006-01-02"`
	NewTime string `json:"new_time" validate:"required,datetime=15:04"`
	// Status optionally re-confirms (or otherwise transitions) the booking
	// in the same statement as the move.
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed"`
	Notify bool   `json:"notify"`
}
