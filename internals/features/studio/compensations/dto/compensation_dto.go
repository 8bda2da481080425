// file: internals/features/studio/compensations/dto/compensation_dto.go
package dto

type UpsertCompensationRequest struct {
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=factuur vrijwilligersvergoeding verloning"`
	HourlyRate    *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	TransportFee  *float64 `json:"transport_fee" validate:"omitempty,gte=0"`
	Active        *bool    `json:"active"`
}
