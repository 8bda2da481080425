// file: internals/features/studio/payrolls/dto/payroll_dto.go
package dto

type CreatePayrollRequest struct {
	TimesheetID string `json:"timesheet_id"`
}

type UpdatePayrollRequest struct {
	Status string `json:"status"`
}
