package dto

type DashboardResponse struct {
	Doctors            *int64                `json:"doctors,omitempty"`
	Appointments       int                   `json:"appointments"`
	Patients           int                   `json:"patients"`
	Earnings           string                `json:"earnings"`
	LatestAppointments []AppointmentResponse `json:"latest_appointments"`
}
