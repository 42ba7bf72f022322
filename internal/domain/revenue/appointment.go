package revenue

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AppointmentStatus is the lifecycle status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// IsRecognizable reports whether revenue is recognized at this status
func (s AppointmentStatus) IsRecognizable() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusConfirmed
}

// DepartmentLaboratory is the department whose appointment revenue is
// assembled through the laboratory bucket instead of the appointment bucket
const DepartmentLaboratory = "Laboratory"

// Appointment is the read model of a patient appointment as the revenue
// engine sees it. The owning CRUD layer persists it; the engine only reads
// its monetary fields and reacts to its lifecycle.
type Appointment struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key"`
	PatientID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	PatientName  string            `gorm:"type:varchar(200);not null"`
	Department   string            `gorm:"type:varchar(100);not null;index"`
	Status       AppointmentStatus `gorm:"type:varchar(20);not null;index"`
	Fee          decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Discount     decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ServiceCount int               `gorm:"not null;default:0"`
	ScheduledAt  time.Time         `gorm:"not null;index"`
	CreatedAt    time.Time         `gorm:"not null"`
	UpdatedAt    time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Appointment) TableName() string {
	return "appointments"
}

// Reference returns the ledger reference for this appointment
func (a *Appointment) Reference() ledger.Reference {
	return ledger.Reference{Type: ReferenceTypeAppointment, ID: a.ID}
}

// IsRecognizable reports whether the appointment's status recognizes
// revenue
func (a *Appointment) IsRecognizable() bool {
	return a.Status.IsRecognizable()
}

// HasServices reports whether department services are attached
func (a *Appointment) HasServices() bool {
	return a.ServiceCount > 0
}

// IsLaboratory reports whether the appointment belongs to the Laboratory
// department
func (a *Appointment) IsLaboratory() bool {
	return a.Department == DepartmentLaboratory
}

// NetFee returns max(0, fee - discount) as a total function over any
// fee/discount pair
func (a *Appointment) NetFee() valueobject.Money {
	fee := valueobject.NewMoneyUSD(a.Fee)
	discount := valueobject.NewMoneyUSD(a.Discount)
	return fee.MustSubtract(discount).NonNegative()
}

// AppointmentService is a department service attached to an appointment,
// e.g. an X-ray or a dressing performed during the visit
type AppointmentService struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	AppointmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(200);not null"`
	FinalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID;references:ID"`
}

// TableName returns the table name for GORM
func (AppointmentService) TableName() string {
	return "appointment_services"
}

// Reference returns the ledger reference for this service
func (s *AppointmentService) Reference() ledger.Reference {
	return ledger.Reference{Type: ReferenceTypeAppointmentService, ID: s.ID}
}

// ParentRecognizable reports whether the parent appointment's status
// qualifies the service for recognition
func (s *AppointmentService) ParentRecognizable() bool {
	return s.Appointment != nil && s.Appointment.Status.IsRecognizable()
}

// IsLaboratory reports whether the parent appointment belongs to the
// Laboratory department
func (s *AppointmentService) IsLaboratory() bool {
	return s.Appointment != nil && s.Appointment.IsLaboratory()
}

// Cost returns the service's final cost as Money
func (s *AppointmentService) Cost() valueobject.Money {
	return valueobject.NewMoneyUSD(s.FinalCost)
}
