package revenue

import (
	"fmt"
	"time"

	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// Reference types used on ledger transactions, one per revenue source
const (
	ReferenceTypeAppointment        = "appointment"
	ReferenceTypeAppointmentService = "appointment_service"
	ReferenceTypeLabTestRequest     = "lab_test_request"
	ReferenceTypePayment            = "payment"
	ReferenceTypeSale               = "sale"
)

// Source is anything that can be pointed at by a ledger transaction
type Source interface {
	Reference() ledger.Reference
}

// Recognition is the amount a source contributes to the ledger at a
// point in time. A nil Recognition from a Recognizer means the source
// contributes nothing in its current state.
type Recognition struct {
	Amount      valueobject.Money
	Description string
	OccurredAt  time.Time
}

// Recognizer evaluates one kind of source against its recognition rule.
// Recognize returns nil when the source should carry no credit.
type Recognizer interface {
	ReferenceType() string
	Recognize(source Source) (*Recognition, error)
}

// AppointmentRecognizer credits consultation fees. Appointments with
// attached services are skipped because their services carry the
// revenue, and Laboratory appointments are skipped because the lab
// aggregate accounts for them.
type AppointmentRecognizer struct{}

func (AppointmentRecognizer) ReferenceType() string { return ReferenceTypeAppointment }

func (AppointmentRecognizer) Recognize(source Source) (*Recognition, error) {
	appt, ok := source.(*Appointment)
	if !ok {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Expected an appointment")
	}
	if !appt.IsRecognizable() || appt.HasServices() || appt.IsLaboratory() {
		return nil, nil
	}
	net := appt.NetFee()
	if !net.IsPositive() {
		return nil, nil
	}
	return &Recognition{
		Amount:      net,
		Description: fmt.Sprintf("Consultation fee for %s", appt.PatientName),
		OccurredAt:  appt.ScheduledAt,
	}, nil
}

// AppointmentServiceRecognizer credits individual services regardless
// of department, provided the parent appointment is in a recognizable
// status
type AppointmentServiceRecognizer struct{}

func (AppointmentServiceRecognizer) ReferenceType() string { return ReferenceTypeAppointmentService }

func (AppointmentServiceRecognizer) Recognize(source Source) (*Recognition, error) {
	svc, ok := source.(*AppointmentService)
	if !ok {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Expected an appointment service")
	}
	if !svc.ParentRecognizable() {
		return nil, nil
	}
	cost := svc.Cost()
	if !cost.IsPositive() {
		return nil, nil
	}
	occurredAt := svc.CreatedAt
	if svc.Appointment != nil {
		occurredAt = svc.Appointment.ScheduledAt
	}
	return &Recognition{
		Amount:      cost,
		Description: fmt.Sprintf("Service: %s", svc.Name),
		OccurredAt:  occurredAt,
	}, nil
}

// LabTestRecognizer credits completed lab test requests at their cost
type LabTestRecognizer struct{}

func (LabTestRecognizer) ReferenceType() string { return ReferenceTypeLabTestRequest }

func (LabTestRecognizer) Recognize(source Source) (*Recognition, error) {
	test, ok := source.(*LabTestRequest)
	if !ok {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Expected a lab test request")
	}
	if !test.IsCompleted() {
		return nil, nil
	}
	cost := test.CostMoney()
	if !cost.IsPositive() {
		return nil, nil
	}
	return &Recognition{
		Amount:      cost,
		Description: fmt.Sprintf("Lab test: %s", test.TestName),
		OccurredAt:  test.RecognizedAt(),
	}, nil
}

// PaymentRecognizer credits recorded patient payments
type PaymentRecognizer struct{}

func (PaymentRecognizer) ReferenceType() string { return ReferenceTypePayment }

func (PaymentRecognizer) Recognize(source Source) (*Recognition, error) {
	payment, ok := source.(*Payment)
	if !ok {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Expected a payment")
	}
	if payment.IsVoided() {
		return nil, nil
	}
	amount := payment.AmountMoney()
	if !amount.IsPositive() {
		return nil, nil
	}
	return &Recognition{
		Amount:      amount,
		Description: fmt.Sprintf("Patient payment (%s)", payment.Method),
		OccurredAt:  payment.ReceivedAt,
	}, nil
}

// SaleRecognizer credits paid pharmacy sales at their grand total
type SaleRecognizer struct{}

func (SaleRecognizer) ReferenceType() string { return ReferenceTypeSale }

func (SaleRecognizer) Recognize(source Source) (*Recognition, error) {
	sale, ok := source.(*Sale)
	if !ok {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Expected a sale")
	}
	if !sale.IsRecognizable() {
		return nil, nil
	}
	total := sale.GrandTotalMoney()
	if !total.IsPositive() {
		return nil, nil
	}
	return &Recognition{
		Amount:      total,
		Description: fmt.Sprintf("Pharmacy sale %s", sale.InvoiceNumber),
		OccurredAt:  sale.SoldAt,
	}, nil
}

// RecognizerSet dispatches sources to the recognizer registered for
// their reference type
type RecognizerSet struct {
	recognizers map[string]Recognizer
}

// NewRecognizerSet builds a set covering all five revenue sources
func NewRecognizerSet() *RecognizerSet {
	set := &RecognizerSet{recognizers: make(map[string]Recognizer)}
	for _, r := range []Recognizer{
		AppointmentRecognizer{},
		AppointmentServiceRecognizer{},
		LabTestRecognizer{},
		PaymentRecognizer{},
		SaleRecognizer{},
	} {
		set.recognizers[r.ReferenceType()] = r
	}
	return set
}

// Recognize evaluates a source with the recognizer for its reference type
func (s *RecognizerSet) Recognize(source Source) (*Recognition, error) {
	if source == nil {
		return nil, nil
	}
	ref := source.Reference()
	recognizer, ok := s.recognizers[ref.Type]
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_SOURCE", fmt.Sprintf("No recognizer for reference type %s", ref.Type))
	}
	return recognizer.Recognize(source)
}
