package notify

// Kinds name both the notifier HTTP endpoint (/email/<kind>) and the NATS
// subject suffix (notifications.<kind>).
const (
	KindBookingConfirmation = "booking-confirmation"
	KindContactForm         = "contact-form"
	KindServiceRequest      = "service-request"
	KindSessionReceipt      = "session-receipt"
	KindStaffInvitation     = "staff-invitation"
	KindPasswordReset       = "password-reset"
)

// Kinds lists every notification kind the notifier accepts.
var Kinds = []string{
	KindBookingConfirmation,
	KindContactForm,
	KindServiceRequest,
	KindSessionReceipt,
	KindStaffInvitation,
	KindPasswordReset,
}

type BookingConfirmation struct {
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ConsoleType   string `json:"console_type"`
	SessionType   string `json:"session_type"`
	PreferredDate string `json:"preferred_date,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
}

type ContactForm struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

type ServiceRequest struct {
	ClientName       string `json:"client_name"`
	ClientPhone      string `json:"client_phone"`
	DeviceType       string `json:"device_type"`
	DeviceBrand      string `json:"device_brand"`
	IssueDescription string `json:"issue_description"`
	RequestID        string `json:"request_id"`
	Status           string `json:"status"`
}

type SessionReceipt struct {
	ClientName   string  `json:"client_name"`
	ClientEmail  string  `json:"client_email"`
	ConsoleType  string  `json:"console_type"`
	Duration     string  `json:"duration"`
	TotalAmount  float64 `json:"total_amount"`
	PointsEarned int     `json:"points_earned"`
	Date         string  `json:"date"`
}

type StaffInvitation struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// PasswordReset carries the opaque reset token; the notifier turns it into a link.
type PasswordReset struct {
	Email string `json:"email"`
	Lang  string `json:"lang"`
	Token string `json:"token"`
}

// Reply is the notifier's answer on every endpoint.
type Reply struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
