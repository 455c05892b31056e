package mail

// Payload is a rendered message ready for delivery.
type Payload struct {
	To      string
	Subject string
	HTML    string
}
