package entity

// Button is one inline keyboard button attached to a notification.
// Exactly one of CallbackData or URL should be set.
type Button struct {
	Text         string
	CallbackData string
	URL          string
}
