package notify

import "errors"

var (
	// ErrMissingRecipient is returned when a message has no To address.
	ErrMissingRecipient = errors.New("notify: recipient is required")

	// ErrProviderNotConfigured is returned when EMAIL_PROVIDER names a
	// provider whose credentials are missing.
	ErrProviderNotConfigured = errors.New("notify: email provider not configured")

	// ErrNotDelivered is returned by the stub sender: the message was
	// accepted but no provider delivered it.
	ErrNotDelivered = errors.New("notify: email not delivered, no provider configured")

	// ErrUnknownProvider is returned for unrecognised provider names.
	ErrUnknownProvider = errors.New("notify: unknown email provider")
)
