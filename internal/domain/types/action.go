package types

// Log action names, attached to the context via the logger wrapper.
const (
	ActionCreateRide    = "create_ride"
	ActionCreateBooking = "create_booking"
	ActionAcceptBooking = "accept_booking"
	ActionRejectBooking = "reject_booking"
	ActionUpdateBooking = "update_booking"
	ActionCancelBooking = "cancel_booking"

	ActionSweep       = "expiry_sweep"
	ActionManualSweep = "manual_cleanup"

	ActionEventPublish = "event_publish"
	ActionHTTPStart    = "http_server_start"
	ActionHTTPStop     = "http_server_stop"
)
