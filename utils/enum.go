package utils

import "fmt"

type SubscriberStatus string

const (
	SubscriberStatusPending      SubscriberStatus = "pending"
	SubscriberStatusConfirmed    SubscriberStatus = "confirmed"
	SubscriberStatusUnsubscribed SubscriberStatus = "unsubscribed"
)

func ParseSubscriberStatus(s string) (SubscriberStatus, error) {
	switch SubscriberStatus(s) {
	case SubscriberStatusPending, SubscriberStatusConfirmed, SubscriberStatusUnsubscribed:
		return SubscriberStatus(s), nil
	default:
		return "", fmt.Errorf("invalid subscriber status: %s", s)
	}
}

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled:
		return AppointmentStatus(s), nil
	default:
		return "", fmt.Errorf("invalid appointment status: %s", s)
	}
}

type ContentDriver string

const (
	ContentDriverPostgres ContentDriver = "postgres"
	ContentDriverMongo    ContentDriver = "mongo"
	ContentDriverMemory   ContentDriver = "memory"
)

func ParseContentDriver(s string) (ContentDriver, error) {
	switch ContentDriver(s) {
	case ContentDriverPostgres, ContentDriverMongo, ContentDriverMemory:
		return ContentDriver(s), nil
	default:
		return "", fmt.Errorf("invalid content driver: %s", s)
	}
}
