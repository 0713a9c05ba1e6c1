package domain

import "time"

const (
	MinRadiusMeters = 10
	MaxRadiusMeters = 5000
)

type Category string

const (
	CategoryDelivery   Category = "delivery"
	CategoryPickup     Category = "pickup"
	CategoryDepot      Category = "depot"
	CategoryCustomer   Category = "customer"
	CategoryRestArea   Category = "rest_area"
	CategoryRestricted Category = "restricted"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDelivery, CategoryPickup, CategoryDepot, CategoryCustomer,
		CategoryRestArea, CategoryRestricted, CategoryOther:
		return true
	}
	return false
}

type NotificationMethod string

const (
	MethodAlert NotificationMethod = "alert"
	MethodSound NotificationMethod = "sound"
	MethodBoth  NotificationMethod = "both"
	// MethodSMS and MethodEmail are manual: the engine renders dispatch
	// instructions with the stored contact, it never sends anything itself.
	MethodSMS   NotificationMethod = "sms"
	MethodEmail NotificationMethod = "email"
)

func (m NotificationMethod) Valid() bool {
	switch m {
	case MethodAlert, MethodSound, MethodBoth, MethodSMS, MethodEmail:
		return true
	}
	return false
}

type ZoneStatus string

const (
	StatusUnknown ZoneStatus = "unknown"
	StatusInside  ZoneStatus = "inside"
	StatusOutside ZoneStatus = "outside"
)

type NotifyParty struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Details string `json:"details"`
}

// Zone is a named circular geofence. Center, ID and CreatedAt are fixed at
// creation; edits never relocate a zone. LastStatus is transient monitoring
// state and is not persisted; it always starts as StatusUnknown after a
// restart.
type Zone struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Category            Category           `json:"category"`
	Center              Coordinate         `json:"center"`
	RadiusMeters        int                `json:"radius_meters"`
	Enabled             bool               `json:"enabled"`
	CreatedAt           time.Time          `json:"created_at"`
	AutoNotify          bool               `json:"auto_notify"`
	NotifyMinutesBefore int                `json:"notify_minutes_before"`
	NotificationMethod  NotificationMethod `json:"notification_method"`
	NotifyParty         NotifyParty        `json:"notify_party"`
	LastStatus          ZoneStatus         `json:"-"`
}
