package domain

// AdminStatus is the lifecycle value seen and set by administrators and drivers.
type AdminStatus string

// ClientStatus is the lifecycle value displayed to the ordering customer.
type ClientStatus string

const (
	StatusNew               AdminStatus = "new"
	StatusConfirmed         AdminStatus = "confirmed"
	StatusInTransit         AdminStatus = "in_transit"
	StatusDelivered         AdminStatus = "delivered"
	StatusRejected          AdminStatus = "rejected"
	StatusCancelledByClient AdminStatus = "cancelled_by_client"
)

const (
	ClientProcessing ClientStatus = "processing"
	ClientConfirmed  ClientStatus = "confirmed"
	ClientInTransit  ClientStatus = "in_transit"
	ClientDelivered  ClientStatus = "delivered"
	ClientRejected   ClientStatus = "rejected"
	ClientCancelled  ClientStatus = "cancelled"
)

// AdminStatuses lists the admin vocabulary in lifecycle order.
var AdminStatuses = []AdminStatus{
	StatusNew,
	StatusConfirmed,
	StatusInTransit,
	StatusDelivered,
	StatusRejected,
	StatusCancelledByClient,
}

// ClientStatuses lists the client vocabulary in lifecycle order.
var ClientStatuses = []ClientStatus{
	ClientProcessing,
	ClientConfirmed,
	ClientInTransit,
	ClientDelivered,
	ClientRejected,
	ClientCancelled,
}

// ToClientStatus maps an admin status onto the client vocabulary.
// Unknown values pass through unchanged.
func ToClientStatus(s AdminStatus) ClientStatus {
	switch s {
	case StatusNew:
		return ClientProcessing
	case StatusCancelledByClient:
		return ClientCancelled
	default:
		return ClientStatus(s)
	}
}

// ToAdminStatus is the inverse of ToClientStatus.
func ToAdminStatus(s ClientStatus) AdminStatus {
	switch s {
	case ClientProcessing:
		return StatusNew
	case ClientCancelled:
		return StatusCancelledByClient
	default:
		return AdminStatus(s)
	}
}

// Valid reports whether s belongs to the admin vocabulary.
func (s AdminStatus) Valid() bool {
	for _, v := range AdminStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s AdminStatus) Terminal() bool {
	switch s {
	case StatusDelivered, StatusRejected, StatusCancelledByClient:
		return true
	}
	return false
}

func (s ClientStatus) Valid() bool {
	for _, v := range ClientStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether a client-facing status closes the order.
func (s ClientStatus) Terminal() bool {
	switch s {
	case ClientDelivered, ClientRejected, ClientCancelled:
		return true
	}
	return false
}

var adminStatusText = map[string]string{
	string(StatusNew):               "Новый",
	string(StatusConfirmed):         "Подтвержден",
	string(StatusInTransit):         "В пути",
	string(StatusDelivered):         "Завершен",
	string(StatusRejected):          "Отклонен",
	string(StatusCancelledByClient): "Отменен клиентом",
}

// Client labels accept both vocabularies: the client view is often fed
// raw admin values straight from the wire.
var clientStatusText = map[string]string{
	string(ClientProcessing):        "В обработке",
	string(StatusNew):               "В обработке",
	string(ClientConfirmed):         "Подтвержден",
	string(ClientInTransit):         "В пути",
	string(ClientDelivered):         "Завершен",
	string(ClientRejected):          "Отклонен",
	string(ClientCancelled):         "Отменен",
	string(StatusCancelledByClient): "Отменен",
}

// StatusText returns the localized label for status. Unknown statuses are
// returned verbatim.
func StatusText(status string, isAdmin bool) string {
	table := clientStatusText
	if isAdmin {
		table = adminStatusText
	}
	if text, ok := table[status]; ok {
		return text
	}
	return status
}

// StatusClass returns a presentation-neutral category tag for status.
func StatusClass(status string) string {
	switch status {
	case string(StatusNew), string(ClientProcessing):
		return "processing"
	case string(StatusConfirmed):
		return "confirmed"
	case string(StatusInTransit):
		return "in-transit"
	case string(StatusDelivered):
		return "delivered"
	case string(StatusRejected):
		return "rejected"
	case string(StatusCancelledByClient), string(ClientCancelled):
		return "cancelled"
	default:
		return "new"
	}
}
