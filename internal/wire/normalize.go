// Package wire decodes the backend's JSON rows into domain values. The
// backend mixes snake_case columns with camelCase fields; both are accepted
// and snake_case wins when a row carries both.
package wire

import "freight-order-service/internal/domain"

func NormalizeOrder(m map[string]any) domain.Order {
	status := domain.AdminStatus(str(m, "status"))

	o := domain.Order{
		ID:       id(m, "id"),
		UserID:   id(m, "user_id", "userId"),
		DriverID: optID(m, "driver_id", "driverId"),

		SenderName:  str(m, "sender_name", "senderName"),
		SenderPhone: str(m, "sender_phone", "senderPhone"),
		SenderEmail: str(m, "sender_email", "senderEmail"),

		CargoDescription: str(m, "cargo_description", "cargoDescription"),
		ProductCategory:  str(m, "product_category", "productCategory"),
		CargoWeight:      float(m, "cargo_weight", "cargoWeight"),
		CargoVolume:      float(m, "cargo_volume", "cargoVolume"),
		CargoType:        domain.CargoType(str(m, "cargo_type", "cargoType")),

		ShippingDate:    str(m, "shipping_date", "shippingDate"),
		PickupAddress:   str(m, "pickup_address", "pickupAddress"),
		DeliveryAddress: str(m, "delivery_address", "deliveryAddress"),
		Distance:        float(m, "distance"),

		Price:           optFloat(m, "price"),
		Insurance:       boolean(m, "insurance"),
		Packaging:       boolean(m, "packaging"),
		CancellationFee: optFloat(m, "cancellation_fee", "cancellationFee"),
		RefundAmount:    optFloat(m, "refund_amount", "refundAmount"),

		Comments:           str(m, "comments"),
		AdminComment:       str(m, "admin_comment", "adminComment"),
		CancellationReason: str(m, "cancellation_reason", "cancellationReason"),

		Status: status,

		CreatedAt:   timeVal(m, "created_at", "createdAt"),
		ProcessedAt: optTime(m, "processed_at", "processedAt"),
		AssignedAt:  optTime(m, "assigned_at", "assignedAt"),
		AcceptedAt:  optTime(m, "accepted_at", "acceptedAt"),
		InTransitAt: optTime(m, "in_transit_at", "inTransitAt"),
		DeliveredAt: optTime(m, "delivered_at", "deliveredAt"),
		CancelledAt: optTime(m, "cancelled_at", "cancelledAt"),
	}

	o.ClientStatus = domain.ClientStatus(str(m, "client_status", "clientStatus"))
	if o.ClientStatus == "" {
		o.ClientStatus = domain.ToClientStatus(status)
	}
	return o
}

func NormalizeDriver(m map[string]any) domain.Driver {
	return domain.Driver{
		ID:                  id(m, "id"),
		UserID:              id(m, "user_id", "userId"),
		Vehicle:             vehicle(m),
		Contact:             contact(m),
		Status:              domain.DriverStatus(str(m, "status")),
		WorkStatus:          domain.WorkStatus(str(m, "work_status", "workStatus")),
		CompletedDeliveries: int(id(m, "completed_deliveries", "completedDeliveries")),
		HireDate:            str(m, "hire_date", "hireDate"),
		DismissalReason:     str(m, "dismissal_reason", "dismissalReason"),
	}
}

func NormalizeApplication(m map[string]any) domain.DriverApplication {
	return domain.DriverApplication{
		ID:          id(m, "id"),
		UserID:      id(m, "user_id", "userId"),
		Vehicle:     vehicle(m),
		Contact:     contact(m),
		Status:      domain.ApplicationStatus(str(m, "status")),
		AppliedAt:   optTime(m, "applied_at", "appliedAt"),
		ProcessedAt: optTime(m, "processed_at", "processedAt"),
		ProcessedBy: optID(m, "processed_by", "processedBy"),
	}
}

func NormalizeUser(m map[string]any) domain.User {
	return domain.User{
		ID:        id(m, "id"),
		Email:     str(m, "email"),
		Phone:     str(m, "phone"),
		FirstName: str(m, "first_name", "firstName"),
		LastName:  str(m, "last_name", "lastName"),
		Verified:  boolean(m, "verified"),
		IsAdmin:   boolean(m, "is_admin", "isAdmin"),
		IsDriver:  boolean(m, "is_driver", "isDriver"),
	}
}

func NormalizeNotification(m map[string]any) domain.Notification {
	return domain.Notification{
		ID:        id(m, "id"),
		UserID:    id(m, "user_id", "userId"),
		Title:     str(m, "title"),
		Message:   str(m, "message"),
		Type:      domain.NotificationType(str(m, "type")),
		Read:      boolean(m, "is_read", "isRead", "read"),
		CreatedAt: timeVal(m, "created_at", "createdAt"),
	}
}

func vehicle(m map[string]any) domain.Vehicle {
	return domain.Vehicle{
		LicenseNumber: str(m, "license_number", "licenseNumber"),
		Experience:    int(id(m, "experience")),
		CarModel:      str(m, "car_model", "carModel"),
		CarNumber:     str(m, "car_number", "carNumber"),
		MaxWeight:     float(m, "max_weight", "maxWeight"),
		CarType:       str(m, "car_type", "carType"),
	}
}

func contact(m map[string]any) domain.Contact {
	return domain.Contact{
		FirstName: str(m, "first_name", "firstName"),
		LastName:  str(m, "last_name", "lastName"),
		Phone:     str(m, "phone"),
		Email:     str(m, "email"),
	}
}
