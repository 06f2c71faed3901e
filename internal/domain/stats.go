package domain

// OrderStats summarizes a client's orders for the profile page.
type OrderStats struct {
	Total      int
	Processing int
	InTransit  int
	Delivered  int
}

// ClientStats counts the orders owned by userID.
func ClientStats(orders []Order, userID int64) OrderStats {
	var s OrderStats
	for _, o := range orders {
		if o.UserID != userID {
			continue
		}
		s.Total++
		switch o.Status {
		case StatusNew:
			s.Processing++
		case StatusInTransit:
			s.InTransit++
		case StatusDelivered:
			s.Delivered++
		}
	}
	return s
}

// Earnings returns the driver's share of delivered orders assigned to them.
func Earnings(orders []Order, driverUserID int64) float64 {
	var sum float64
	for _, o := range orders {
		if o.Status == StatusDelivered && o.AssignedTo(driverUserID) {
			sum += o.PriceValue() * DriverShare
		}
	}
	return sum
}

// ActiveOrders returns the orders a driver still has to finish.
func ActiveOrders(orders []Order, driverUserID int64) []Order {
	var out []Order
	for _, o := range orders {
		if o.Active() && o.AssignedTo(driverUserID) {
			out = append(out, o)
		}
	}
	return out
}

// AssignableDrivers filters drivers that may receive new orders.
func AssignableDrivers(drivers []Driver) []Driver {
	out := make([]Driver, 0, len(drivers))
	for _, d := range drivers {
		if d.Assignable() {
			out = append(out, d)
		}
	}
	return out
}
