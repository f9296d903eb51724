package service

import "time"

// SameDayCutoffHour: same-day delivery (and same-day cancellation) close
// at 10:00 AM local time.
const SameDayCutoffHour = 10

// DateFormat is the wire format for delivery dates.
const DateFormat = "2006-01-02"

// DateOption is one selectable delivery date.
type DateOption struct {
	Value   string `json:"value"`
	Display string `json:"display"`
	IsToday bool   `json:"is_today"`
}

// TimeSlots are the fixed lunch delivery windows.
func TimeSlots() []string {
	return []string{
		"12:00 PM - 12:30 PM",
		"12:30 PM - 1:00 PM",
		"1:00 PM - 1:30 PM",
		"1:30 PM - 2:00 PM",
	}
}

// IsTodayAvailable reports whether same-day delivery is still open.
func IsTodayAvailable(now time.Time) bool {
	return now.Hour() < SameDayCutoffHour
}

// DateOptions builds the selectable delivery dates: today while before
// the cutoff, then tomorrow plus the following three days.
func DateOptions(now time.Time) []DateOption {
	var options []DateOption
	if IsTodayAvailable(now) {
		options = append(options, DateOption{
			Value:   now.Format(DateFormat),
			Display: "Today (" + now.Format("Mon, Jan 2") + ")",
			IsToday: true,
		})
	}
	tomorrow := now.AddDate(0, 0, 1)
	options = append(options, DateOption{
		Value:   tomorrow.Format(DateFormat),
		Display: "Tomorrow (" + tomorrow.Format("Mon, Jan 2") + ")",
	})
	for i := 2; i <= 4; i++ {
		d := now.AddDate(0, 0, i)
		options = append(options, DateOption{
			Value:   d.Format(DateFormat),
			Display: d.Format("Monday, Jan 2"),
		})
	}
	return options
}

// IsValidDeliveryDate checks the chosen date against what DateOptions
// would have offered at the same moment.
func IsValidDeliveryDate(value string, now time.Time) bool {
	for _, opt := range DateOptions(now) {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// IsValidTimeSlot checks the chosen slot against the fixed windows.
func IsValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots() {
		if s == slot {
			return true
		}
	}
	return false
}

// CanCancel reports whether an order with the given delivery date may
// still be cancelled by the customer: any time before the delivery day,
// or on the day itself before the cutoff.
func CanCancel(deliveryDate time.Time, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(deliveryDate.Year(), deliveryDate.Month(), deliveryDate.Day(), 0, 0, 0, 0, now.Location())
	if day.After(today) {
		return true
	}
	if day.Equal(today) {
		return now.Hour() < SameDayCutoffHour
	}
	return false
}
