package domain

import (
	"fmt"
	"time"
)

// MillisPerHour converts cached millisecond durations to hours.
const MillisPerHour = 3_600_000

// ElapsedMs returns the elapsed milliseconds of an interval. A closed
// interval yields end-start exactly; an open one (end == nil) is measured
// against now and never goes below zero.
func ElapsedMs(start time.Time, end *time.Time, now time.Time) int64 {
	if end != nil {
		return end.Sub(start).Milliseconds()
	}
	elapsed := now.Sub(start).Milliseconds()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// FormatDuration renders milliseconds as H:MM:SS with unpadded hours.
// Sub-second remainders are dropped and negative values render as zero.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// MsToHours converts milliseconds to fractional hours without rounding.
func MsToHours(ms int64) float64 {
	return float64(ms) / MillisPerHour
}

// FormatHours renders milliseconds as hours with two decimals.
func FormatHours(ms int64) string {
	return fmt.Sprintf("%.2f", MsToHours(ms))
}

// Billing multiplies hours worked by an hourly rate. The result is not rounded.
func Billing(ms int64, hourlyRate float64) float64 {
	return float64(ms) * hourlyRate / MillisPerHour
}

// FormatMoney renders an amount with two decimals followed by a currency label.
func FormatMoney(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}
