// Package reconcile brings an order into a consistent state before it is saved.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/validation"
)

const DefaultCountry = "France"

var tolerance = decimal.NewFromFloat(0.01)

// Days added to the order date when no delivery date was given.
var deliveryLeadDays = map[models.DeliveryMethod]int{
	models.DeliveryExpress:  1,
	models.DeliveryStandard: 3,
}

// Options describes the persisted state the order is compared against.
type Options struct {
	Now   time.Time
	IsNew bool
	// PreviousStatus and PreviousEstimate are the values currently stored.
	PreviousStatus   models.OrderStatus
	PreviousEstimate *time.Time
	// StatusNote replaces the generic timeline note when the status changes.
	StatusNote string
	User       string
}

// toCents rounds half away from zero to cents.
func toCents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func drifts(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThan(tolerance)
}

// ApplyDefaults fills unset enums and tidies customer fields.
func ApplyDefaults(o *models.Order) {
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	if o.Payment.Status == "" {
		o.Payment.Status = models.PaymentPending
	}
	if o.Delivery.Method == "" {
		o.Delivery.Method = models.DeliveryStandard
	}

	c := &o.Customer
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address.Street = strings.TrimSpace(c.Address.Street)
	c.Address.City = strings.TrimSpace(c.Address.City)
	c.Address.PostalCode = strings.TrimSpace(c.Address.PostalCode)
	if strings.TrimSpace(c.Address.Country) == "" {
		c.Address.Country = DefaultCountry
	}

	o.OrderNumber = strings.ToUpper(strings.TrimSpace(o.OrderNumber))

	for i := range o.Items {
		o.Items[i].Name = strings.TrimSpace(o.Items[i].Name)
		o.Items[i].Position = i
	}
}

// DayBounds returns [start of day, start of next day) for now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// FormatOrderNumber renders PREFIX-YYMMDD-NNN.
func FormatOrderNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, day.Format("060102"), seq)
}

// AssignOrderNumber numbers the order as the (existingCountForDay+1)th order of
// now's day. An order that already has a number keeps it.
func AssignOrderNumber(o *models.Order, prefix string, existingCountForDay int64, now time.Time) bool {
	if o.OrderNumber != "" {
		return false
	}
	o.OrderNumber = FormatOrderNumber(prefix, now, existingCountForDay+1)
	return true
}

// NormalizeItemSubtotals forces subtotal = price * quantity on lines that drift by more than a cent.
func NormalizeItemSubtotals(items []models.OrderItem) {
	for i := range items {
		expected := decimal.NewFromFloat(items[i].Price).
			Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		if drifts(decimal.NewFromFloat(items[i].Subtotal), expected) {
			items[i].Subtotal = toCents(expected)
		}
	}
}

// ReconcileTotals recomputes the subtotal from the lines and the total from its parts.
func ReconcileTotals(o *models.Order) {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(decimal.NewFromFloat(item.Subtotal))
	}
	if drifts(decimal.NewFromFloat(o.Totals.Subtotal), sum) {
		o.Totals.Subtotal = toCents(sum)
	}

	total := decimal.NewFromFloat(o.Totals.Subtotal).
		Add(decimal.NewFromFloat(o.Totals.Shipping)).
		Add(decimal.NewFromFloat(o.Totals.Tax)).
		Sub(decimal.NewFromFloat(o.Totals.Discount))
	if drifts(decimal.NewFromFloat(o.Totals.Total), total) {
		o.Totals.Total = toCents(total)
	}
}

// EstimateDeliveryDate sets the estimated date from the delivery method when none is set.
func EstimateDeliveryDate(o *models.Order, now time.Time) {
	if o.Delivery.EstimatedDate != nil {
		return
	}
	days, ok := deliveryLeadDays[o.Delivery.Method]
	if !ok {
		return
	}
	estimate := now.AddDate(0, 0, days)
	o.Delivery.EstimatedDate = &estimate
}

// RecordStatusChange appends a timeline entry when an existing order changes status.
func RecordStatusChange(o *models.Order, opts Options) bool {
	if opts.IsNew || o.Status == opts.PreviousStatus {
		return false
	}
	note := opts.StatusNote
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", o.Status)
	}
	o.Timeline = append(o.Timeline, models.TimelineEntry{
		Status: o.Status,
		Date:   opts.Now,
		Note:   note,
		User:   opts.User,
	})
	return true
}

// Normalize runs the full pre-save pass on o and returns every rule it violates.
// The timeline is only appended to once o is valid. Callers must not save o on error.
func Normalize(o *models.Order, opts Options) error {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	ApplyDefaults(o)
	NormalizeItemSubtotals(o.Items)
	ReconcileTotals(o)
	EstimateDeliveryDate(o, opts.Now)

	errs := []error{validation.Struct(o)}
	if opts.IsNew || estimateChanged(opts.PreviousEstimate, o.Delivery.EstimatedDate) {
		errs = append(errs, validation.FutureDate("delivery.estimatedDate", o.Delivery.EstimatedDate, opts.Now))
	}
	if err := validation.Merge(errs...); err != nil {
		return err
	}

	RecordStatusChange(o, opts)
	return nil
}

func estimateChanged(previous, current *time.Time) bool {
	if previous == nil || current == nil {
		return previous != current
	}
	return !previous.Equal(*current)
}
