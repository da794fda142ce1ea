package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StorefrontMetrics holds the business instruments of the storefront.
// A nil *StorefrontMetrics is valid and records nothing.
type StorefrontMetrics struct {
	navigations            *Counter
	themeToggles           *Counter
	cartMutations          *Counter
	ordersPlaced           *Counter
	checkoutFailures       *Counter
	orderValue             *Histogram
	prescriptionUploads    *Counter
	prescriptionRejections *Counter
	uploadSize             *Histogram
	chatReplies            *Counter
	chatConnections        *UpDownCounter
}

// NewStorefrontMetrics registers all storefront instruments on meter.
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &StorefrontMetrics{}
	var err error

	counters := []struct {
		dst         **Counter
		name, descr string
	}{
		{&m.navigations, "storefront.navigations", "Page navigations per target page"},
		{&m.themeToggles, "storefront.theme.toggles", "Theme toggles per resulting theme"},
		{&m.cartMutations, "storefront.cart.mutations", "Cart mutations per action"},
		{&m.ordersPlaced, "storefront.orders.placed", "Orders placed"},
		{&m.checkoutFailures, "storefront.checkout.failures", "Rejected checkout attempts per error code"},
		{&m.prescriptionUploads, "storefront.prescriptions.uploaded", "Accepted prescription uploads"},
		{&m.prescriptionRejections, "storefront.prescriptions.rejected", "Rejected prescription uploads"},
		{&m.chatReplies, "storefront.chat.replies", "Assistant replies per outcome"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.descr, "{event}"); err != nil {
			return nil, err
		}
	}

	if m.orderValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront.orders.value",
		Description: "Order totals",
		Unit:        "USD",
		Boundaries:  OrderValueBuckets,
	}); err != nil {
		return nil, err
	}
	if m.uploadSize, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront.prescriptions.size",
		Description: "Accepted prescription image sizes",
		Unit:        "By",
		Boundaries:  UploadSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.chatConnections, err = NewUpDownCounter(meter, "storefront.chat.connections", "Open chat sockets", "{connection}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordNavigation counts a page change.
func (m *StorefrontMetrics) RecordNavigation(ctx context.Context, page string) {
	if m == nil {
		return
	}
	m.navigations.Inc(ctx, AttrPage.String(page))
}

// RecordThemeToggle counts a theme flip.
func (m *StorefrontMetrics) RecordThemeToggle(ctx context.Context, theme string) {
	if m == nil {
		return
	}
	m.themeToggles.Inc(ctx, AttrTheme.String(theme))
}

// RecordCartMutation counts an add, update, remove or clear.
func (m *StorefrontMetrics) RecordCartMutation(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.cartMutations.Inc(ctx, AttrCartAction.String(action))
}

// RecordOrderPlaced counts an order and records its total.
func (m *StorefrontMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, payment, fulfillment string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrPaymentMethod.String(payment),
		AttrFulfillment.String(fulfillment),
	}
	m.ordersPlaced.Inc(ctx, attrs...)
	m.orderValue.Record(ctx, total.InexactFloat64(), attrs...)
}

// RecordCheckoutFailure counts a rejected checkout by error code.
func (m *StorefrontMetrics) RecordCheckoutFailure(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.checkoutFailures.Inc(ctx, AttrErrorCode.String(code))
}

// RecordPrescriptionUpload records an accepted upload of size bytes.
func (m *StorefrontMetrics) RecordPrescriptionUpload(ctx context.Context, size int64) {
	if m == nil {
		return
	}
	m.prescriptionUploads.Inc(ctx)
	m.uploadSize.Record(ctx, float64(size))
}

// RecordPrescriptionRejection counts a rejected upload by error code.
func (m *StorefrontMetrics) RecordPrescriptionRejection(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.prescriptionRejections.Inc(ctx, AttrErrorCode.String(code))
}

// RecordChatReply counts a delivered or cancelled assistant reply.
func (m *StorefrontMetrics) RecordChatReply(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.chatReplies.Inc(ctx, AttrOutcome.String(outcome))
}

// ChatConnectionOpened increments the open socket gauge.
func (m *StorefrontMetrics) ChatConnectionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.chatConnections.Add(ctx, 1)
}

// ChatConnectionClosed decrements the open socket gauge.
func (m *StorefrontMetrics) ChatConnectionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.chatConnections.Add(ctx, -1)
}
