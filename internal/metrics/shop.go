// Package metrics содержит Prometheus-метрики бизнес-операций и HTTP-слоя.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты checkout для метки result.
const (
	CheckoutSuccess  = "success"
	CheckoutInvalid  = "invalid"
	CheckoutNotFound = "not_found"
	CheckoutFailed   = "error"
)

// ShopMetrics содержит метрики бизнес-операций магазина.
type ShopMetrics struct {
	checkoutTotal    *prometheus.CounterVec
	checkoutItems    prometheus.Histogram
	checkoutDuration prometheus.Histogram

	reviewsCreated  prometheus.Counter
	ordersDeleted   prometheus.Counter
	usersRegistered prometheus.Counter
	usersDeleted    prometheus.Counter
}

// NewShopMetrics создаёт метрики в prometheus.DefaultRegisterer.
func NewShopMetrics() *ShopMetrics {
	return NewShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewShopMetricsWithRegisterer создаёт метрики в переданном registerer.
func NewShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		checkoutTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_checkout_total",
			Help: "Total number of checkout attempts by result",
		}, []string{"result"}),
		checkoutItems: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_checkout_items",
			Help:    "Number of line items per successful checkout",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_checkout_duration_seconds",
			Help:    "Duration of checkout transactions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		reviewsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_reviews_created_total",
			Help: "Total number of reviews created",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		usersRegistered: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_users_registered_total",
			Help: "Total number of registered users",
		}),
		usersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_users_deleted_total",
			Help: "Total number of deleted users",
		}),
	}
}

// RecordCheckout учитывает попытку checkout. items и duration учитываются только для успешных.
func (m *ShopMetrics) RecordCheckout(result string, items int, duration time.Duration) {
	if m == nil {
		return
	}
	m.checkoutTotal.WithLabelValues(result).Inc()
	if result == CheckoutSuccess {
		m.checkoutItems.Observe(float64(items))
		m.checkoutDuration.Observe(duration.Seconds())
	}
}

// RecordReviewCreated увеличивает счётчик отзывов.
func (m *ShopMetrics) RecordReviewCreated() {
	if m == nil {
		return
	}
	m.reviewsCreated.Inc()
}

func (m *ShopMetrics) RecordOrderDeleted() {
	if m == nil {
		return
	}
	m.ordersDeleted.Inc()
}

func (m *ShopMetrics) RecordUserRegistered() {
	if m == nil {
		return
	}
	m.usersRegistered.Inc()
}

func (m *ShopMetrics) RecordUserDeleted() {
	if m == nil {
		return
	}
	m.usersDeleted.Inc()
}

// CheckoutCounter возвращает счётчик checkout для результата; используется в тестах и дашбордах.
func (m *ShopMetrics) CheckoutCounter(result string) prometheus.Counter {
	return m.checkoutTotal.WithLabelValues(result)
}
