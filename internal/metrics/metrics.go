package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It includes counters for bot traffic, orders, stock edits and notifications,
// and histograms for database and report durations.
type Metrics struct {
	CommandReceived   *prometheus.CounterVec   // Counter for received commands and button presses
	SentMessages      *prometheus.CounterVec   // Counter for sent messages
	NewUsers          prometheus.Counter       // Counter for accounts created on first contact
	DBQueryDuration   *prometheus.HistogramVec // Histogram for database operation durations
	ReportGeneration  prometheus.Histogram     // Histogram for order export durations
	OrdersPlaced      *prometheus.CounterVec   // Counter for placed orders by fulfillment outcome
	StockAdjustments  *prometheus.CounterVec   // Counter for stock edits by direction
	NotificationsSent *prometheus.CounterVec   // Counter for fan-out deliveries
}

// NewMetrics creates a new Metrics instance registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CommandReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storekeeper_commands_received_total",
			Help: "Total number of received commands and button presses",
		}, []string{"command"}), // command: /start, shop_enter, admin_orders, ...
		SentMessages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storekeeper_messages_sent_total",
			Help: "Output bot activity",
		}, []string{"type"}), // type: text, edit, respond, file, error
		NewUsers: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "storekeeper_new_users_total",
			Help: "Total number of accounts created on first contact",
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storekeeper_db_query_duration_seconds",
			Help:    "Duration of database operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: place_order, adjust_stock, ...
		ReportGeneration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "storekeeper_report_generation_duration_seconds",
			Help: "Duration of order export generation.",
		}),
		OrdersPlaced: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storekeeper_orders_placed_total",
			Help: "Placed orders by fulfillment outcome",
		}, []string{"outcome"}), // outcome: full, partial, none
		StockAdjustments: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storekeeper_stock_adjustments_total",
			Help: "Stock edits by direction",
		}, []string{"direction"}), // direction: up, down, same
		NotificationsSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storekeeper_notifications_total",
			Help: "Notification deliveries by kind and result",
		}, []string{"kind", "result"}), // kind: order_placed, stock_replenished, admin_granted, alert
	}
}
