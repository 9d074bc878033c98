package channel

import (
	"log/slog"

	"github.com/ajroetker/go-sawg/sawg/contrib/dds"
)

type options struct {
	width       int
	parallelism int
	widths      *dds.Widths
	orders      dds.Orders
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		width:       16,
		parallelism: 4,
		orders:      dds.Orders{A: 4, P: 1, F: 2},
		logger:      slog.New(slog.DiscardHandler),
	}
}

// Option configures a Channel.
type Option func(*options)

// WithWidth sets the sample width.
func WithWidth(width int) Option {
	return func(o *options) { o.width = width }
}

// WithParallelism sets the number of output lanes per cycle. It must be a
// power of two.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithWidths overrides the tone generator widths derived from the sample
// width and the orders.
func WithWidths(w dds.Widths) Option {
	return func(o *options) { o.widths = &w }
}

// WithOrders sets the spline orders.
func WithOrders(orders dds.Orders) Option {
	return func(o *options) { o.orders = orders }
}

// WithLogger sets the logger that receives the latency plan at build time.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
