package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"storefront/internal/config"
	"sync"
	"time"
)

var (
	ErrUnknownCheckout    = errors.New("no pending checkout for order")
	ErrCheckoutInProgress = errors.New("checkout already open for order")
)

type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeFailure   OutcomeKind = "failed"
)

// PaymentOutcome is what the checkout widget reported for one gateway order.
type PaymentOutcome struct {
	Kind      OutcomeKind
	PaymentID string
	OrderID   string
	Signature string
	Reason    string
}

type CheckoutOptions struct {
	Key         string
	Amount      int64
	Currency    string
	Name        string
	Description string
	OrderID     string // gateway order id
	Email       string
	Notes       map[string]string
}

// Gateway opens the external payment widget and waits for its verdict.
type Gateway interface {
	Available(ctx context.Context) bool
	Open(ctx context.Context, opts *CheckoutOptions) (*PaymentOutcome, error)
}

type pendingCheckout struct {
	opts     *CheckoutOptions
	openedAt time.Time
	done     chan *PaymentOutcome
}

// WidgetGateway hands checkout options to the storefront page, which runs the
// vendor widget in the browser and posts the widget callback back through Resolve.
type WidgetGateway struct {
	httpClient *http.Client
	scriptURL  string

	mu      sync.Mutex
	loaded  bool
	pending map[string]*pendingCheckout
}

func NewWidgetGateway(cfg *config.Checkout) *WidgetGateway {
	return &WidgetGateway{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		scriptURL: cfg.ScriptURL,
		pending:   make(map[string]*pendingCheckout),
	}
}

// Available reports whether the widget script can be served to the page.
func (g *WidgetGateway) Available(ctx context.Context) bool {
	g.mu.Lock()
	loaded := g.loaded
	g.mu.Unlock()
	if loaded || g.scriptURL == "" {
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, g.scriptURL, nil)
	if err != nil {
		return false
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	g.mu.Lock()
	g.loaded = true
	g.mu.Unlock()
	return true
}

// Open blocks until the page resolves the checkout or ctx ends. An ended
// context counts as a dismissed widget.
func (g *WidgetGateway) Open(ctx context.Context, opts *CheckoutOptions) (*PaymentOutcome, error) {
	if opts.OrderID == "" {
		return nil, fmt.Errorf("open checkout: missing gateway order id")
	}

	p := &pendingCheckout{
		opts:     opts,
		openedAt: time.Now(),
		done:     make(chan *PaymentOutcome, 1),
	}

	g.mu.Lock()
	if _, ok := g.pending[opts.OrderID]; ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w %s", ErrCheckoutInProgress, opts.OrderID)
	}
	g.pending[opts.OrderID] = p
	g.mu.Unlock()

	select {
	case outcome := <-p.done:
		return outcome, nil
	case <-ctx.Done():
		g.mu.Lock()
		claimed := g.pending[opts.OrderID] != p
		if !claimed {
			delete(g.pending, opts.OrderID)
		}
		g.mu.Unlock()

		// Resolve already took this checkout; its outcome is on the way
		if claimed {
			return <-p.done, nil
		}
		return &PaymentOutcome{Kind: OutcomeCancelled, OrderID: opts.OrderID, Reason: ctx.Err().Error()}, nil
	}
}

// Pending lists checkouts waiting for the page, oldest first.
func (g *WidgetGateway) Pending() []*CheckoutOptions {
	g.mu.Lock()
	list := make([]*pendingCheckout, 0, len(g.pending))
	for _, p := range g.pending {
		list = append(list, p)
	}
	g.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].openedAt.Before(list[j].openedAt)
	})

	opts := make([]*CheckoutOptions, len(list))
	for i, p := range list {
		opts[i] = p.opts
	}
	return opts
}

// Resolve delivers the widget outcome for a gateway order. Each order takes
// exactly one outcome; later calls get ErrUnknownCheckout.
func (g *WidgetGateway) Resolve(orderID string, outcome *PaymentOutcome) error {
	g.mu.Lock()
	p, ok := g.pending[orderID]
	if ok {
		delete(g.pending, orderID)
	}
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownCheckout, orderID)
	}

	if outcome.OrderID == "" {
		outcome.OrderID = orderID
	}
	p.done <- outcome
	return nil
}
