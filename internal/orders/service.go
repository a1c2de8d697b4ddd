package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/homeplate/homeplate-golang/internal/errs"
	"github.com/homeplate/homeplate-golang/internal/models"
	"github.com/homeplate/homeplate-golang/internal/notify"
)

// Store is the persistence boundary for orders. Both mutations are
// conditional: they succeed only when the current state still matches the
// expected one, which is how concurrent duplicate requests lose.
type Store interface {
	// CreatePending atomically flips the product from available to sold,
	// records the buyer on it, and inserts the order. The order's SellerID
	// and Price are filled from the product. Returns ConflictError when the
	// product is no longer available, NotFoundError when it does not exist,
	// ValidationError when the buyer owns the product.
	CreatePending(ctx context.Context, o *models.Order) error

	// Get returns the order or NotFoundError.
	Get(ctx context.Context, id int64) (*models.Order, error)

	// AdvanceStatus sets the order's status to 'to' only if it is still
	// 'from', persisting sellerLoc when given. The boolean is false when
	// the precondition failed (zero rows updated).
	AdvanceStatus(ctx context.Context, id int64, from, to string, sellerLoc *models.GeoPoint) (bool, error)
}

// Notifier is satisfied by *notify.Dispatcher.
type Notifier interface {
	Enqueue(p notify.Payload) bool
}

type Service struct {
	store    Store
	notifier Notifier
	log      *zap.Logger
}

func NewService(store Store, notifier Notifier, log *zap.Logger) *Service {
	return &Service{store: store, notifier: notifier, log: log}
}

// PlaceInput is what a buyer supplies when confirming a purchase.
type PlaceInput struct {
	BuyerID       int64
	ProductID     int64
	BuyerLocation models.GeoPoint
}

// Place creates a pending order against an available product. The product
// flip and the order insert commit together; the seller notification is
// dispatched afterwards, best-effort.
func (s *Service) Place(ctx context.Context, in PlaceInput) (*models.Order, error) {
	if err := validateGeo(in.BuyerLocation); err != nil {
		return nil, err
	}

	o := &models.Order{
		BuyerID:       in.BuyerID,
		ProductID:     in.ProductID,
		BuyerLocation: in.BuyerLocation,
		Status:        models.OrderPending,
	}
	if err := s.store.CreatePending(ctx, o); err != nil {
		return nil, err
	}

	s.notifier.Enqueue(notify.Payload{
		RecipientID: o.SellerID,
		Title:       "New Order",
		Body:        fmt.Sprintf("You have a new order #%d. Confirm it to get cooking.", o.ID),
		Category:    "order_placed",
	})

	return o, nil
}

// AdvanceInput describes a requested status transition and who is asking.
type AdvanceInput struct {
	OrderID int64
	Target  string

	ActorID      int64
	ActorIsAdmin bool

	// SellerLocation is required when a seller confirms; admins may confirm
	// without one.
	SellerLocation *models.GeoPoint
}

// Advance moves an order one step forward. The status write is conditional
// on the current status, so of two concurrent identical requests exactly
// one succeeds and the other gets ConflictError.
func (s *Service) Advance(ctx context.Context, in AdvanceInput) (*models.Order, error) {
	if !ValidStatus(in.Target) || in.Target == models.OrderPending {
		return nil, errs.Validationf("invalid target status %q", in.Target)
	}

	o, err := s.store.Get(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if !in.ActorIsAdmin && o.SellerID != in.ActorID {
		return nil, errs.Permissionf("only the assigned seller or an admin can update this order")
	}

	if !CanTransition(o.Status, in.Target) {
		if o.Status == in.Target || o.Status == models.OrderDelivered {
			return nil, errs.Conflictf("order #%d is already %s", o.ID, o.Status)
		}
		return nil, errs.Conflictf("order #%d is %s and cannot move directly to %s", o.ID, o.Status, in.Target)
	}

	var sellerLoc *models.GeoPoint
	if in.Target == models.OrderConfirmed {
		if in.SellerLocation == nil {
			if !in.ActorIsAdmin {
				return nil, errs.Validationf("seller location is required to confirm an order")
			}
		} else {
			if err := validateGeo(*in.SellerLocation); err != nil {
				return nil, err
			}
			sellerLoc = in.SellerLocation
		}
	}

	ok, err := s.store.AdvanceStatus(ctx, o.ID, o.Status, in.Target, sellerLoc)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else advanced (or removed) the order between our read and
		// the conditional write.
		current, err := s.store.Get(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		return nil, errs.Conflictf("order #%d was already advanced to %s", o.ID, current.Status)
	}

	o.Status = in.Target
	if sellerLoc != nil {
		o.SellerLocation = sellerLoc
	}

	// The transition is committed; notification failure from here on is
	// logged by the dispatcher and never unwinds the status change.
	buyerNote, sellerNote := transitionNotifications(o)
	s.notifier.Enqueue(buyerNote)
	s.notifier.Enqueue(sellerNote)

	return o, nil
}

// transitionNotifications builds the buyer and seller payloads for a
// committed transition.
func transitionNotifications(o *models.Order) (buyer, seller notify.Payload) {
	switch o.Status {
	case models.OrderConfirmed:
		buyer = notify.Payload{
			RecipientID: o.BuyerID,
			Title:       "Order Confirmed!",
			Body:        fmt.Sprintf("Your order #%d has been confirmed by the seller. Get ready to enjoy your food!", o.ID),
			Category:    "order_confirmed",
		}
		seller = notify.Payload{
			RecipientID: o.SellerID,
			Title:       "Order Confirmed",
			Body:        fmt.Sprintf("You have confirmed order #%d. Remember to prepare the food.", o.ID),
			Category:    "order_confirmed",
		}
	case models.OrderDelivered:
		buyer = notify.Payload{
			RecipientID: o.BuyerID,
			Title:       "Order Delivered!",
			Body:        fmt.Sprintf("Your order #%d has been delivered. Enjoy your meal!", o.ID),
			Category:    "order_delivered",
		}
		seller = notify.Payload{
			RecipientID: o.SellerID,
			Title:       "Order Delivered",
			Body:        fmt.Sprintf("Order #%d has been marked as delivered.", o.ID),
			Category:    "order_delivered",
		}
	}
	return buyer, seller
}

func validateGeo(g models.GeoPoint) error {
	if g.Latitude < -90 || g.Latitude > 90 || g.Longitude < -180 || g.Longitude > 180 {
		return errs.Validationf("invalid coordinates (%f, %f)", g.Latitude, g.Longitude)
	}
	if g.Latitude == 0 && g.Longitude == 0 {
		// Null Island means the client never resolved a location.
		return errs.Validationf("location is required")
	}
	return nil
}
