package cart

import (
	"bihar-bazaar/internal/model"
)

// Action is a mutation applied by Reduce.
type Action interface {
	apply(State) (State, error)
}

// AddItem adds Item to the cart. An existing line for the same product
// has its quantity increased instead.
type AddItem struct {
	Item model.CartItem
}

// RemoveItem drops a line from the cart.
type RemoveItem struct {
	ProductID string
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less removes it.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// Clear empties the cart. The wishlist is kept.
type Clear struct{}

// MarkSynced records the backend outcome of an earlier mutation.
type MarkSynced struct {
	ProductID string
	Status    model.SyncStatus
}

// ReplaceItems swaps the whole ledger for the authoritative backend cart.
type ReplaceItems struct {
	Items []model.CartItem
}

// AddToWishlist saves a product. Saving it twice is a no-op.
type AddToWishlist struct {
	Item model.WishlistItem
}

// RemoveFromWishlist drops a saved product.
type RemoveFromWishlist struct {
	ProductID string
}

// Reset wipes cart and wishlist.
type Reset struct{}

// RevertLine undoes a local change the backend rejected. When Previous is
// nil the line did not exist before and is dropped. Otherwise the previous
// line comes back marked failed.
type RevertLine struct {
	ProductID string
	Previous  *model.CartItem
}

// Reduce applies action to state and returns the next state.
// state is never modified; on error the returned state equals the input.
func Reduce(state State, action Action) (State, error) {
	next, err := action.apply(state.Clone())
	if err != nil {
		return state, err
	}
	return next, nil
}

func (a AddItem) apply(s State) (State, error) {
	if a.Item.ProductID == "" {
		return s, model.ErrProductNotFound
	}
	if a.Item.Quantity < 1 || a.Item.Quantity > model.MaxQuantity {
		return s, model.ErrInvalidQuantity
	}

	if i := s.indexOf(a.Item.ProductID); i >= 0 {
		if s.Items[i].Quantity+a.Item.Quantity > model.MaxQuantity {
			return s, model.ErrInvalidQuantity
		}
		s.Items[i].Quantity += a.Item.Quantity
		s.Items[i].Status = model.SyncPending
		return s, nil
	}

	item := a.Item
	item.Status = model.SyncPending
	s.Items = append(s.Items, item)
	return s, nil
}

func (a RemoveItem) apply(s State) (State, error) {
	i := s.indexOf(a.ProductID)
	if i < 0 {
		return s, model.ErrItemNotInCart
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	return s, nil
}

func (a UpdateQuantity) apply(s State) (State, error) {
	i := s.indexOf(a.ProductID)
	if i < 0 {
		return s, model.ErrItemNotInCart
	}
	if a.Quantity <= 0 {
		s.Items = append(s.Items[:i], s.Items[i+1:]...)
		return s, nil
	}
	if a.Quantity > model.MaxQuantity {
		return s, model.ErrInvalidQuantity
	}
	s.Items[i].Quantity = a.Quantity
	s.Items[i].Status = model.SyncPending
	return s, nil
}

func (Clear) apply(s State) (State, error) {
	s.Items = nil
	return s, nil
}

func (a MarkSynced) apply(s State) (State, error) {
	// The line may have been removed while the backend call was in flight.
	if i := s.indexOf(a.ProductID); i >= 0 {
		s.Items[i].Status = a.Status
	}
	return s, nil
}

func (a RevertLine) apply(s State) (State, error) {
	i := s.indexOf(a.ProductID)
	if a.Previous == nil {
		if i >= 0 {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
		}
		return s, nil
	}

	prev := *a.Previous
	prev.Status = model.SyncFailed
	if i >= 0 {
		s.Items[i] = prev
	} else {
		s.Items = append(s.Items, prev)
	}
	return s, nil
}

func (a ReplaceItems) apply(s State) (State, error) {
	s.Items = nil
	for _, item := range a.Items {
		if item.Quantity < 1 {
			continue
		}
		item.Status = model.SyncConfirmed
		s.Items = append(s.Items, item)
	}
	return s, nil
}

func (a AddToWishlist) apply(s State) (State, error) {
	if a.Item.ProductID == "" {
		return s, model.ErrProductNotFound
	}
	if s.wishlistIndexOf(a.Item.ProductID) >= 0 {
		return s, nil
	}
	s.Wishlist = append(s.Wishlist, a.Item)
	return s, nil
}

func (a RemoveFromWishlist) apply(s State) (State, error) {
	i := s.wishlistIndexOf(a.ProductID)
	if i < 0 {
		return s, model.ErrWishlistItemNotFound
	}
	s.Wishlist = append(s.Wishlist[:i], s.Wishlist[i+1:]...)
	return s, nil
}

func (Reset) apply(State) (State, error) {
	return State{}, nil
}
