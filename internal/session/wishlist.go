package session

import (
	"slices"
	"time"

	"storefront/internal/models"

	"go.uber.org/zap"
)

// MutationState is the phase of an optimistic change.
type MutationState int

const (
	Pending MutationState = iota
	Committed
	RolledBack
)

func (m MutationState) String() string {
	switch m {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	}
	return "unknown"
}

// MutationKind says what an optimistic change did locally.
type MutationKind int

const (
	WishlistAdd MutationKind = iota
	WishlistRemove
)

// Mutation records one optimistic wishlist change. A change requested while
// an identical one is still in flight is joined to it: it makes no backend
// call of its own and ends in the same state.
type Mutation struct {
	ID        uint64
	Kind      MutationKind
	ProductID string
	State     MutationState
	Err       error
	JoinedTo  uint64
}

// flight is an unfinished backend call for one product.
type flight struct {
	mutation uint64
	kind     MutationKind
	done     chan struct{}
	err      error
}

// Mutations returns the optimistic changes made since login, oldest first.
func (s *Session) Mutations() []Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.mutations)
}

// AddToWishlist puts a product on the wishlist immediately, then confirms it
// with the backend. If the backend call fails the entry is taken off again
// and the error is returned.
func (s *Session) AddToWishlist(product models.Product) error {
	return s.optimistic(WishlistAdd, product)
}

// RemoveFromWishlist takes a product off the wishlist immediately, then
// confirms it with the backend. If the backend call fails the entry is put
// back where it was.
func (s *Session) RemoveFromWishlist(productID string) error {
	return s.optimistic(WishlistRemove, models.Product{ID: productID})
}

// ToggleWishlist adds or removes product depending on whether it is listed.
func (s *Session) ToggleWishlist(product models.Product) error {
	if s.InWishlist(product.ID) {
		return s.RemoveFromWishlist(product.ID)
	}
	return s.AddToWishlist(product)
}

func (s *Session) optimistic(kind MutationKind, product models.Product) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	api, userID, gen := s.api, s.user.ID, s.generation

	if f, ok := s.inflight[product.ID]; ok && f.kind == kind {
		s.nextID++
		s.mutations = append(s.mutations, Mutation{
			ID:        s.nextID,
			Kind:      kind,
			ProductID: product.ID,
			State:     Pending,
			JoinedTo:  f.mutation,
		})
		s.mu.Unlock()
		<-f.done
		return f.err
	}

	// apply
	var removed models.WishlistItem
	removedAt := -1
	switch kind {
	case WishlistAdd:
		if s.wishlistIndex(product.ID) >= 0 {
			s.mu.Unlock()
			return nil
		}
		s.wishlist = append(s.wishlist, models.WishlistItem{
			UserID:    userID,
			ProductID: product.ID,
			Product:   product,
			CreatedAt: time.Now(),
		})
	case WishlistRemove:
		removedAt = s.wishlistIndex(product.ID)
		if removedAt < 0 {
			s.mu.Unlock()
			return nil
		}
		removed = s.wishlist[removedAt]
		s.wishlist = slices.Delete(s.wishlist, removedAt, removedAt+1)
	}
	s.nextID++
	m := Mutation{ID: s.nextID, Kind: kind, ProductID: product.ID, State: Pending}
	s.mutations = append(s.mutations, m)
	f := &flight{mutation: m.ID, kind: kind, done: make(chan struct{})}
	if s.inflight == nil {
		s.inflight = make(map[string]*flight)
	}
	s.inflight[product.ID] = f
	s.mu.Unlock()

	var err error
	if kind == WishlistAdd {
		err = api.AddToWishlist(userID, product.ID)
	} else {
		err = api.RemoveFromWishlist(userID, product.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f.err = err
	close(f.done)
	if s.inflight[product.ID] == f {
		delete(s.inflight, product.ID)
	}
	if s.generation != gen {
		// logged out or switched user meanwhile; the state this applied to is gone
		return err
	}

	if err == nil {
		s.setMutationState(m.ID, Committed, nil)
		return nil
	}

	// replay the inverse
	switch kind {
	case WishlistAdd:
		if i := s.wishlistIndex(product.ID); i >= 0 {
			s.wishlist = slices.Delete(s.wishlist, i, i+1)
		}
	case WishlistRemove:
		if s.wishlistIndex(product.ID) < 0 {
			at := min(removedAt, len(s.wishlist))
			s.wishlist = slices.Insert(s.wishlist, at, removed)
		}
	}
	s.setMutationState(m.ID, RolledBack, err)
	s.logger.Warn("Wishlist change rolled back",
		zap.String("user_id", userID),
		zap.String("product_id", product.ID),
		zap.Error(err))
	return err
}

// setMutationState settles mutation id and every mutation joined to it.
func (s *Session) setMutationState(id uint64, state MutationState, err error) {
	for i := range s.mutations {
		if s.mutations[i].ID == id || s.mutations[i].JoinedTo == id {
			s.mutations[i].State = state
			s.mutations[i].Err = err
		}
	}
}

func (s *Session) wishlistIndex(productID string) int {
	return slices.IndexFunc(s.wishlist, func(w models.WishlistItem) bool { return w.ProductID == productID })
}
