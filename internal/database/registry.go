package database

import (
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names for every resource the service persists.
const (
	CollManagement    = "management"
	CollBlogPosts     = "blogpostHome"
	CollBookings      = "bookInsurance"
	CollPoliciesUser  = "policiesuser"
	CollProfileDesign = "profiledesign"
	CollCustomers     = "customer"
	CollPayments      = "payments"
)

var collectionNames = []string{
	CollManagement,
	CollBlogPosts,
	CollBookings,
	CollPoliciesUser,
	CollProfileDesign,
	CollCustomers,
	CollPayments,
}

var (
	ErrNotInitialized     = errors.New("collection registry not initialized")
	ErrAlreadyInitialized = errors.New("collection registry already initialized")
)

// registry holds one bound handle per named collection. Handles are bound
// exactly once at startup and never re-bound.
var (
	regMu       sync.RWMutex
	collections map[string]*mongo.Collection
)

// Init binds a collection handle for every known collection name.
// It must be called exactly once, after the Mongo connection is established.
func Init(db *mongo.Database) error {
	regMu.Lock()
	defer regMu.Unlock()
	if collections != nil {
		return ErrAlreadyInitialized
	}
	bound := make(map[string]*mongo.Collection, len(collectionNames))
	for _, name := range collectionNames {
		bound[name] = db.Collection(name)
	}
	collections = bound
	return nil
}

// Collection returns the bound handle for name, or an error when the registry
// has not completed initialization or the name is unknown.
func Collection(name string) (*mongo.Collection, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	if collections == nil {
		return nil, ErrNotInitialized
	}
	col, ok := collections[name]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return col, nil
}

// reset is a test hook; the production lifecycle never unbinds handles.
func reset() {
	regMu.Lock()
	defer regMu.Unlock()
	collections = nil
}
