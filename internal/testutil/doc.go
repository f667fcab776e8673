// Package testutil provides a small plant domain and helpers shared by the
// engine's tests.
//
// The domain:
//
//	Plant     container   locations, components, shifts (sequences),
//	                      lead (reference), index (mapping)
//	Location  versioned   id, name
//	Component versioned   id, name, location (reference), qty, tags
//	Shift     versioned   per object type, divided by kind
//	Night/Day value types used as shift kinds
package testutil
