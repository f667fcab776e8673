// Package convert turns a domain object graph into versioned sets and pours
// stored sets back into a domain model.
//
// Converter walks the graph once, groups every versioned entity into the
// set of its SetType and then binds every pair of sets that is actually
// bound. Reverter is its inverse for container fields: it resolves the
// field/UUID pairs recorded on each set back into member objects.
package convert
