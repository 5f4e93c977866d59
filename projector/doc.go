// Package projector builds the foreign parser config objects from host
// config structs.
//
// Each foreign class has a static table of setters, called in table order on
// a freshly constructed object. Descriptors are parsed and checked against
// the host field kinds when the package loads. Getters in the same tables
// read a projected object back for verification.
package projector
