// Package control contains the composite actors that give a flow its shape:
// the root Flow, sequences, callable actor containers and users, triggers,
// branches and the container value picker.
//
// Every composite that routes tokens among its children delegates to a
// Director, which implements depth-first routing with a single token in
// flight.
package control
