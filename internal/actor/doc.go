// Package actor defines the contract every flow node satisfies.
//
// An actor is a named, configurable unit with a fixed lifecycle:
//
//	construct → configure → SetUp → (Execute)* → WrapUp → CleanUp
//
// Its role in token routing is derived from the interfaces it implements:
// an InputConsumer that is also an OutputProducer is a transformer, a bare
// OutputProducer is a source, a bare InputConsumer is a sink and an actor
// implementing neither is a standalone. Composite actors implement Handler
// and own an ordered list of children.
//
// Concrete actors embed Base, which carries the state shared by every node:
// the non-owning parent link, common options, the run environment and the
// lock serializing out-of-band invocations. The package level functions
// SetUp, Execute, Input, WrapUp and CleanUp wrap the corresponding methods
// with phase tracking, error annotation and panic recovery; composites must
// drive their children through them.
package actor
