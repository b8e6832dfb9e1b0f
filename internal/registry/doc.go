// Package registry provides the central "glue" for the module system.
//
// The Registry maps the type tags used in flow definitions (e.g.
// "StringConstants") to constructors for actors and conditions. It is
// populated once at startup from a list of modules and then passed by
// reference to whatever builds flows. There is no global instance.
package registry
