// Package flowconfig builds flow trees from HCL flow definitions.
//
// A definition holds exactly one flow block. Attributes of a block become
// the options of the component it declares, nested actor blocks become its
// children in source order and nested condition blocks are attached to
// condition holders:
//
//	flow "demo" {
//	  error_handling = "actors_decide"
//
//	  actor "StringConstants" "src" {
//	    strings = ["a", "b"]
//	  }
//	  actor "IfThenElse" "check" {
//	    condition "Expression" {
//	      expression = "input == \"a\""
//	    }
//	    actor "UpperCase" "upper" {}
//	  }
//	}
//
// Attribute expressions may use the process environment as env.NAME and a
// few string functions. Variable placeholders that should be expanded at
// run time are written $${name} so they survive HCL template parsing.
package flowconfig
