// Package geodcat provides the graph vocabulary used to describe datasets
// as GeoDCAT-AP linked data.
//
// Predicates follow the three-level dotted naming of the semstreams
// vocabulary registry (geodcat.<node>.<property>). Each one is registered
// with the standard IRI it serializes to and the data type that decides how
// a plain object value is typed.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/geocrosswalk/vocabulary/geodcat"
package geodcat
