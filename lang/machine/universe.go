package machine

// universalNames is the static set of ES3 built-in names lang/builtins wires
// into every Thread's Universe map (see lang/builtins' Wire); print and gc,
// also wired into Universe, are not listed here. The resolver
// needs to know these at resolve time, before any Thread exists, so that a
// bare reference to e.g. "Object" or "undefined" is classified as universe
// scope (GETUNIVERSE) instead of an unresolved Global lookup. Kept in sync
// with lang/builtins' registration list by hand, the same way the teacher's
// lang/machine/universe.go is kept in sync with its own builtin registration.
var universalNames = map[string]bool{
	"undefined": true, "NaN": true, "Infinity": true,

	"Object": true, "Function": true, "Array": true,
	"String": true, "Number": true, "Boolean": true,
	"Date": true, "RegExp": true, "Math": true, "JSON": true,

	"Error": true, "RangeError": true, "ReferenceError": true,
	"SyntaxError": true, "TypeError": true, "URIError": true,

	"eval": true, "parseInt": true, "parseFloat": true,
	"isNaN": true, "isFinite": true,
	"encodeURIComponent": true, "decodeURIComponent": true,
	"encodeURI": true, "decodeURI": true,
}

// IsUniverse reports whether name is one of the language's built-in
// globals, for lang/resolver's isUniversal callback.
func IsUniverse(name string) bool { return universalNames[name] }
