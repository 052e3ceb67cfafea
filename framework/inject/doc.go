// Package inject fills the missing arguments of a callable from a container.
//
// The parameter list of a callable is described once (Parameter, usually
// produced by an Inspector) and turned into a Blueprint: for every parameter,
// the key it is resolved from and whether it is required. At call time an
// Injected wrapper only asks the container for parameters the caller did not
// supply.
//
//	bp := inject.BuildBlueprint(params, map[string]container.Key{"db": "db.replica"}, nil, nil)
//	send := inject.Function(c, bp, sendMail)
//	_, err := send.Call("hello")
//
// Methods, class methods and static methods share the same wrapper: binding a
// receiver only changes how many leading arguments are implicit.
package inject
