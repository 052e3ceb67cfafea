// Package http provides the request and JSON response helpers used by the
// inspection router.
//
//	req := gohttp.NewRequest(r)
//
//	req.Query("pretty")           // ?pretty=true
//	req.QueryAll("arg")           // ?arg=a&arg=b
//	req.QueryPairs("kwarg")       // ?kwarg=timeout=2s
//	req.RouteParam("key")         // /resolve/{key}
//	req.Bind(&body)               // JSON body
//	req.BearerToken()             // Authorization: Bearer <token>
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)           // raw JSON with status
//	res.Success(data)             // 200 {"data": ...}
//	res.Indent("  ").Success(v)   // pretty printed
//	res.Stream(ct, write)         // 200 with a streamed body
//
//	// Errors
//	res.Error(409, "cycle")       // {"message": "cycle"}
//	res.Unauthorized()            // 401 {"message": "Unauthenticated."}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ServerError()             // 500 {"message": "Server Error."}
package http
