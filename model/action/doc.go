// Package action defines the actions flowing through the dispatch pipeline.
//
// A plain Action carries a scalar type and is what the host store reduces.
// A Compound carries a [request, response] type pair and represents an
// asynchronous operation; the dispatcher splits it into two phase actions.
package action
