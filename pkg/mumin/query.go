package mumin

import "github.com/abubakrmuminov/mumin-api-cli/pkg/transport"

// Query holds the optional filters accepted by the list, random and search
// endpoints. Zero values are not sent.
type Query struct {
	Lang       string
	Collection string
	Book       int
	Grade      string
	Page       int
	Limit      int
}

func (q *Query) params() transport.Params {
	p := transport.Params{}
	if q == nil {
		return p
	}
	p["lang"] = q.Lang
	p["collection"] = q.Collection
	p["grade"] = q.Grade
	if q.Book > 0 {
		p["book"] = q.Book
	}
	if q.Page > 0 {
		p["page"] = q.Page
	}
	if q.Limit > 0 {
		p["limit"] = q.Limit
	}
	return p
}

func langParams(lang string) transport.Params {
	return transport.Params{"lang": lang}
}
