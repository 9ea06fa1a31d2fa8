package httpcert

import (
	"net/http"
	"slices"
)

// FromHTTPRequest converts r, whose body has already been read into body.
// net/http keeps the Host header out of r.Header, so it is added back from
// r.Host, or from r.URL.Host when r.Host is empty.
func FromHTTPRequest(r *http.Request, body []byte) *Request {
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Del("Host")
	if host := requestHost(r); host != "" {
		header.Set("Host", host)
	}

	return &Request{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Headers: HeaderFields(header),
		Body:    body,
	}
}

func requestHost(r *http.Request) string {
	if r.Host != "" {
		return r.Host
	}
	if r.URL != nil {
		return r.URL.Host
	}
	return ""
}

// FromHTTPResponse converts a response received or recorded with net/http.
func FromHTTPResponse(statusCode int, header http.Header, body []byte) *Response {
	return &Response{
		StatusCode: statusCode,
		Headers:    HeaderFields(header),
		Body:       body,
	}
}

// HeaderFields flattens h in key order. Values of one key keep their order.
func HeaderFields(h http.Header) []HeaderField {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []HeaderField
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, HeaderField{Name: name, Value: v})
		}
	}
	return out
}

// SetHTTPHeaders replaces the contents of dst with fields.
func SetHTTPHeaders(dst http.Header, fields []HeaderField) {
	clear(dst)
	for _, f := range fields {
		dst.Add(f.Name, f.Value)
	}
}
