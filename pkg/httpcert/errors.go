package httpcert

import "errors"

var (
	// ErrMalformedURL is returned when a request URL cannot be parsed.
	ErrMalformedURL = errors.New("malformed request url")

	// ErrMissingExpressionHeader is returned when a response to be certified has
	// no IC-CertificateExpression header.
	ErrMissingExpressionHeader = errors.New("response is missing the IC-CertificateExpression header")

	// ErrExpressionHeaderMismatch is returned when the response's
	// IC-CertificateExpression header differs from the expression being
	// certified.
	ErrExpressionHeaderMismatch = errors.New("IC-CertificateExpression header does not match the expression")

	// ErrMultipleExpressionHeaders is returned when a response carries more than
	// one IC-CertificateExpression header.
	ErrMultipleExpressionHeaders = errors.New("response has more than one IC-CertificateExpression header")

	// ErrMissingRequest is returned when a full certification is requested
	// without a request.
	ErrMissingRequest = errors.New("full certification requires a request")

	// ErrWildcardPathNotValid is returned when a wildcard path cannot serve
	// the requested URL.
	ErrWildcardPathNotValid = errors.New("wildcard path is not valid for the request path")
)
