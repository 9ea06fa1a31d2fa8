package verifier

import (
	"context"

	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
)

// ResponseVerifier verifies that a response was certified by the canister
// that served it
type ResponseVerifier interface {
	// VerifyRequestResponsePair checks resp against the certificate and
	// witness in its IC-Certificate header. On failure the result carries
	// the verification version and Passed=false, and the error is a
	// *VerificationError.
	VerifyRequestResponsePair(ctx context.Context, req *httpcert.Request, resp *httpcert.Response) (*VerificationResult, error)
}

// VerificationResult is the outcome of a verification.
type VerificationResult struct {
	// Version is the verification version the response was checked under
	Version uint8

	// Passed is true only when every check succeeded
	Passed bool

	// Response holds the certified parts of the response. It is nil on
	// failure and for responses that skip certification.
	Response *VerifiedResponse
}

// VerifiedResponse is the trustworthy view of a response: only the parts
// that were covered by the certification.
type VerifiedResponse struct {
	// StatusCode is the certified status code, 0 under version 1 where the
	// status is not certified
	StatusCode int

	// Headers are the certified headers with lowercased names
	Headers []httpcert.HeaderField

	// Body is the response body as received
	Body []byte
}
