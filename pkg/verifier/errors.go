// Copyright (C) 2025 SAGE-X Project
//
// This file is part of sage-http-certification.
//
// sage-http-certification is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sage-http-certification is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sage-http-certification.  If not, see <https://www.gnu.org/licenses/>.

package verifier

import (
	"errors"
	"fmt"

	"github.com/sage-x-project/sage-http-certification/pkg/cbor"
	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/certificate"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

// ErrorCode discriminates verification failures.
type ErrorCode uint16

const (
	CodeUnknown ErrorCode = iota
	CodeMalformedCbor
	CodeMalformedHashTree
	CodeMalformedCertificate
	CodeMalformedCelExpression
	CodeMalformedCertificateHeader
	CodeMalformedURL
	CodeMissingCertification
	CodeMissingCertificate
	CodeMissingTree
	CodeMissingExpressionPath
	CodeMissingCertificateExpressionHeader
	CodeMissingTime
	CodeCertificateVerificationFailed
	CodeCertificateTimeTooFarInPast
	CodeCertificateTimeTooFarInFuture
	CodeCanisterIDOutOfRange
	CodeCanisterRangesNotFound
	CodePublicKeyNotFound
	CodeDERKeyLengthMismatch
	CodeDERPrefixMismatch
	CodeNestedDelegationNotAllowed
	CodeInvalidTree
	CodeInvalidExpressionPath
	CodeInvalidResponseBody
	CodeExpressionHashMismatch
	CodeRequestHashMismatch
	CodeResponseHashMismatch
	CodeVerificationVersionMismatch
	CodeUnsupportedVerificationVersion
)

var codeNames = map[ErrorCode]string{
	CodeMalformedCbor:                      "MalformedCbor",
	CodeMalformedHashTree:                  "MalformedHashTree",
	CodeMalformedCertificate:               "MalformedCertificate",
	CodeMalformedCelExpression:             "MalformedCelExpression",
	CodeMalformedCertificateHeader:         "MalformedCertificateHeader",
	CodeMalformedURL:                       "MalformedUrl",
	CodeMissingCertification:               "MissingCertification",
	CodeMissingCertificate:                 "MissingCertificate",
	CodeMissingTree:                        "MissingTree",
	CodeMissingExpressionPath:              "MissingExpressionPath",
	CodeMissingCertificateExpressionHeader: "MissingCertificateExpressionHeader",
	CodeMissingTime:                        "MissingTime",
	CodeCertificateVerificationFailed:      "CertificateVerificationFailed",
	CodeCertificateTimeTooFarInPast:        "CertificateTimeTooFarInPast",
	CodeCertificateTimeTooFarInFuture:      "CertificateTimeTooFarInFuture",
	CodeCanisterIDOutOfRange:               "CanisterIdOutOfRange",
	CodeCanisterRangesNotFound:             "CanisterRangesNotFound",
	CodePublicKeyNotFound:                  "PublicKeyNotFound",
	CodeDERKeyLengthMismatch:               "DerKeyLengthMismatch",
	CodeDERPrefixMismatch:                  "DerPrefixMismatch",
	CodeNestedDelegationNotAllowed:         "NestedDelegationNotAllowed",
	CodeInvalidTree:                        "InvalidTree",
	CodeInvalidExpressionPath:              "InvalidExpressionPath",
	CodeInvalidResponseBody:                "InvalidResponseBody",
	CodeExpressionHashMismatch:             "ExpressionHashMismatch",
	CodeRequestHashMismatch:                "RequestHashMismatch",
	CodeResponseHashMismatch:               "ResponseHashMismatch",
	CodeVerificationVersionMismatch:        "VerificationVersionMismatch",
	CodeUnsupportedVerificationVersion:     "UnsupportedVerificationVersion",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown"
}

// VerificationError is the error returned by every failed verification.
type VerificationError struct {
	// Code is the kind of failure.
	Code ErrorCode

	// Err is the underlying cause, if any.
	Err error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Err.Error()
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Is matches another *VerificationError with the same code, so callers can
// write errors.Is(err, &VerificationError{Code: CodeInvalidTree}).
func (e *VerificationError) Is(target error) bool {
	t, ok := target.(*VerificationError)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first VerificationError in err's chain, or
// CodeUnknown.
func CodeOf(err error) ErrorCode {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return CodeUnknown
}

func newError(code ErrorCode, err error) *VerificationError {
	return &VerificationError{Code: code, Err: err}
}

func errorf(code ErrorCode, format string, args ...any) *VerificationError {
	return &VerificationError{Code: code, Err: fmt.Errorf(format, args...)}
}

// classify maps errors from the lower layers to a code. The most specific
// sentinel is checked first because decode errors wrap several of them.
func classify(err error) *VerificationError {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve
	}

	var header protocol.ErrInvalidCertificateHeader
	switch {
	case errors.As(err, &header):
		return newError(CodeMalformedCertificateHeader, err)
	case errors.Is(err, certificate.ErrTimeTooFarInPast):
		return newError(CodeCertificateTimeTooFarInPast, err)
	case errors.Is(err, certificate.ErrTimeTooFarInFuture):
		return newError(CodeCertificateTimeTooFarInFuture, err)
	case errors.Is(err, certificate.ErrMissingTime):
		return newError(CodeMissingTime, err)
	case errors.Is(err, certificate.ErrNestedDelegation):
		return newError(CodeNestedDelegationNotAllowed, err)
	case errors.Is(err, certificate.ErrCanisterIDOutOfRange):
		return newError(CodeCanisterIDOutOfRange, err)
	case errors.Is(err, certificate.ErrCanisterRangesNotFound):
		return newError(CodeCanisterRangesNotFound, err)
	case errors.Is(err, certificate.ErrPublicKeyNotFound):
		return newError(CodePublicKeyNotFound, err)
	case errors.Is(err, certificate.ErrDERKeyLengthMismatch):
		return newError(CodeDERKeyLengthMismatch, err)
	case errors.Is(err, certificate.ErrDERPrefixMismatch):
		return newError(CodeDERPrefixMismatch, err)
	case errors.Is(err, certificate.ErrVerificationFailed):
		return newError(CodeCertificateVerificationFailed, err)
	case errors.Is(err, certificate.ErrMalformedCertificate):
		return newError(CodeMalformedCertificate, err)
	case errors.Is(err, hashtree.ErrMalformedHashTree):
		return newError(CodeMalformedHashTree, err)
	case errors.Is(err, cbor.ErrMalformedCbor):
		return newError(CodeMalformedCbor, err)
	case errors.Is(err, cel.ErrMalformedExpression):
		return newError(CodeMalformedCelExpression, err)
	case errors.Is(err, httpcert.ErrMalformedURL):
		return newError(CodeMalformedURL, err)
	}
	return newError(CodeUnknown, err)
}
