package protocol

import (
	"encoding/base64"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/sage-x-project/sage-http-certification/pkg/cbor"
)

const (
	// CertificateHeaderName carries the certificate, the witness tree and,
	// from version 2, the expression path.
	CertificateHeaderName = "IC-Certificate"

	// CertificateExpressionHeaderName carries the certification expression of a
	// version 2 response.
	CertificateExpressionHeaderName = "IC-CertificateExpression"

	// DefaultVerificationVersion applies when the header has no version field.
	DefaultVerificationVersion uint8 = 1

	// MinVerificationVersion is the oldest supported verification version.
	MinVerificationVersion uint8 = 1

	// MaxVerificationVersion is the newest supported verification version.
	MaxVerificationVersion uint8 = 2
)

// CertificateHeader is the parsed value of an IC-Certificate header.
type CertificateHeader struct {
	// Certificate is the CBOR encoded certificate
	Certificate []byte

	// Tree is the CBOR encoded witness tree
	Tree []byte

	// ExprPath is the CBOR encoded expression path, present from version 2
	ExprPath []byte

	// Version is the verification version, DefaultVerificationVersion when the
	// field is absent
	Version uint8
}

// NewV1Header builds a version 1 header.
func NewV1Header(certificate, tree []byte) *CertificateHeader {
	return &CertificateHeader{
		Certificate: certificate,
		Tree:        tree,
		Version:     1,
	}
}

// NewV2Header builds a version 2 header for the given expression path.
func NewV2Header(certificate, tree []byte, exprPath []string) (*CertificateHeader, error) {
	path, err := cbor.EncodeStrings(exprPath)
	if err != nil {
		return nil, fmt.Errorf("encode expression path: %w", err)
	}
	return &CertificateHeader{
		Certificate: certificate,
		Tree:        tree,
		ExprPath:    path,
		Version:     2,
	}, nil
}

// ParseCertificateHeader parses an IC-Certificate header value.
//
// Fields are comma separated name=value pairs whose value may be wrapped in
// colons. Unknown and empty fields are ignored; when a field repeats, the
// first occurrence is used.
func ParseCertificateHeader(value string) (*CertificateHeader, error) {
	h := &CertificateHeader{Version: DefaultVerificationVersion}
	seen := make(map[string]bool)

	for _, field := range strings.Split(value, ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		val = strings.TrimSpace(val)
		if len(val) >= 2 && strings.HasPrefix(val, ":") && strings.HasSuffix(val, ":") {
			val = val[1 : len(val)-1]
		}
		if name == "" || val == "" {
			continue
		}

		switch name {
		case "certificate", "tree", "expr_path", "version":
		default:
			continue
		}
		if seen[name] {
			log.Printf("Warning: duplicate %q field in %s header, using the first one", name, CertificateHeaderName)
			continue
		}
		seen[name] = true

		if name == "version" {
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return nil, ErrInvalidCertificateHeader{fmt.Sprintf("version %q is not a number", val)}
			}
			h.Version = uint8(v)
			continue
		}

		decoded, err := decodeBase64(val)
		if err != nil {
			return nil, ErrInvalidCertificateHeader{fmt.Sprintf("field %s is not base64: %v", name, err)}
		}
		switch name {
		case "certificate":
			h.Certificate = decoded
		case "tree":
			h.Tree = decoded
		case "expr_path":
			h.ExprPath = decoded
		}
	}

	return h, nil
}

// decodeBase64 accepts standard base64 with or without padding and ignores
// non-zero trailing bits.
func decodeBase64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// ExpressionPath decodes the expression path labels.
func (h *CertificateHeader) ExpressionPath() ([]string, error) {
	if len(h.ExprPath) == 0 {
		return nil, ErrInvalidCertificateHeader{"expr_path is missing"}
	}
	path, err := cbor.ParseStringArray(h.ExprPath)
	if err != nil {
		return nil, fmt.Errorf("expr_path: %w", err)
	}
	return path, nil
}

// String renders the header value. The version field is written for
// versions after the first.
func (h *CertificateHeader) String() string {
	var parts []string
	if len(h.Certificate) > 0 {
		parts = append(parts, "certificate=:"+base64.StdEncoding.EncodeToString(h.Certificate)+":")
	}
	if len(h.Tree) > 0 {
		parts = append(parts, "tree=:"+base64.StdEncoding.EncodeToString(h.Tree)+":")
	}
	if len(h.ExprPath) > 0 {
		parts = append(parts, "expr_path=:"+base64.StdEncoding.EncodeToString(h.ExprPath)+":")
	}
	if h.Version > DefaultVerificationVersion {
		parts = append(parts, "version="+strconv.Itoa(int(h.Version)))
	}
	return strings.Join(parts, ", ")
}

// IsSupportedVersion reports whether the header's version can be verified.
func (h *CertificateHeader) IsSupportedVersion() bool {
	return h.Version >= MinVerificationVersion && h.Version <= MaxVerificationVersion
}

// Validate checks that the fields required by the header's version are
// present.
func (h *CertificateHeader) Validate() error {
	if !h.IsSupportedVersion() {
		return ErrInvalidCertificateHeader{fmt.Sprintf("unsupported version %d", h.Version)}
	}
	if len(h.Certificate) == 0 {
		return ErrInvalidCertificateHeader{"certificate is required"}
	}
	if len(h.Tree) == 0 {
		return ErrInvalidCertificateHeader{"tree is required"}
	}
	if h.Version >= 2 && len(h.ExprPath) == 0 {
		return ErrInvalidCertificateHeader{"expr_path is required"}
	}
	return nil
}

// ErrInvalidCertificateHeader is returned when an IC-Certificate header is
// malformed
type ErrInvalidCertificateHeader struct {
	Message string
}

func (e ErrInvalidCertificateHeader) Error() string {
	return "malformed certificate header: " + e.Message
}
