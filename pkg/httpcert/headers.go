package httpcert

import (
	"crypto/sha256"
	"fmt"

	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

// CertificateHeaderValue renders the version 2 IC-Certificate header for a
// response served from path.
func CertificateHeaderValue(certificate []byte, witness hashtree.Node, path CertificationPath) (string, error) {
	tree, err := hashtree.Encode(witness)
	if err != nil {
		return "", fmt.Errorf("encode witness: %w", err)
	}
	h, err := protocol.NewV2Header(certificate, tree, path.ExprPath())
	if err != nil {
		return "", err
	}
	if err := h.Validate(); err != nil {
		return "", err
	}
	return h.String(), nil
}

// AddCertificateHeader appends the version 2 IC-Certificate header to resp.
func AddCertificateHeader(resp *Response, certificate []byte, witness hashtree.Node, path CertificationPath) error {
	value, err := CertificateHeaderValue(certificate, witness, path)
	if err != nil {
		return err
	}
	resp.Headers = append(resp.Headers, HeaderField{Name: protocol.CertificateHeaderName, Value: value})
	return nil
}

// SkipCertificationTree is the witness served with skip certification: a
// root wildcard certified with the skip expression.
func SkipCertificationTree() hashtree.Node {
	hash := cel.SkipExpression().Hash()
	return hashtree.NewLabeled(ExprLabel,
		hashtree.NewLabeled(WildcardMarker,
			hashtree.Labeled{Label: hash[:], Child: hashtree.Leaf{}}))
}

// SkipCertificationCertifiedData is the certified data of a server that
// skips certification for every response.
func SkipCertificationCertifiedData() [sha256.Size]byte {
	return hashtree.Digest(SkipCertificationTree())
}

// AddSkipCertificationHeader appends the headers that mark resp as
// deliberately uncertified.
func AddSkipCertificationHeader(resp *Response, certificate []byte) error {
	if err := AddCertificateHeader(resp, certificate, SkipCertificationTree(), WildcardPath("")); err != nil {
		return err
	}
	resp.Headers = append(resp.Headers, HeaderField{
		Name:  protocol.CertificateExpressionHeaderName,
		Value: cel.SkipExpression().String(),
	})
	return nil
}
