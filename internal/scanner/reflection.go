// Package scanner - Reflection detection implementation
package scanner

import (
	"html"
	"net/url"
	"strings"
)

// Reflection formats reported by Detect.
const (
	ReflectionRaw           = "raw"
	ReflectionDecoded       = "decoded"
	ReflectionURLEncoded    = "url-encoded"
	ReflectionHTMLEncoded   = "html-encoded"
	ReflectionDoubleEncoded = "double-encoded"
)

// DefaultReflectionDetector implements ReflectionDetector interface
type DefaultReflectionDetector struct{}

// NewReflectionDetector creates a new DefaultReflectionDetector
func NewReflectionDetector() *DefaultReflectionDetector {
	return &DefaultReflectionDetector{}
}

// Detect checks if probe is reflected in body and in which form. Only a raw
// reflection can be classified; the other forms are reported for logs.
func (d *DefaultReflectionDetector) Detect(body, probe string) (bool, string) {
	if probe == "" {
		return false, ""
	}

	if strings.Contains(body, probe) {
		return true, ReflectionRaw
	}

	decodedProbe, err := url.QueryUnescape(probe)
	if err == nil && decodedProbe != probe && strings.Contains(body, decodedProbe) {
		return true, ReflectionDecoded
	}

	encodedProbe := url.QueryEscape(probe)
	if encodedProbe != probe && strings.Contains(body, encodedProbe) {
		return true, ReflectionURLEncoded
	}

	htmlEncodedProbe := html.EscapeString(probe)
	if htmlEncodedProbe != probe && strings.Contains(body, htmlEncodedProbe) {
		return true, ReflectionHTMLEncoded
	}

	doubleEncodedProbe := url.QueryEscape(encodedProbe)
	if doubleEncodedProbe != encodedProbe && strings.Contains(body, doubleEncodedProbe) {
		return true, ReflectionDoubleEncoded
	}

	return false, ""
}

// evidence returns the text around the first reflection of s in body.
func evidence(body, s string, offset int) string {
	if offset < 0 || offset > len(body) {
		offset = strings.Index(body, s)
		if offset < 0 {
			return ""
		}
	}
	start := offset - EvidenceContextRadius
	if start < 0 {
		start = 0
	}
	end := offset + len(s) + EvidenceContextRadius
	if end > len(body) {
		end = len(body)
	}
	return body[start:end]
}
