// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gateway-security.
//
// go-gateway-security is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package locator parses security device URLs.
//
// A locator has the form scheme://host[:port][/path][?key=value&...]. The
// scheme selects the backend, the remaining components are interpreted by
// that backend:
//
//	ecc://i2c-1:96?slot=0       secure element on /dev/i2c-1, bus address 96, slot 0
//	tpm://tpm/0x81000002        TPM key at persistent handle 0x81000002
//	nova-tz://rsa/path/to/blob  trusted execution keyblob
//	file:///etc/keypair.bin     software keypair file
//	/etc/keypair.bin            same as file://
//
// Parsing is pure: the same string always yields the same Locator.
package locator

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Scheme names a backend family.
type Scheme string

const (
	SchemeECC    Scheme = "ecc"
	SchemeTPM    Scheme = "tpm"
	SchemeNovaTZ Scheme = "nova-tz"
	SchemeFile   Scheme = "file"
)

var (
	// ErrInvalidURL is returned when the locator is not valid URL syntax.
	ErrInvalidURL = errors.New("locator: invalid url")

	// ErrUnsupportedScheme is returned for schemes outside the supported set.
	ErrUnsupportedScheme = errors.New("locator: invalid device url")

	// ErrInvalidArgument is returned when a query option cannot be parsed
	// into the requested type.
	ErrInvalidArgument = errors.New("locator: invalid device url argument")
)

// Locator is a parsed device URL. It is immutable once parsed.
type Locator struct {
	raw     string
	scheme  Scheme
	host    string
	port    uint16
	hasPort bool
	path    string
	args    map[string]string
}

// Parse parses s into a Locator. A missing scheme selects the file backend
// with s as a bare path.
func Parse(s string) (*Locator, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, s)
	}

	l := &Locator{
		raw:  s,
		host: u.Hostname(),
		path: u.Path,
		args: make(map[string]string),
	}

	switch Scheme(u.Scheme) {
	case "", SchemeFile:
		l.scheme = SchemeFile
	case SchemeECC, SchemeTPM, SchemeNovaTZ:
		l.scheme = Scheme(u.Scheme)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, s)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidURL, s)
		}
		l.port = uint16(port)
		l.hasPort = true
	}

	if u.RawQuery != "" {
		query, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidURL, s)
		}
		for k, v := range query {
			if len(v) > 0 {
				l.args[k] = v[0]
			}
		}
	}

	return l, nil
}

// String returns the string the locator was parsed from.
func (l *Locator) String() string { return l.raw }

// Scheme returns the backend scheme. Locators without a scheme report SchemeFile.
func (l *Locator) Scheme() Scheme { return l.scheme }

// Host returns the host component without the port.
func (l *Locator) Host() string { return l.host }

// Port returns the port component and whether one was present.
func (l *Locator) Port() (uint16, bool) { return l.port, l.hasPort }

// Path returns the path component.
func (l *Locator) Path() string { return l.path }

// Has reports whether the query option name was supplied.
func (l *Locator) Has(name string) bool {
	_, ok := l.args[name]
	return ok
}

// Value is the set of types a query option can be parsed into.
type Value interface {
	string | bool | int | uint8 | uint16 | uint32 | uint64
}

// Arg parses the query option name into T, returning def when the option is
// absent. A value that does not parse returns ErrInvalidArgument naming the
// option.
func Arg[T Value](l *Locator, name string, def T) (T, error) {
	raw, ok := l.args[name]
	if !ok {
		return def, nil
	}

	var (
		out T
		err error
	)
	switch p := any(&out).(type) {
	case *string:
		*p = raw
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *int:
		*p, err = strconv.Atoi(raw)
	case *uint8:
		var v uint64
		v, err = strconv.ParseUint(raw, 0, 8)
		*p = uint8(v)
	case *uint16:
		var v uint64
		v, err = strconv.ParseUint(raw, 0, 16)
		*p = uint16(v)
	case *uint32:
		var v uint64
		v, err = strconv.ParseUint(raw, 0, 32)
		*p = uint32(v)
	case *uint64:
		*p, err = strconv.ParseUint(raw, 0, 64)
	}
	if err != nil {
		return def, fmt.Errorf("%w: %q", ErrInvalidArgument, name)
	}
	return out, nil
}
