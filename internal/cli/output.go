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

package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Printer writes command results as indented JSON.
type Printer struct {
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(writer io.Writer) *Printer {
	return &Printer{writer: writer}
}

// PrintJSON prints v as indented JSON followed by a newline
func (p *Printer) PrintJSON(v any) error {
	return p.printJSON(v)
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	_, werr := fmt.Fprintf(p.writer, "Error: %v\n", err)
	return werr
}

func (p *Printer) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(p.writer, string(data))
	return err
}
