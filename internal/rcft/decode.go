package rcft

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMissingContext indicates a required context block is absent.
	ErrMissingContext = errors.New("missing context block")

	// ErrMalformedBlock indicates a block without a grid header row.
	ErrMalformedBlock = errors.New("malformed context block")
)

const (
	formalKeyword     = "FormalContext"
	relationalKeyword = "RelationalContext"
)

// Decode parses an RCFT document produced by Encode. Cells marked "x" or "X"
// are present; anything else is absent. Blocks with unknown names are ignored.
func Decode(r io.Reader) (*Document, error) {
	blocks, err := splitBlocks(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	for _, block := range blocks {
		fields := strings.Fields(block[0])
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: header %q has no name", ErrMalformedBlock, block[0])
		}
		name := fields[1]

		switch fields[0] {
		case formalKeyword:
			ctx, err := parseGrid(name, block[1:])
			if err != nil {
				return nil, err
			}
			switch name {
			case ClassesContext:
				doc.Classes = ctx
			case TypesContext:
				doc.Types = ctx
			}

		case relationalKeyword:
			rel := &RelationalContext{}
			var grid []string
			for _, line := range block[1:] {
				trimmed := strings.TrimSpace(line)
				switch {
				case strings.HasPrefix(trimmed, "source "):
					rel.Source = strings.TrimSpace(strings.TrimPrefix(trimmed, "source "))
				case strings.HasPrefix(trimmed, "target "):
					rel.Target = strings.TrimSpace(strings.TrimPrefix(trimmed, "target "))
				case strings.HasPrefix(trimmed, "scaling "):
					rel.Scaling = strings.TrimSpace(strings.TrimPrefix(trimmed, "scaling "))
				default:
					grid = append(grid, line)
				}
			}
			ctx, err := parseGrid(name, grid)
			if err != nil {
				return nil, err
			}
			rel.FormalContext = *ctx
			if name == DependenciesRelation {
				doc.Dependencies = rel
			}
		}
	}

	switch {
	case doc.Classes == nil:
		return nil, fmt.Errorf("%w: %s", ErrMissingContext, ClassesContext)
	case doc.Types == nil:
		return nil, fmt.Errorf("%w: %s", ErrMissingContext, TypesContext)
	case doc.Dependencies == nil:
		return nil, fmt.Errorf("%w: %s", ErrMissingContext, DependenciesRelation)
	}

	return doc, nil
}

// splitBlocks groups lines into blocks, each starting at a context keyword.
// Lines before the first keyword and blank lines are dropped.
func splitBlocks(r io.Reader) ([][]string, error) {
	var blocks [][]string
	var current []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, formalKeyword) || strings.HasPrefix(trimmed, relationalKeyword) {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{trimmed}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read context document: %w", err)
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks, nil
}

// parseGrid reads a "| | col | col |" header followed by "| obj | x | |" rows.
func parseGrid(name string, lines []string) (*FormalContext, error) {
	header := -1
	var columns []string
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			continue
		}
		parts := strings.Split(line, "|")
		for _, p := range parts[min(2, len(parts)):] {
			if col := strings.TrimSpace(p); col != "" {
				columns = append(columns, col)
			}
		}
		header = i
		break
	}
	if header < 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrMalformedBlock, name)
	}

	var objects []string
	var rows [][]bool
	for _, line := range lines[header+1:] {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		obj := strings.TrimSpace(parts[1])
		if obj == "" {
			continue
		}
		values := parts[2:]
		row := make([]bool, len(columns))
		for j := range columns {
			if j < len(values) && strings.EqualFold(strings.TrimSpace(values[j]), "x") {
				row[j] = true
			}
		}
		objects = append(objects, obj)
		rows = append(rows, row)
	}

	return &FormalContext{
		Name:       name,
		Objects:    objects,
		Attributes: columns,
		incidence:  rows,
	}, nil
}
