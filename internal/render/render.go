// Package render turns resolved patterns into the visual block tree the CLI
// and browser display: one block per root group, recursing into nested
// repetitions until each branch bottoms out in a single leaf value.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/trellis-data/trellis/api"
	"github.com/trellis-data/trellis/internal/walk"
)

// Block is one visual unit. Leaf blocks carry the resolved node; group
// blocks carry the nested blocks of one repetition.
type Block struct {
	// Label is the concrete resolved root for group blocks, or the
	// concrete path for leaf blocks.
	Label string
	// Sub is the display sub-path of the nested group (wildcards
	// stripped), empty for leaves and innermost groups.
	Sub      string
	Node     *walk.ValueNode
	Children []*Block
}

// Blocks builds the block tree for one pattern. Absent branches produce no
// blocks; a wildcard-free pattern produces at most a single leaf block with
// no grouping container.
func Blocks(root *api.Value, pattern api.Path) ([]*Block, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}

	w, ok := pattern.FirstWildcard()
	if !ok {
		nodes, err := walk.Resolve(root, pattern)
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, nil
		}
		return []*Block{{Label: nodes[0].Path.String(), Node: &nodes[0]}}, nil
	}

	groups, err := walk.RootGroups(root, pattern)
	if err != nil {
		return nil, err
	}
	suffix := pattern[w+1:]
	next, hasNext := suffix.FirstWildcard()

	var blocks []*Block
	for i := range groups {
		g := groups[i]
		if !hasNext {
			// ResolvedRoot is concrete here, so this group is a leaf.
			nodes, err := walk.Resolve(root, g.ResolvedRoot)
			if err != nil {
				return nil, err
			}
			if len(nodes) == 0 {
				continue
			}
			blocks = append(blocks, &Block{Label: nodes[0].Path.String(), Node: &nodes[0]})
			continue
		}

		childPattern := g.ResolvedRoot.Concat(suffix[next:])
		children, err := Blocks(root, childPattern)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			continue
		}
		blocks = append(blocks, &Block{
			Label:    g.ResolvedRoot.String(),
			Sub:      g.RemainderShow.String(),
			Children: children,
		})
	}
	return blocks, nil
}

// Styles controls block styling.
type Styles struct {
	Label   lipgloss.Style
	Value   lipgloss.Style
	Group   lipgloss.Style
	Missing lipgloss.Style
}

// DefaultStyles returns the browser's styling.
func DefaultStyles() Styles {
	return Styles{
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Value:   lipgloss.NewStyle(),
		Group:   lipgloss.NewStyle().Bold(true),
		Missing: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Options controls rendering.
type Options struct {
	Styles Styles
	// Plain skips styling for pipes and tests.
	Plain bool
	// MaxValueLen truncates long scalar values; 0 means no truncation.
	MaxValueLen int
}

// RenderRow resolves and renders each pattern against a row, one section
// per pattern that matched anything.
func RenderRow(root *api.Value, patterns []api.Path, opts Options) (string, error) {
	var b strings.Builder
	for _, p := range patterns {
		blocks, err := Blocks(root, p)
		if err != nil {
			return "", err
		}
		if len(blocks) == 0 {
			continue
		}
		writeBlocks(&b, blocks, 0, opts)
	}
	return b.String(), nil
}

// RenderBlocks renders an already-built block tree.
func RenderBlocks(blocks []*Block, opts Options) string {
	var b strings.Builder
	writeBlocks(&b, blocks, 0, opts)
	return b.String()
}

func writeBlocks(b *strings.Builder, blocks []*Block, depth int, opts Options) {
	indent := strings.Repeat("  ", depth)
	for _, blk := range blocks {
		if blk.Node != nil {
			label := blk.Label
			value := formatValue(blk.Node.Value, opts)
			if !opts.Plain {
				label = opts.Styles.Label.Render(label)
			}
			fmt.Fprintf(b, "%s%s: %s\n", indent, label, value)
			continue
		}
		header := blk.Label
		if blk.Sub != "" {
			header += " › " + blk.Sub
		}
		if !opts.Plain {
			header = opts.Styles.Group.Render(header)
		}
		fmt.Fprintf(b, "%s%s\n", indent, header)
		writeBlocks(b, blk.Children, depth+1, opts)
	}
}

func formatValue(v *api.Value, opts Options) string {
	var s string
	missing := false
	switch v.Kind() {
	case api.KindMissing:
		s, missing = "(missing)", true
	case api.KindScalar:
		if v.ScalarValue() == nil {
			s, missing = "null", true
		} else {
			s = fmt.Sprintf("%v", v.ScalarValue())
		}
	default:
		// Container leaf: the pattern stopped above the leaves. Show the
		// compact form.
		s = v.String()
	}
	if opts.MaxValueLen > 0 && len(s) > opts.MaxValueLen {
		s = s[:opts.MaxValueLen] + "…"
	}
	if opts.Plain {
		return s
	}
	if missing {
		return opts.Styles.Missing.Render(s)
	}
	return opts.Styles.Value.Render(s)
}
