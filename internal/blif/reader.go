package blif

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/dag"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/inmemorytopology"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/topologystore"
)

// ErrInput is wrapped by every error caused by an unreadable or malformed
// netlist.
var ErrInput = errors.New("invalid netlist")

// maxLineBytes bounds a single logical line, continuations included.
const maxLineBytes = 16 << 20

// ParseFile reads a BLIF file into a frozen, acyclic graph.
func ParseFile(ctx context.Context, path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	defer f.Close()
	return Parse(ctx, f, path)
}

// Parse reads a BLIF netlist from r into a frozen, acyclic graph. source
// names the input in error messages.
func Parse(ctx context.Context, r io.Reader, source string) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	store := inmemorytopology.New()
	if err := NewReader(store).Read(ctx, r, source); err != nil {
		return nil, err
	}
	if err := graph.ResolveKinds(ctx, store); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInput, source, err)
	}
	g, err := graph.Freeze(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInput, source, err)
	}
	if err := dag.DetectCycles(g); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInput, source, err)
	}

	logger.Debug("Netlist parsed.",
		"source", source,
		"nodes", g.Len(),
		"operations", len(g.Operations()),
	)
	return g, nil
}

// Reader populates a topology store from BLIF text. It does not resolve
// kinds or freeze; Parse does both.
type Reader struct {
	store topologystore.Store

	// pending is the gate waiting for its first cover row.
	pending nodeid.ID
	// driven records signals already defined by a .names line.
	driven map[nodeid.ID]bool
}

// NewReader returns a Reader that writes into store.
func NewReader(store topologystore.Store) *Reader {
	return &Reader{store: store, pending: nodeid.None, driven: make(map[nodeid.ID]bool)}
}

// Read consumes BLIF text until EOF or an .end directive.
func (rd *Reader) Read(ctx context.Context, r io.Reader, source string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		lineNo    int
		startLine int
		cont      strings.Builder
	)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimRight(line, " \t\r")

		if cont.Len() == 0 {
			startLine = lineNo
		}
		if strings.HasSuffix(line, `\`) {
			cont.WriteString(strings.TrimSuffix(line, `\`))
			cont.WriteByte(' ')
			continue
		}
		if cont.Len() > 0 {
			cont.WriteString(line)
			line = cont.String()
			cont.Reset()
		}

		done, err := rd.handleLine(ctx, strings.Fields(line))
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %w", ErrInput, source, startLine, err)
		}
		if done {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInput, source, err)
	}
	if cont.Len() > 0 {
		return fmt.Errorf("%w: %s:%d: line continuation at end of file", ErrInput, source, startLine)
	}
	return nil
}

func (rd *Reader) handleLine(ctx context.Context, fields []string) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}

	directive := fields[0]
	if !strings.HasPrefix(directive, ".") {
		return false, rd.coverRow(ctx, directive)
	}

	args := fields[1:]
	switch directive {
	case ".model":
		rd.pending = nodeid.None
	case ".inputs":
		rd.pending = nodeid.None
		return false, rd.inputs(ctx, args)
	case ".outputs":
		rd.pending = nodeid.None
		return false, rd.outputs(ctx, args)
	case ".names":
		return false, rd.names(ctx, args)
	case ".end":
		return true, nil
	default:
		return false, fmt.Errorf("unsupported directive %q", directive)
	}
	return false, nil
}

func (rd *Reader) inputs(ctx context.Context, names []string) error {
	for _, name := range names {
		id, _, err := rd.store.AddNode(ctx, name)
		if err != nil {
			return err
		}
		n, _ := rd.store.GetNode(ctx, id)
		if len(n.Preds) > 0 || rd.driven[id] {
			return fmt.Errorf("input %q is already driven by a gate", name)
		}
		if err := rd.store.SetKind(ctx, id, node.Input); err != nil {
			return err
		}
		if err := rd.store.MarkInput(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (rd *Reader) outputs(ctx context.Context, names []string) error {
	for _, name := range names {
		id, _, err := rd.store.AddNode(ctx, name)
		if err != nil {
			return err
		}
		if err := rd.store.MarkOutput(ctx, id); err != nil {
			return err
		}
		// An output that is already an input or a gate keeps its kind.
		if n, _ := rd.store.GetNode(ctx, id); n.Kind == node.KindUnknown {
			if err := rd.store.SetKind(ctx, id, node.Output); err != nil {
				return err
			}
		}
	}
	return nil
}

func (rd *Reader) names(ctx context.Context, signals []string) error {
	rd.pending = nodeid.None
	if len(signals) == 0 {
		return fmt.Errorf(".names without signals")
	}

	outName := signals[len(signals)-1]
	out, _, err := rd.store.AddNode(ctx, outName)
	if err != nil {
		return err
	}
	n, _ := rd.store.GetNode(ctx, out)
	if n.Kind == node.Input {
		return fmt.Errorf("input %q cannot be driven by a gate", outName)
	}
	if rd.driven[out] {
		return fmt.Errorf("signal %q is driven by more than one .names", outName)
	}
	rd.driven[out] = true

	for _, in := range signals[:len(signals)-1] {
		from, _, err := rd.store.AddNode(ctx, in)
		if err != nil {
			return err
		}
		if err := rd.store.AddDependency(ctx, from, out); err != nil {
			return err
		}
	}

	// Constants have no operands and are never scheduled.
	if len(signals) > 1 {
		rd.pending = out
	}
	return nil
}

// coverRow classifies the pending gate from the first cube of its cover.
func (rd *Reader) coverRow(ctx context.Context, cube string) error {
	if rd.pending == nodeid.None {
		return nil
	}
	id := rd.pending
	rd.pending = nodeid.None
	return rd.store.SetKind(ctx, id, classify(cube))
}

func classify(cube string) node.Kind {
	switch {
	case len(cube) == 1:
		return node.Not
	case strings.ContainsRune(cube, '-'):
		return node.Or
	default:
		return node.And
	}
}
