package resolver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// DecisionProvider supplies the operator's choice for a conflicting
// candidate. Implementations: a console prompt for real runs, a scripted
// provider for tests.
type DecisionProvider interface {
	Decide(candidate types.LinkCandidate, state types.TargetState) (types.Decision, error)
}

var (
	pathStyle    = lipgloss.NewStyle().Bold(true)
	choicesStyle = lipgloss.NewStyle().Faint(true)
)

// ConsoleProvider prompts on the terminal with the six-way choice
// {s,S,o,O,b,B}. Uppercase means "apply to all remaining". Any other input
// is treated as skip. When no terminal is attached the provider defaults to
// overwrite, favoring automation over safety; see `dotup docs`.
type ConsoleProvider struct {
	in         *bufio.Reader
	out        io.Writer
	isTerminal bool
}

// NewConsoleProvider creates a provider reading decisions from stdin
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		isTerminal: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// Decide prompts for one conflicting candidate
func (p *ConsoleProvider) Decide(candidate types.LinkCandidate, state types.TargetState) (types.Decision, error) {
	logger := logging.GetLogger("resolver.console")

	if !p.isTerminal {
		logger.Info().
			Str("destination", candidate.DestinationPath).
			Msg("No terminal attached, defaulting to overwrite")
		return types.Decision{Action: types.ActionOverwrite}, nil
	}

	fmt.Fprintf(p.out, "%s already exists (%s), what do you want to do?\n",
		pathStyle.Render(candidate.DestinationPath), state)
	fmt.Fprintln(p.out, choicesStyle.Render("[s]kip, [S]kip all, [o]verwrite, [O]verwrite all, [b]ackup, [B]ackup all"))
	fmt.Fprint(p.out, "> ")

	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			// Input stream closed mid-run: same as no terminal
			logger.Info().Msg("Input closed, defaulting to overwrite")
			return types.Decision{Action: types.ActionOverwrite}, nil
		}
		return types.Decision{}, fmt.Errorf("failed to read decision: %w", err)
	}

	return ParseDecision(line), nil
}

// ParseDecision maps a raw input line to a decision. Case distinguishes
// "apply once" from "apply to all remaining"; anything unrecognized is skip.
func ParseDecision(input string) types.Decision {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Decision{Action: types.ActionSkip}
	}

	switch input[0] {
	case 's':
		return types.Decision{Action: types.ActionSkip}
	case 'S':
		return types.Decision{Action: types.ActionSkip, Sticky: true}
	case 'o':
		return types.Decision{Action: types.ActionOverwrite}
	case 'O':
		return types.Decision{Action: types.ActionOverwrite, Sticky: true}
	case 'b':
		return types.Decision{Action: types.ActionBackup}
	case 'B':
		return types.Decision{Action: types.ActionBackup, Sticky: true}
	default:
		return types.Decision{Action: types.ActionSkip}
	}
}

// ScriptedProvider returns pre-seeded decisions in order. Once the script
// is exhausted every further conflict is skipped.
type ScriptedProvider struct {
	Decisions []types.Decision
	next      int
	// Asked records the candidates that actually prompted
	Asked []types.LinkCandidate
}

// Decide pops the next scripted decision
func (p *ScriptedProvider) Decide(candidate types.LinkCandidate, state types.TargetState) (types.Decision, error) {
	p.Asked = append(p.Asked, candidate)
	if p.next >= len(p.Decisions) {
		return types.Decision{Action: types.ActionSkip}, nil
	}
	d := p.Decisions[p.next]
	p.next++
	return d, nil
}
