package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
)

// DefaultUserID is the conversation id used for the single console user.
const DefaultUserID int64 = 1

// Console implements ports.ActionDispatcher for a terminal and feeds typed lines into an EventHandler.
type Console struct {
	userID int64
	in     io.Reader
	out    io.Writer
	style  *termenv.Output
	render func(string) string
	prompt bool

	mu      sync.Mutex
	buttons []domain.Selection
	lastMsg int
	presses int
}

// Option configures the Console.
type Option func(*Console)

// WithUserID sets the conversation id.
func WithUserID(id int64) Option {
	return func(c *Console) {
		c.userID = id
	}
}

// WithRenderer sets how message text is rendered (e.g. markdown).
func WithRenderer(render func(string) string) Option {
	return func(c *Console) {
		if render != nil {
			c.render = render
		}
	}
}

// WithPrompt prints "> " before reading each line.
func WithPrompt(enabled bool) Option {
	return func(c *Console) {
		c.prompt = enabled
	}
}

// New creates a Console reading from in and writing to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		userID: DefaultUserID,
		in:     in,
		out:    out,
		style:  termenv.NewOutput(out),
		render: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch prints one outbound action.
func (c *Console) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch req.Type {
	case domain.ActionSendText:
		c.show(c.render(req.Text), req.Keyboard)
		return nil

	case domain.ActionSendPhoto:
		fmt.Fprintln(c.out, c.style.String(fmt.Sprintf("[photo, %d bytes]", len(req.Photo))).Faint())
		c.show(c.render(req.Text), req.Keyboard)
		return nil

	case domain.ActionDeleteMessage:
		// Terminal output cannot be taken back.
		return nil

	case domain.ActionNotice:
		if req.Text != "" {
			fmt.Fprintln(c.out, c.style.String("» "+req.Text).Italic())
		}
		return nil
	}

	return fmt.Errorf("unsupported action type %q", req.Type)
}

// show prints a message and replaces the active keyboard; callers hold c.mu.
func (c *Console) show(text string, kb domain.Keyboard) {
	c.lastMsg++
	fmt.Fprintln(c.out, text)

	c.buttons = c.buttons[:0]
	for _, row := range kb {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			c.buttons = append(c.buttons, b.Selection)
			label := fmt.Sprintf("[%d] %s", len(c.buttons), b.Text)
			cells = append(cells, c.style.String(label).Bold().String())
		}
		fmt.Fprintln(c.out, "  "+strings.Join(cells, "  "))
	}
}

// Event converts a typed line. A number within the active keyboard presses that button;
// anything else is free text.
func (c *Console) Event(line string) domain.Event {
	line = strings.TrimSpace(line)

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(c.buttons) {
		c.presses++
		return domain.SelectionEvent(c.userID, c.lastMsg, "console-"+strconv.Itoa(c.presses), c.buttons[n-1])
	}
	return domain.TextEvent(c.userID, 0, line)
}

// Run reads lines until EOF, "/quit" or ctx is done, handing each event to handler.
func (c *Console) Run(ctx context.Context, handler ports.EventHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		if c.prompt {
			fmt.Fprint(c.out, "> ")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				// EOF
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}
			switch strings.TrimSpace(line) {
			case "":
				continue
			case "/quit", "/exit":
				return nil
			}
			handler.Dispatch(ctx, c.Event(line))
		}
	}
}

var _ ports.ActionDispatcher = (*Console)(nil)
