package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/peterkuimelis/cct/internal/task"
)

// Client connects to a task server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	in   *bufio.Reader
	out  io.Writer
}

// Connect connects to a server, sends the join message, and runs the REPL.
func Connect(ctx context.Context, addr, participant string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: MsgJoin, Participant: participant}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for the task to start...")

	client := NewClient(conn, os.Stdin, os.Stdout)
	_, err = client.RunREPL(ctx)
	return err
}

// NewClient creates a REPL client reading commands from in.
func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: bufio.NewReader(in), out: out}
}

// RunREPL reads server messages and handles them interactively until the
// task is over. It returns the final task_over message.
func (c *Client) RunREPL(ctx context.Context) (*ServerMessage, error) {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return nil, fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MsgNotify:
			c.renderEvent(msg.Event)

		case MsgRender:
			if msg.View == nil {
				continue
			}
			c.renderView(msg.View)
			if !msg.View.AwaitingInput {
				continue
			}
			reply, err := c.readInput(msg.View)
			if err != nil {
				return nil, err
			}
			if err := enc.Encode(reply); err != nil {
				return nil, fmt.Errorf("send input: %w", err)
			}

		case MsgTaskOver:
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          TASK COMPLETE")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, msg.Result)
			if msg.Summary != nil {
				fmt.Fprintf(c.out, "Average cards selected: %.1f\n", msg.Summary.AverageCards)
			}
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return &msg, nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil || ev.Round == 0 {
		return
	}
	fmt.Fprintf(c.out, "  · %s\n", ev.Details)
}

func (c *Client) renderView(v *task.View) {
	if v.Done {
		return
	}
	fmt.Fprintln(c.out)
	if v.Title != "" {
		title := v.Title
		if v.Pages > 0 {
			title = fmt.Sprintf("%s (%d/%d)", title, v.Page, v.Pages)
		}
		fmt.Fprintf(c.out, "== %s ==\n", title)
	}
	for _, p := range v.Paragraphs {
		fmt.Fprintln(c.out, p)
	}
	for _, b := range v.Bullets {
		fmt.Fprintf(c.out, "  - %s\n", b)
	}
	for _, f := range v.Facts {
		fmt.Fprintf(c.out, "%s: %s\n", f.Label, f.Value)
	}
	if sb := v.Scoreboard; sb != nil {
		fmt.Fprintf(c.out, "Score: %d | Total: %d\n", sb.RoundScore, sb.Total)
	}
	if v.Grid != nil {
		fmt.Fprint(c.out, FormatGrid(v.Grid))
	}
	if v.Message != nil && v.Message.Text != "" {
		fmt.Fprintf(c.out, ">> %s\n", v.Message.Text)
	}
}

// FormatGrid draws the card grid, one row per line. Face-down cards show
// their 1-based number.
func FormatGrid(g *task.Grid) string {
	var sb strings.Builder
	for i, card := range g.Cards {
		cell := strconv.Itoa(card.Index + 1)
		if card.Face != task.FaceDown {
			cell = card.Label
		}
		fmt.Fprintf(&sb, "[%5s]", cell)
		if (i+1)%g.Cols == 0 || i == len(g.Cards)-1 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// readInput prompts until the participant enters a valid command for the
// view.
func (c *Client) readInput(v *task.View) (ClientMessage, error) {
	for {
		switch {
		case v.Grid != nil:
			fmt.Fprintf(c.out, "Card 1-%d, or s to stop and keep points > ", len(v.Grid.Cards))
		case len(v.Choices) == 1:
			fmt.Fprintf(c.out, "[Enter] %s > ", v.Choices[0])
		default:
			for i, label := range v.Choices {
				fmt.Fprintf(c.out, "  %d) %s\n", i+1, label)
			}
			fmt.Fprint(c.out, "> ")
		}

		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			return ClientMessage{}, fmt.Errorf("read command: %w", err)
		}
		if msg, ok := ParseCommand(v, line); ok {
			return msg, nil
		}
		fmt.Fprintln(c.out, "Invalid input")
	}
}

// ParseCommand turns one line of terminal input into a client message.
func ParseCommand(v *task.View, line string) (ClientMessage, bool) {
	line = strings.TrimSpace(strings.ToLower(line))

	if v.Grid != nil {
		if line == "s" || line == "stop" {
			return ClientMessage{Type: MsgClick, Target: task.StopTarget}, true
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(v.Grid.Cards) {
			return ClientMessage{}, false
		}
		return ClientMessage{Type: MsgClick, Target: v.Grid.Cards[n-1].ID}, true
	}

	if len(v.Choices) == 0 {
		return ClientMessage{}, false
	}
	if line == "" {
		return ClientMessage{Type: MsgChoice, Index: 0}, true
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(v.Choices) {
		return ClientMessage{}, false
	}
	return ClientMessage{Type: MsgChoice, Index: n - 1}, true
}
