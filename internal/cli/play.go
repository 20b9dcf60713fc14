package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/crimeguessr/internal/model"
)

const playHelp = `Commands:
  start              start the game (host, once both players are seated)
  guess <lat> <lon>  guess where the crime happened
  next               move on after a round ends
  quit               leave the room`

func newPlayCmd() *cobra.Command {
	var (
		create bool
		join   string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game over the realtime connection",
		Long: `Create or join a room and play interactively. Server events are printed
as they arrive and commands are read from stdin, one per line.

` + playHelp + `

The session ends when the game finishes, the room closes, or on Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if create == (join != "") {
				return errors.New("use exactly one of --create or --join")
			}

			wsURL, err := cfg.WebSocketURL()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := NewOutput(&syncWriter{w: cmd.OutOrStdout()}, cfg.Output)
			return play(ctx, wsURL, join, name, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create a new room and host it")
	cmd.Flags().StringVar(&join, "join", "", "Join the room with this code")
	cmd.Flags().StringVar(&name, "name", "", "Player name")

	return cmd
}

// envelope is the wire format of every websocket message
type envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event model.EventType `json:"event"`
	Data  any             `json:"data"`
}

// playSession tracks the room this connection is seated in
type playSession struct {
	conn *websocket.Conn
	out  *Output

	mu       sync.Mutex
	roomCode string
}

func (s *playSession) room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCode
}

func (s *playSession) seat(code model.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomCode = string(code)
}

func (s *playSession) send(event model.EventType, data any) error {
	return s.conn.WriteJSON(outbound{Event: event, Data: data})
}

// play runs one interactive session. An empty joinCode creates a room.
func play(ctx context.Context, wsURL, joinCode, name string, in io.Reader, out *Output) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	s := &playSession{conn: conn, out: out}

	if joinCode == "" {
		err = s.send(model.EventCreateRoom, model.CreateRoomPayload{PlayerName: name})
	} else {
		err = s.send(model.EventJoinRoom, model.JoinRoomPayload{RoomCode: joinCode, PlayerName: name})
	}
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	events := make(chan error, 1)
	go func() { events <- s.readEvents() }()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go scanLines(in, lines, done)

	for {
		select {
		case <-ctx.Done():
			s.close()
			return nil
		case err := <-events:
			return err
		case line, ok := <-lines:
			if !ok {
				// stdin closed; keep following the game until it ends
				lines = nil
				continue
			}
			cmd, err := parseCommand(line, s.room())
			if err != nil {
				out.PrintMessage(err.Error())
				continue
			}
			if cmd.quit {
				s.close()
				return nil
			}
			if cmd.event == "" {
				continue
			}
			if err := s.send(cmd.event, cmd.payload); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

// readEvents prints server events until the game ends or the room closes. An
// error before the player is seated ends the session with that error.
func (s *playSession) readEvents() error {
	for {
		var env envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		s.out.PrintEvent(env.Event, env.Data)

		switch env.Event {
		case model.EventRoomCreated, model.EventRoomJoined:
			var p model.SeatPayload
			if err := json.Unmarshal(env.Data, &p); err == nil {
				s.seat(p.RoomCode)
			}
		case model.EventError:
			if s.room() == "" {
				var p model.ErrorPayload
				_ = json.Unmarshal(env.Data, &p)
				return fmt.Errorf("%s (%s)", p.Message, p.Code)
			}
		case model.EventGameEnd, model.EventRoomClosed:
			s.close()
			return nil
		}
	}
}

func (s *playSession) close() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func scanLines(in io.Reader, lines chan<- string, done <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}
}

// playCommand is a parsed line of user input
type playCommand struct {
	event   model.EventType
	payload any
	quit    bool
}

var errNotSeated = errors.New("not in a room yet")

// parseCommand turns a line of input into the event to send. Blank lines
// yield an empty command.
func parseCommand(line, roomCode string) (playCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return playCommand{}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return playCommand{quit: true}, nil
	case "help":
		return playCommand{}, errors.New(playHelp)
	}

	if roomCode == "" {
		return playCommand{}, errNotSeated
	}
	room := model.RoomPayload{RoomCode: roomCode}

	switch strings.ToLower(fields[0]) {
	case "start":
		return playCommand{event: model.EventStartGame, payload: room}, nil
	case "next":
		return playCommand{event: model.EventReadyForNextRound, payload: room}, nil
	case "guess":
		if len(fields) != 3 {
			return playCommand{}, errors.New("usage: guess <lat> <lon>")
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return playCommand{}, fmt.Errorf("invalid latitude %q", fields[1])
		}
		lon, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return playCommand{}, fmt.Errorf("invalid longitude %q", fields[2])
		}
		return playCommand{
			event:   model.EventSubmitGuess,
			payload: model.SubmitGuessPayload{RoomCode: roomCode, Latitude: &lat, Longitude: &lon},
		}, nil
	default:
		return playCommand{}, fmt.Errorf("unknown command %q\n%s", fields[0], playHelp)
	}
}

// syncWriter serializes writes from the event reader and the input loop
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
